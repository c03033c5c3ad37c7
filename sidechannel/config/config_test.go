package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flush_reload:\n  threshold: 200\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 200, p.FlushReload.Threshold)
	require.Equal(t, Default().FlushReload.Lines, p.FlushReload.Lines)
	require.Equal(t, Default().Spectre, p.Spectre)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefault_HasNonZeroTimeout(t *testing.T) {
	require.Greater(t, Default().Tube.DefaultTimeout, time.Duration(0))
}
