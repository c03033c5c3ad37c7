package sizeu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Size
		want string
	}{
		{Size(0), "0 B"},
		{Size(1023), "1023 B"},
		{Size(1024), "1.00 KB"},
		{Size(1024 * 1024), "1.00 MB"},
		{Size(1024 * 1024 * 1024), "1.00 GB"},
		{Size(1 << 40), "1.00 TB"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Humanized())
		})
	}
}

func TestSize_UnitAccessors(t *testing.T) {
	assert.InDelta(t, 1.0, Size(1024).KB(), 1e-12)
	assert.InDelta(t, 1.0, Size(1<<20).MB(), 1e-12)
	assert.InDelta(t, 1.0, Size(1<<30).GB(), 1e-12)
}

func TestSize_String_MatchesHumanized(t *testing.T) {
	s := Size(1024 * 1024)
	require.Equal(t, s.Humanized(), s.String())
	require.Equal(t, s.Humanized(), fmt.Sprintf("%s", s))
}

func TestSize_Pages_RoundsUp(t *testing.T) {
	assert.Equal(t, 0, Size(0).Pages())
	assert.Equal(t, 1, Size(1).Pages())
	assert.Equal(t, 1, Size(4096).Pages())
	assert.Equal(t, 2, Size(4097).Pages())
	assert.Equal(t, 16, Size(16*4096).Pages())
}
