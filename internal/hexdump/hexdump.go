// Package hexdump is an opt-in pretty-printer for raw buffers: fixed-width
// rows of hex bytes plus an ASCII gutter, with ANSI coloring by byte class
// and elision of repeated rows. It has no effect on any side-channel or
// exploit logic; it exists purely for human inspection of payloads and
// captured leaks from the CLI.
package hexdump

import (
	"fmt"
	"io"
	"strings"
)

// Options configures a Dump call. The zero value is a usable 16-byte-wide,
// uncolored dump with no elision.
type Options struct {
	Width     int  // bytes per row; 0 means 16
	Color     bool // wrap bytes in ANSI escapes by class
	ElideDups bool // replace rows repeating the previous row with a single "*"; the final row is always printed
}

const (
	colorZero   = "\033[2m"  // dim
	colorPrint  = "\033[32m" // green
	colorOther  = "\033[33m" // yellow
	colorReset  = "\033[0m"
)

// Dump writes a hexdump of data to w per opts.
func Dump(w io.Writer, data []byte, opts Options) {
	width := opts.Width
	if width <= 0 {
		width = 16
	}

	var lastRow string
	eliding := false

	for off := 0; off < len(data); off += width {
		end := off + width
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]
		line := formatRow(row, width, opts.Color)

		if opts.ElideDups && off > 0 && line == lastRow && end < len(data) {
			if !eliding {
				fmt.Fprintln(w, "*")
				eliding = true
			}
			continue
		}
		eliding = false
		lastRow = line

		fmt.Fprintf(w, "%08x  %s\n", off, line)
	}
}

func formatRow(row []byte, width int, color bool) string {
	var hexPart, asciiPart strings.Builder

	for i := 0; i < width; i++ {
		if i > 0 && i%8 == 0 {
			hexPart.WriteByte(' ')
		}
		if i < len(row) {
			b := row[i]
			hexPart.WriteString(colorize(fmt.Sprintf("%02x ", b), b, color))
			asciiPart.WriteString(colorize(asciiChar(b), b, color))
		} else {
			hexPart.WriteString("   ")
			asciiPart.WriteByte(' ')
		}
	}
	return fmt.Sprintf("%s |%s|", hexPart.String(), asciiPart.String())
}

func asciiChar(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return string(b)
	}
	return "."
}

func colorize(s string, b byte, color bool) string {
	if !color {
		return s
	}
	switch {
	case b == 0x00:
		return colorZero + s + colorReset
	case b >= 0x20 && b < 0x7f:
		return colorPrint + s + colorReset
	default:
		return colorOther + s + colorReset
	}
}
