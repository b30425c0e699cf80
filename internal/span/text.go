package span

import (
	"strings"
	"unicode/utf8"
)

func unitsFor(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// ByteOffset returns the byte offset inside line of the UTF-16 column col.
// Columns past the end clamp to len(line); a column that falls in the
// middle of a surrogate pair resolves to the start of that rune.
func ByteOffset(line string, col Column) int {
	want := clampInt(uint32(col))
	units := 0
	off := 0
	for off < len(line) {
		r, size := utf8.DecodeRuneInString(line[off:])
		need := unitsFor(r)
		if units+need > want {
			break
		}
		units += need
		off += size
		if units == want {
			break
		}
	}
	return off
}

// ColumnAt returns the UTF-16 column of the byte offset off inside line.
func ColumnAt(line string, off int) Column {
	if off > len(line) {
		off = len(line)
	}
	units := 0
	for i := 0; i < off; {
		r, size := utf8.DecodeRuneInString(line[i:off])
		units += unitsFor(r)
		i += size
	}
	return Column(clampUint32(units))
}

// Lines splits text into lines without their terminators. A trailing
// newline does not produce an extra empty line; "\r\n" is treated as one
// terminator.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// EndOf returns the position just past the last character of text.
func EndOf(text string) Position {
	lines := Lines(text)
	if len(lines) == 0 {
		return Position{}
	}
	if strings.HasSuffix(text, "\n") {
		return Position{Row: Row(clampUint32(len(lines)))}
	}
	last := lines[len(lines)-1]
	return Position{Row: Row(clampUint32(len(lines) - 1)), Col: ColumnAt(last, len(last))}
}
