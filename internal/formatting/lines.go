package formatting

import (
	"strings"
	"unicode/utf8"
)

// LineSpan locates a single line inside a document.
// Start and End are absolute character offsets; End points at the
// terminating newline (or the end of the text) and is exclusive.
type LineSpan struct {
	Index int
	Start int
	End   int
}

// Len returns the length of a line span in characters.
func (s LineSpan) Len() int { return s.End - s.Start }

// SplitLines splits text strictly on "\n". Carriage returns are kept as
// ordinary characters.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Len returns the length of text in characters (runes). Every offset used by
// this package is a character offset, never a byte offset.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LocateLine finds the line containing offset. An offset that sits right
// after a newline belongs to the line that starts there; an offset at the end
// of a line (on its newline) belongs to that line. Offsets outside the text
// are clamped.
func LocateLine(text string, offset int) LineSpan {
	offset = clamp(offset, 0, Len(text))
	lines := SplitLines(text)

	start := 0
	for i, line := range lines {
		end := start + utf8.RuneCountInString(line)
		if offset <= end || i == len(lines)-1 {
			return LineSpan{Index: i, Start: start, End: end}
		}
		start = end + 1
	}
	return LineSpan{}
}

// LineSpans returns the span of every line in text.
func LineSpans(text string) []LineSpan {
	lines := SplitLines(text)
	spans := make([]LineSpan, len(lines))
	start := 0
	for i, line := range lines {
		end := start + utf8.RuneCountInString(line)
		spans[i] = LineSpan{Index: i, Start: start, End: end}
		start = end + 1
	}
	return spans
}

// LineRangeForSelection returns the first and last line indexes touched by
// the selection. Both ends are inclusive, so a selection ending at the start
// of a line touches that line. A collapsed selection touches exactly one line.
func LineRangeForSelection(text string, start, end int) (first, last int) {
	start, end = orderSelection(text, start, end)
	return LocateLine(text, start).Index, LocateLine(text, end).Index
}

// Position converts an absolute offset into a zero-based line and column.
func Position(text string, offset int) (line, col int) {
	offset = clamp(offset, 0, Len(text))
	span := LocateLine(text, offset)
	return span.Index, offset - span.Start
}

// OffsetOf converts a zero-based line and column into an absolute offset.
// Both coordinates are clamped to the document.
func OffsetOf(text string, line, col int) int {
	spans := LineSpans(text)
	line = clamp(line, 0, len(spans)-1)
	span := spans[line]
	return span.Start + clamp(col, 0, span.Len())
}

// orderSelection clamps both ends into the text and swaps them when
// reversed.
func orderSelection(text string, start, end int) (int, int) {
	n := Len(text)
	start = clamp(start, 0, n)
	end = clamp(end, 0, n)
	if end < start {
		start, end = end, start
	}
	return start, end
}

// runeSlice returns the characters [start, end) of text.
func runeSlice(text string, start, end int) string {
	r := []rune(text)
	start = clamp(start, 0, len(r))
	end = clamp(end, start, len(r))
	return string(r[start:end])
}
