package formatting

import (
	"strconv"
	"strings"
)

// Edit is the result of a transform: the new document text and the selection
// to apply to it. A collapsed cursor has SelectionStart == SelectionEnd.
type Edit struct {
	Content        string
	SelectionStart int
	SelectionEnd   int
}

// Direction is the direction a line moves in.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// unchanged returns content with the (clamped) selection untouched.
func unchanged(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	return Edit{Content: content, SelectionStart: start, SelectionEnd: end}
}

// rewriteLines applies fn to every line in [first, last] and returns the new
// content plus the length change of each rewritten line.
func rewriteLines(content string, first, last int, fn func(i int, line string) string) (string, []int) {
	lines := SplitLines(content)
	deltas := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		next := fn(i, lines[i])
		deltas = append(deltas, Len(next)-Len(lines[i]))
		lines[i] = next
	}
	return JoinLines(lines), deltas
}

// shiftSelection moves a selection across a multi-line rewrite. The start
// moves by the first line's delta and the end by the total delta; each end is
// kept from sliding back over the start of its own line.
func shiftSelection(before, after string, start, end, first, last int, deltas []int) Edit {
	spans := LineSpans(before)

	total := 0
	for _, d := range deltas {
		total += d
	}
	lastLineStart := spans[last].Start + total - deltas[len(deltas)-1]

	n := Len(after)
	newStart := clamp(start+deltas[0], spans[first].Start, n)
	newEnd := end + total
	if newEnd < lastLineStart {
		newEnd = lastLineStart
	}
	newEnd = clamp(newEnd, newStart, n)
	return Edit{Content: after, SelectionStart: newStart, SelectionEnd: newEnd}
}

// ToggleBullet adds or removes a bullet on every touched line. Bulleted lines
// lose their bullet, dashed and numbered lines are converted to bullets and
// everything else gains one after its indentation.
func ToggleBullet(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	first, last := LineRangeForSelection(content, start, end)

	out, deltas := rewriteLines(content, first, last, func(_ int, line string) string {
		p := ParsePrefix(line)
		if p.List == ListBullet {
			p.ListText = ""
		} else {
			p.ListText = Bullet
		}
		return p.Line()
	})
	return shiftSelection(content, out, start, end, first, last, deltas)
}

// ToggleNumbering numbers the touched lines 1..k, replacing any bullet, dash
// or stale number. When every touched line is already numbered the numbers
// are removed instead.
func ToggleNumbering(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	first, last := LineRangeForSelection(content, start, end)

	lines := SplitLines(content)
	allNumbered := true
	for i := first; i <= last; i++ {
		if ParsePrefix(lines[i]).List != ListNumber {
			allNumbered = false
			break
		}
	}

	out, deltas := rewriteLines(content, first, last, func(i int, line string) string {
		p := ParsePrefix(line)
		if allNumbered {
			p.ListText = ""
		} else {
			p.ListText = strconv.Itoa(i-first+1) + ". "
		}
		return p.Line()
	})
	return shiftSelection(content, out, start, end, first, last, deltas)
}

// MoveLine swaps the cursor's line with its neighbour. The cursor follows
// its line. Moving the first line up or the last line down is a no-op.
func MoveLine(content string, cursor int, dir Direction) Edit {
	cursor = clamp(cursor, 0, Len(content))
	lines := SplitLines(content)
	span := LocateLine(content, cursor)

	target := span.Index + 1
	if dir == Up {
		target = span.Index - 1
	}
	if target < 0 || target >= len(lines) {
		return Edit{Content: content, SelectionStart: cursor, SelectionEnd: cursor}
	}

	shift := Len(lines[target]) + 1
	if dir == Up {
		shift = -shift
	}
	lines[span.Index], lines[target] = lines[target], lines[span.Index]
	cursor += shift
	return Edit{Content: JoinLines(lines), SelectionStart: cursor, SelectionEnd: cursor}
}

// ToggleStrikethrough wraps the selection in ~~ or unwraps it if it is
// already wrapped. A collapsed selection is left alone.
func ToggleStrikethrough(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	if start == end {
		return unchanged(content, start, end)
	}
	return toggleWrap(content, start, end, "~~", 4)
}

// ToggleBold wraps the selection in ** or unwraps it. With a collapsed
// selection an empty pair is inserted and the cursor placed inside it.
func ToggleBold(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	if start == end {
		r := []rune(content)
		out := string(r[:start]) + "****" + string(r[start:])
		return Edit{Content: out, SelectionStart: start + 2, SelectionEnd: start + 2}
	}
	return toggleWrap(content, start, end, "**", 5)
}

// toggleWrap unwraps the selection when it is at least minUnwrap characters
// long and starts and ends with marker, otherwise wraps it. The new selection
// covers the replacement text.
func toggleWrap(content string, start, end int, marker string, minUnwrap int) Edit {
	r := []rune(content)
	selected := string(r[start:end])
	m := Len(marker)
	n := end - start

	var replacement string
	if n >= minUnwrap && strings.HasPrefix(selected, marker) && strings.HasSuffix(selected, marker) {
		replacement = runeSlice(selected, m, n-m)
	} else {
		replacement = marker + selected + marker
	}

	out := string(r[:start]) + replacement + string(r[end:])
	return Edit{Content: out, SelectionStart: start, SelectionEnd: start + Len(replacement)}
}

// IndentLines prefixes every touched line with one indent unit.
func IndentLines(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	first, last := LineRangeForSelection(content, start, end)

	out, deltas := rewriteLines(content, first, last, func(_ int, line string) string {
		return IndentUnit + line
	})
	return shiftSelection(content, out, start, end, first, last, deltas)
}

// DeindentLines removes one level of indentation from every touched line: a
// tab, else four spaces, else two spaces. Lines without indentation are left
// as they are.
func DeindentLines(content string, start, end int) Edit {
	start, end = orderSelection(content, start, end)
	first, last := LineRangeForSelection(content, start, end)

	out, deltas := rewriteLines(content, first, last, func(_ int, line string) string {
		switch {
		case strings.HasPrefix(line, "\t"):
			return line[1:]
		case strings.HasPrefix(line, IndentUnit):
			return line[len(IndentUnit):]
		case strings.HasPrefix(line, "  "):
			return line[2:]
		}
		return line
	})
	return shiftSelection(content, out, start, end, first, last, deltas)
}

// ToggleStar adds or removes the star that follows the list and task markers
// on the cursor's line.
func ToggleStar(content string, cursor int) Edit {
	return rewriteCursorLine(content, cursor, func(p Prefix) Prefix {
		if p.Starred {
			p.StarText = ""
		} else {
			p.StarText = Star
		}
		return p
	})
}

// ToggleTask cycles the cursor's line through no task, open task and done
// task. The task marker sits after the list marker and before any star.
func ToggleTask(content string, cursor int) Edit {
	return rewriteCursorLine(content, cursor, func(p Prefix) Prefix {
		switch p.Task {
		case TaskNone:
			p.TaskText = TaskOpenMarker
		case TaskOpen:
			p.TaskText = TaskDoneMarker
		case TaskDone:
			p.TaskText = ""
		}
		return p
	})
}

// rewriteCursorLine rewrites the prefix of the cursor's line and shifts the
// cursor by the change in length, keeping it on the same line.
func rewriteCursorLine(content string, cursor int, fn func(Prefix) Prefix) Edit {
	cursor = clamp(cursor, 0, Len(content))
	lines := SplitLines(content)
	span := LocateLine(content, cursor)

	next := spaceList(fn(ParsePrefix(lines[span.Index]))).Line()
	delta := Len(next) - span.Len()
	lines[span.Index] = next

	cursor = clamp(cursor+delta, span.Start, span.Start+Len(next))
	return Edit{Content: JoinLines(lines), SelectionStart: cursor, SelectionEnd: cursor}
}
