package formatting

import "strings"

// ProcessAutoFormat converts a freshly typed "- " at the very start of a line
// into a bullet. It fires only when the cursor sits right after the dash and
// space; indented dashes are left alone. The bool is false when nothing
// applies and the caller should keep the content as typed.
func ProcessAutoFormat(content string, cursor int) (Edit, bool) {
	cursor = clamp(cursor, 0, Len(content))
	lines := SplitLines(content)
	span := LocateLine(content, cursor)
	p := ParsePrefix(lines[span.Index])

	if cursor-span.Start != Len(Dash) || p.Indent != "" || p.List != ListDash ||
		!strings.HasPrefix(p.ListText, Dash) {
		return Edit{}, false
	}

	r := []rune(lines[span.Index])
	lines[span.Index] = Bullet + string(r[Len(Dash):])
	return Edit{Content: JoinLines(lines), SelectionStart: cursor, SelectionEnd: cursor}, true
}

// HandleEnter continues a list when Enter is pressed. On a line whose body is
// blank the markers are stripped and the indentation kept, ending the list.
// Otherwise a newline is inserted at the cursor followed by the continuation
// prefix: the next number, a bullet for bullets and dashes, and an open task
// if the line had a task. Stars never carry over. The bool is false when the
// line has no list or task marker and a plain newline should be inserted.
func HandleEnter(content string, cursor int) (Edit, bool) {
	cursor = clamp(cursor, 0, Len(content))
	lines := SplitLines(content)
	span := LocateLine(content, cursor)
	p := ParsePrefix(lines[span.Index])

	if !p.HasMarker() {
		return Edit{}, false
	}

	if strings.TrimSpace(p.Body) == "" {
		lines[span.Index] = p.Indent
		pos := span.Start + Len(p.Indent)
		return Edit{Content: JoinLines(lines), SelectionStart: pos, SelectionEnd: pos}, true
	}

	next := Prefix{Indent: p.Indent, List: p.List}
	switch p.List {
	case ListNumber:
		next.Number = p.Number + 1
	case ListDash:
		next.List = ListBullet
	}
	if p.Task != TaskNone {
		next.Task = TaskOpen
	}

	insert := "\n" + ComposePrefix(next)
	r := []rune(content)
	out := string(r[:cursor]) + insert + string(r[cursor:])
	pos := cursor + Len(insert)
	return Edit{Content: out, SelectionStart: pos, SelectionEnd: pos}, true
}
