package formatting

import (
	"strconv"
	"strings"
	"unicode"
)

// ListKind identifies the list marker at the start of a line.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListNumber
	ListDash
)

// TaskState is the checkbox state of a line.
type TaskState int

const (
	TaskNone TaskState = iota
	TaskOpen
	TaskDone
)

// Marker glyphs.
const (
	Bullet         = "• "
	Dash           = "- "
	Star           = "⭐ "
	TaskOpenMarker = "[ ] "
	TaskDoneMarker = "[x] "
	IndentUnit     = "    "
)

const (
	bulletRune = '•'
	starRune   = '⭐'
)

// Prefix is the parsed marker prefix of one line. The *Text fields hold the
// markers exactly as written so a line can be rebuilt without disturbing the
// parts an operation does not touch.
type Prefix struct {
	Indent   string
	List     ListKind
	Number   int
	ListText string
	Task     TaskState
	TaskText string
	Starred  bool
	StarText string
	Body     string
}

// Len returns the prefix length in characters.
func (p Prefix) Len() int {
	return Len(p.Indent) + Len(p.ListText) + Len(p.TaskText) + Len(p.StarText)
}

// String returns the prefix as it appeared in the line.
func (p Prefix) String() string {
	return p.Indent + p.ListText + p.TaskText + p.StarText
}

// Line reassembles the full line.
func (p Prefix) Line() string {
	return p.String() + p.Body
}

// HasMarker reports whether the line carries a list or task marker.
func (p Prefix) HasMarker() bool {
	return p.List != ListNone || p.Task != TaskNone
}

// ParsePrefix splits a line into its marker prefix and body. Components are
// matched greedily in the fixed order indent, list, task, star; each one is
// optional.
func ParsePrefix(line string) Prefix {
	r := []rune(line)
	i := 0
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	p := Prefix{Indent: string(r[:i])}

	if n, kind, num := matchList(r[i:]); n > 0 {
		p.List = kind
		p.Number = num
		p.ListText = string(r[i : i+n])
		i += n
	}
	if state := matchTask(r[i:]); state != TaskNone {
		p.Task = state
		p.TaskText = string(r[i : i+4])
		i += 4
	}
	if n := matchStar(r[i:]); n > 0 {
		p.Starred = true
		p.StarText = string(r[i : i+n])
		i += n
	}
	p.Body = string(r[i:])
	return p
}

// ComposePrefix renders the canonical prefix for p, ignoring the as-written
// text fields: indent, then list marker, then task, then star, each marker
// followed by exactly one space.
func ComposePrefix(p Prefix) string {
	var b strings.Builder
	b.WriteString(p.Indent)
	b.WriteString(listMarker(p.List, p.Number))
	b.WriteString(taskMarker(p.Task))
	if p.Starred {
		b.WriteString(Star)
	}
	return b.String()
}

// spaceList ends a dash or number marker in one space when a task or star
// follows it. "-" and "5." are only markers at the end of a line; with
// anything glued on they would parse as plain text.
func spaceList(p Prefix) Prefix {
	if p.List != ListDash && p.List != ListNumber {
		return p
	}
	if p.TaskText == "" && p.StarText == "" {
		return p
	}
	r := []rune(p.ListText)
	if len(r) > 0 && !unicode.IsSpace(r[len(r)-1]) {
		p.ListText += " "
	}
	return p
}

func listMarker(kind ListKind, number int) string {
	switch kind {
	case ListBullet:
		return Bullet
	case ListNumber:
		return strconv.Itoa(number) + ". "
	case ListDash:
		return Dash
	}
	return ""
}

func taskMarker(state TaskState) string {
	switch state {
	case TaskOpen:
		return TaskOpenMarker
	case TaskDone:
		return TaskDoneMarker
	}
	return ""
}

// matchList returns the length of the list marker at the start of r,
// including its trailing whitespace. Numbers and dashes must be followed by
// whitespace or the end of the line so "3.14" and "-5" stay plain text.
func matchList(r []rune) (n int, kind ListKind, number int) {
	if len(r) == 0 {
		return 0, ListNone, 0
	}
	switch {
	case r[0] == bulletRune:
		return 1 + countSpace(r[1:]), ListBullet, 0
	case r[0] == '-':
		if len(r) > 1 && !unicode.IsSpace(r[1]) {
			return 0, ListNone, 0
		}
		return 1 + countSpace(r[1:]), ListDash, 0
	case r[0] >= '0' && r[0] <= '9':
		d := 0
		for d < len(r) && r[d] >= '0' && r[d] <= '9' {
			d++
		}
		if d >= len(r) || r[d] != '.' {
			return 0, ListNone, 0
		}
		if d+1 < len(r) && !unicode.IsSpace(r[d+1]) {
			return 0, ListNone, 0
		}
		num, err := strconv.Atoi(string(r[:d]))
		if err != nil {
			return 0, ListNone, 0
		}
		return d + 1 + countSpace(r[d+1:]), ListNumber, num
	}
	return 0, ListNone, 0
}

func matchTask(r []rune) TaskState {
	if len(r) < 4 || r[0] != '[' || r[2] != ']' || r[3] != ' ' {
		return TaskNone
	}
	switch r[1] {
	case ' ':
		return TaskOpen
	case 'x':
		return TaskDone
	}
	return TaskNone
}

// matchStar matches the star glyph and at most one following space.
func matchStar(r []rune) int {
	if len(r) == 0 || r[0] != starRune {
		return 0
	}
	if len(r) > 1 && r[1] == ' ' {
		return 2
	}
	return 1
}

func countSpace(r []rune) int {
	n := 0
	for n < len(r) && unicode.IsSpace(r[n]) {
		n++
	}
	return n
}
