package notebook

import (
	"strings"

	"github.com/marcus/twonote/internal/formatting"
)

// ColumnSeparator divides the left and right column of a two-column note.
const ColumnSeparator = "\n|||COLUMN|||\n"

const (
	// maxTitleLength is the maximum length of a derived title.
	maxTitleLength = 80

	// UntitledTitle is shown for notes without a title.
	UntitledTitle = "Untitled"

	emptyTaskText = "(empty task)"
)

// SplitColumns splits stored content into its two columns. Content without
// a separator is entirely left column.
func SplitColumns(content string) (left, right string) {
	left, right, _ = strings.Cut(content, ColumnSeparator)
	return left, right
}

// JoinColumns combines two columns into stored content. A blank right column
// is dropped.
func JoinColumns(left, right string) string {
	if strings.TrimSpace(right) == "" {
		return left
	}
	return left + ColumnSeparator + right
}

// DeriveTitle returns the body of the first non-blank line with its markers
// stripped, truncated to 80 characters.
func DeriveTitle(content string) string {
	left, _ := SplitColumns(content)
	for _, line := range formatting.SplitLines(left) {
		body := strings.TrimSpace(formatting.ParsePrefix(line).Body)
		if body == "" {
			continue
		}
		r := []rune(body)
		if len(r) > maxTitleLength {
			body = strings.TrimSpace(string(r[:maxTitleLength]))
		}
		return body
	}
	return ""
}

// DisplayTitle returns the note title or a placeholder when it is empty.
func DisplayTitle(n Note) string {
	if strings.TrimSpace(n.Title) == "" {
		return UntitledTitle
	}
	return n.Title
}

// PendingTask is an open task line found in a note.
type PendingTask struct {
	NoteID    string
	NoteTitle string
	// Line is 1-based and counts lines of the stored content.
	Line int
	Text string
}

// PendingTasks collects every open task across notes, in note order then
// line order.
func PendingTasks(notes []Note) []PendingTask {
	var tasks []PendingTask
	for _, n := range notes {
		for i, line := range formatting.SplitLines(n.Content) {
			p := formatting.ParsePrefix(line)
			if p.Task != formatting.TaskOpen {
				continue
			}
			text := strings.TrimSpace(p.Body)
			if text == "" {
				text = emptyTaskText
			}
			tasks = append(tasks, PendingTask{
				NoteID:    n.ID,
				NoteTitle: DisplayTitle(n),
				Line:      i + 1,
				Text:      text,
			})
		}
	}
	return tasks
}

// TaskCounts returns the number of open and done tasks in content.
func TaskCounts(content string) (open, done int) {
	for _, line := range formatting.SplitLines(content) {
		switch formatting.ParsePrefix(line).Task {
		case formatting.TaskOpen:
			open++
		case formatting.TaskDone:
			done++
		}
	}
	return open, done
}
