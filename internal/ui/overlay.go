// Package ui provides the overlay compositing and dialogs shared by the app.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/twonote/internal/styles"
)

// DimStyle is applied to background content behind modals. Existing ANSI
// codes are stripped first because SGR 2 (faint) doesn't reliably combine
// with colors in most terminals.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// Placement is where an overlay sits on the screen.
type Placement int

const (
	Center Placement = iota
	BottomRight
	TopRight
)

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

// origin returns the top-left cell of a w x h box placed inside the screen.
func origin(p Placement, w, h, width, height int) (x, y int) {
	switch p {
	case BottomRight:
		x, y = width-w-1, height-h-1
	case TopRight:
		x, y = width-w-1, 1
	default:
		x, y = (width-w)/2, (height-h)/2
	}
	return max(0, x), max(0, y)
}

// compositeRow splices fg into bg at column x. With dim set, the visible
// background is stripped and dimmed.
func compositeRow(bg, fg string, x, fgWidth int, dim bool) string {
	var b strings.Builder

	plain := ansi.Strip(bg)
	bgWidth := ansi.StringWidth(plain)
	left, right := ansi.Truncate(bg, x, ""), ansi.Cut(bg, x+fgWidth, max(bgWidth, x+fgWidth))
	if dim {
		left = DimStyle.Render(ansi.Truncate(plain, x, ""))
		right = DimStyle.Render(ansi.Cut(plain, x+fgWidth, max(bgWidth, x+fgWidth)))
	}

	b.WriteString(left)
	if w := ansi.StringWidth(left); w < x {
		b.WriteString(strings.Repeat(" ", x-w))
	}
	b.WriteString(fg)
	if w := ansi.StringWidth(fg); w < fgWidth {
		b.WriteString(strings.Repeat(" ", fgWidth-w))
	}
	if bgWidth > x+fgWidth {
		b.WriteString(right)
	}
	return b.String()
}

// Overlay draws fg over background at placement. When dim is set the rest
// of the background is dimmed, as behind a modal.
func Overlay(background, fg string, width, height int, placement Placement, dim bool) string {
	bgLines := strings.Split(background, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	fgLines := strings.Split(fg, "\n")
	fgWidth := maxLineWidth(fgLines)
	x, y := origin(placement, fgWidth, len(fgLines), width, height)

	out := make([]string, 0, height)
	for row := 0; row < height; row++ {
		line := bgLines[row]
		switch i := row - y; {
		case i >= 0 && i < len(fgLines):
			out = append(out, compositeRow(line, fgLines[i], x, fgWidth, dim))
		case dim:
			out = append(out, DimStyle.Render(ansi.Strip(line)))
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// OverlayModal centers modal on a dimmed background.
func OverlayModal(background, modal string, width, height int) string {
	return Overlay(background, modal, width, height, Center, true)
}

// Toast renders a short message box for the bottom-right corner.
func Toast(message string, isError bool, maxWidth int) string {
	style := styles.ToastSuccess
	if isError {
		style = styles.ToastError
	}
	return style.Render(ansi.Truncate(message, max(10, maxWidth), "…"))
}
