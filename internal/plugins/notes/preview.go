package notes

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/marcus/twonote/internal/formatting"
	"github.com/marcus/twonote/internal/state"
	"github.com/marcus/twonote/internal/styles"
)

// toMarkdown rewrites note markers as markdown: bullets and dashes become
// list items, tasks become checkboxes and plain lines get hard breaks so
// they are not merged into one paragraph.
func toMarkdown(content string) string {
	lines := formatting.SplitLines(content)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		p := formatting.ParsePrefix(line)
		if !p.HasMarker() {
			if strings.TrimSpace(line) != "" && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				line += "  "
			}
			out = append(out, line)
			continue
		}

		var b strings.Builder
		b.WriteString(p.Indent)
		if p.List == formatting.ListNumber {
			b.WriteString(strconv.Itoa(p.Number) + ". ")
		} else {
			b.WriteString("- ")
		}
		switch p.Task {
		case formatting.TaskOpen:
			b.WriteString("[ ] ")
		case formatting.TaskDone:
			b.WriteString("[x] ")
		}
		if p.Starred {
			b.WriteString("⭐ ")
		}
		b.WriteString(p.Body)
		out = append(out, b.String())
	}
	return strings.Join(out, "\n")
}

// renderPreview renders the open note as markdown, caching the renderer per
// width and theme.
func (p *Plugin) renderPreview(width int) string {
	if p.note == nil {
		return ""
	}
	wrap := max(10, width-2)
	if p.renderer == nil || p.rendererWidth != wrap || p.rendererTheme != styles.CurrentMarkdownTheme {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.CurrentMarkdownTheme),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			p.logger().Debug("notes: glamour init failed", "error", err)
			return p.content()
		}
		p.renderer = r
		p.rendererWidth = wrap
		p.rendererTheme = styles.CurrentMarkdownTheme
	}

	source := p.columns[0].Value()
	if p.twoColumn() {
		source += "\n\n---\n\n" + p.columns[1].Value()
	}
	out, err := p.renderer.Render(toMarkdown(source))
	if err != nil {
		p.logger().Debug("notes: preview render failed", "error", err)
		return source
	}
	return strings.Trim(out, "\n")
}

// scrollPreview scrolls the preview by delta lines.
func (p *Plugin) scrollPreview(delta int) {
	p.previewScroll = max(0, p.previewScroll+delta)
}

// cyclePreview advances off -> split -> only -> off and remembers the mode.
func (p *Plugin) cyclePreview() {
	p.previewMode = state.NextPreviewMode(p.previewMode)
	p.previewScroll = 0
	p.updateTextareaDimensions()
	if err := state.SetPreviewMode(p.previewMode); err != nil {
		p.logger().Debug("notes: save preview mode failed", "error", err)
	}
}

// sliceLines returns height lines of s starting at offset, clamping offset
// so the last page stays full.
func sliceLines(s string, offset, height int) (string, int) {
	lines := strings.Split(s, "\n")
	maxOffset := max(0, len(lines)-height)
	offset = max(0, min(offset, maxOffset))
	end := min(len(lines), offset+height)
	return strings.Join(lines[offset:end], "\n"), offset
}
