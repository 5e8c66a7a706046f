package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/twonote/internal/styles"
)

// keyColumnWidth is the fixed width for the key column to ensure alignment.
// Fits "alt+x/ctrl+_" (12 chars) + KeyHint padding (2).
const keyColumnWidth = 14

// nameColumnWidth is the width of the entry name column.
const nameColumnWidth = 24

// renderItem represents a single line in the palette (header or entry).
type renderItem struct {
	isHeader   bool
	layer      Layer
	entry      *PaletteEntry
	entryIndex int // index in filtered entries (for cursor matching)
}

// View renders the command palette.
func (m Model) View() string {
	var b strings.Builder

	width := min(84, m.width-4)
	if width < 40 {
		width = 40
	}
	contentWidth := width - 4

	// Header with search input
	promptPrefix := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render(">")
	escChip := styles.KeyHint.Render("esc")
	inputWidth := contentWidth - lipgloss.Width(promptPrefix) - lipgloss.Width(escChip) - 3
	paddedInput := lipgloss.NewStyle().Width(inputWidth).Render(m.textInput.View())
	b.WriteString(fmt.Sprintf("%s %s %s", promptPrefix, paddedInput, escChip))
	b.WriteString("\n")

	// Mode indicator with context badge
	switch {
	case m.quickOpen:
		b.WriteString(styles.BarChip.Render("Notes"))
	case m.showAllContexts:
		b.WriteString(fmt.Sprintf("%s  %s", styles.BarChip.Render("All Contexts"), styles.Muted.Render("tab to toggle")))
	default:
		b.WriteString(fmt.Sprintf("%s  %s", styles.BarChip.Render(m.activeContext), styles.Muted.Render("tab to toggle")))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")

	items := m.buildRenderItems()
	totalEntries := len(m.filtered)

	visibleStart := m.offset
	visibleEnd := min(m.offset+m.maxVisible, totalEntries)

	if m.offset > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↑ %d more above", m.offset)))
		b.WriteString("\n")
	}

	for _, item := range items {
		if item.isHeader {
			if !m.quickOpen && m.layerHasVisibleEntries(item.layer, visibleStart, visibleEnd) {
				b.WriteString(m.renderLayerHeader(item.layer))
				b.WriteString("\n")
			}
			continue
		}
		if item.entryIndex >= visibleStart && item.entryIndex < visibleEnd {
			b.WriteString(m.renderEntry(*item.entry, item.entryIndex == m.cursor, contentWidth))
			b.WriteString("\n")
		}
	}

	if visibleEnd < totalEntries {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↓ %d more below", totalEntries-visibleEnd)))
		b.WriteString("\n")
	}

	if len(m.filtered) == 0 {
		empty := "No matching commands"
		if m.quickOpen {
			empty = "No matching notes"
		}
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(empty))
		b.WriteString("\n")
	}

	content := strings.TrimRight(b.String(), "\n")
	return styles.ModalBox.Width(width).Render(content)
}

// buildRenderItems creates a flat list of headers and entries for rendering.
func (m Model) buildRenderItems() []renderItem {
	groups := GroupEntriesByLayer(m.filtered)

	var items []renderItem
	entryIndex := 0
	for _, layer := range layerOrder {
		entries := groups[layer]
		if len(entries) == 0 {
			continue
		}
		items = append(items, renderItem{isHeader: true, layer: layer})
		for i := range entries {
			items = append(items, renderItem{entry: &entries[i], entryIndex: entryIndex})
			entryIndex++
		}
	}
	return items
}

// layerHasVisibleEntries checks if a layer has any entries in the visible range.
func (m Model) layerHasVisibleEntries(layer Layer, visibleStart, visibleEnd int) bool {
	groups := GroupEntriesByLayer(m.filtered)

	entryIndex := 0
	for _, l := range layerOrder {
		layerStart := entryIndex
		layerEnd := entryIndex + len(groups[l])
		if l == layer {
			return layerStart < visibleEnd && layerEnd > visibleStart
		}
		entryIndex = layerEnd
	}
	return false
}

// renderLayerHeader renders a layer section header.
func (m Model) renderLayerHeader(layer Layer) string {
	style := styles.SectionHeader.PaddingLeft(1)
	var name string
	switch layer {
	case LayerCurrentMode:
		name = strings.ToUpper(m.activeContext)
	case LayerPlugin:
		name = "OTHER CONTEXTS"
		style = styles.Muted.Bold(true).PaddingLeft(1)
	case LayerGlobal:
		name = "GLOBAL"
		style = styles.Subtle.PaddingLeft(1)
	case LayerNotes:
		name = "NOTES"
	}
	return style.Render(name)
}

// renderEntry renders a single palette entry.
func (m Model) renderEntry(entry PaletteEntry, selected bool, maxWidth int) string {
	var line string
	nameStr := lipgloss.NewStyle().Width(nameColumnWidth).Render(ansi.Truncate(highlightMatches(entry.Name, entry.MatchRanges), nameColumnWidth, "…"))

	if m.quickOpen {
		descWidth := maxWidth - nameColumnWidth - 4
		desc := styles.Muted.Render(ansi.Truncate(entry.Description, max(0, descWidth), "…"))
		line = fmt.Sprintf("  %s %s", nameStr, desc)
	} else {
		keyStr := ""
		if entry.Key != "" {
			keyStr = styles.KeyHint.Render(entry.Key)
		}
		if w := lipgloss.Width(keyStr); w < keyColumnWidth {
			keyStr += strings.Repeat(" ", keyColumnWidth-w)
		}

		desc := entry.Description
		if entry.ContextCount > 1 {
			desc = fmt.Sprintf("%s (%d contexts)", desc, entry.ContextCount)
		}
		descWidth := maxWidth - keyColumnWidth - nameColumnWidth - 4
		desc = ansi.Truncate(desc, max(0, descWidth), "...")
		line = fmt.Sprintf("  %s %s %s", keyStr, nameStr, styles.Muted.Render(desc))
	}

	padded := lipgloss.NewStyle().Width(maxWidth).Render(line)
	if selected {
		return styles.ListItemSelected.Width(maxWidth).Render(padded)
	}
	return styles.ListItemNormal.Render(padded)
}

// highlightMatches applies highlighting to matched characters.
func highlightMatches(text string, ranges []MatchRange) string {
	if len(ranges) == 0 {
		return text
	}

	var result strings.Builder
	lastEnd := 0
	for _, r := range ranges {
		if r.Start < lastEnd || r.End > len(text) {
			break
		}
		result.WriteString(text[lastEnd:r.Start])
		result.WriteString(styles.FuzzyMatchChar.Render(text[r.Start:r.End]))
		lastEnd = r.End
	}
	result.WriteString(text[lastEnd:])
	return result.String()
}
