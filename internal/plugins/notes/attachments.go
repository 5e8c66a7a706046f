package notes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/marcus/twonote/internal/config"
	"github.com/marcus/twonote/internal/msg"
	"github.com/marcus/twonote/internal/store"
	"github.com/marcus/twonote/internal/styles"
)

// promptAddAttachment asks for a file path and attaches the file to the
// open note.
func (p *Plugin) promptAddAttachment() tea.Cmd {
	if p.note == nil {
		return msg.ShowToast("Open a note first", toastDuration)
	}
	id := p.note.ID
	return prompt("Attach file", "Path to file", "", func(path string) tea.Cmd {
		path = config.ExpandPath(path)
		return p.mutate("Attach", "Attached "+filepath.Base(path), func(ctx context.Context, st store.Storage) error {
			in, err := store.NewAttachmentInput(path)
			if err != nil {
				return err
			}
			_, err = st.AddAttachment(ctx, id, in)
			return err
		})
	})
}

// promptRemoveAttachment asks which attachment of the open note to remove.
func (p *Plugin) promptRemoveAttachment() tea.Cmd {
	if p.note == nil || len(p.note.Attachments) == 0 {
		return msg.ShowToast("No attachments", toastDuration)
	}
	id := p.note.ID
	atts := p.note.Attachments
	last := atts[len(atts)-1].Name
	return prompt("Remove attachment", "Attachment name", last, func(name string) tea.Cmd {
		for _, a := range atts {
			if a.Name != name {
				continue
			}
			attID := a.ID
			return p.mutate("Remove attachment", "Removed "+name, func(ctx context.Context, st store.Storage) error {
				return st.DeleteAttachment(ctx, id, attID)
			})
		}
		return msg.ShowToast("No attachment named "+name, toastDuration)
	})
}

// renderAttachmentBar lists the open note's attachments on one line.
func (p *Plugin) renderAttachmentBar(width int) string {
	if p.note == nil || len(p.note.Attachments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.note.Attachments))
	var total uint64
	for _, a := range p.note.Attachments {
		size := uint64(max(0, a.Size))
		total += size
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Name, humanize.Bytes(size)))
	}
	label := fmt.Sprintf("📎 %d · %s  ", len(parts), humanize.Bytes(total))
	line := label + strings.Join(parts, "  ")
	return styles.Attachment.Render(ansi.Truncate(line, width, "…"))
}
