package palette

import (
	"sort"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/marcus/twonote/internal/keymap"
	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/plugin"
)

// Layer groups palette entries by where they apply.
type Layer int

const (
	LayerCurrentMode Layer = iota // commands of the focused context
	LayerPlugin                   // commands of other contexts
	LayerGlobal                   // commands available everywhere
	LayerNotes                    // notes, in quick-open mode
)

var layerOrder = []Layer{LayerCurrentMode, LayerPlugin, LayerGlobal, LayerNotes}

// MatchRange is a byte range of Name that matched the query.
type MatchRange struct {
	Start, End int
}

// PaletteEntry is one selectable row.
type PaletteEntry struct {
	Key          string
	Name         string
	Description  string
	Category     plugin.Category
	CommandID    string
	NoteID       string
	Context      string
	Layer        Layer
	ContextCount int
	MatchRanges  []MatchRange
}

// BuildEntries converts commands to palette entries. Unless all is set,
// only commands of activeContext and the global context are included.
// A command exposed in several contexts appears once, in the layer closest
// to activeContext.
func BuildEntries(km *keymap.Registry, cmds []plugin.Command, activeContext string, all bool) []PaletteEntry {
	contexts := make(map[string]map[string]bool)
	for _, c := range cmds {
		if contexts[c.ID] == nil {
			contexts[c.ID] = make(map[string]bool)
		}
		contexts[c.ID][contextOf(c)] = true
	}

	best := make(map[string]int)
	var out []PaletteEntry
	for _, c := range cmds {
		ctx := contextOf(c)
		layer := layerFor(ctx, activeContext)
		if !all && layer == LayerPlugin {
			continue
		}

		e := PaletteEntry{
			Name:         c.Name,
			Description:  c.Description,
			Category:     c.Category,
			CommandID:    c.ID,
			Context:      ctx,
			Layer:        layer,
			ContextCount: len(contexts[c.ID]),
		}
		if km != nil {
			e.Key = km.KeysFor(c.ID, ctx)
		}

		if i, ok := best[c.ID]; ok {
			if layer < out[i].Layer {
				out[i] = e
			}
			continue
		}
		best[c.ID] = len(out)
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func contextOf(c plugin.Command) string {
	if c.Context == "" {
		return keymap.GlobalContext
	}
	return c.Context
}

func layerFor(ctx, activeContext string) Layer {
	switch ctx {
	case activeContext:
		return LayerCurrentMode
	case keymap.GlobalContext:
		return LayerGlobal
	default:
		return LayerPlugin
	}
}

// NoteEntries lists notes for quick open, described by their notebook name.
func NoteEntries(notes []notebook.Note, notebooks []notebook.Notebook) []PaletteEntry {
	names := make(map[string]string, len(notebooks))
	for _, nb := range notebooks {
		names[nb.ID] = nb.Name
	}
	out := make([]PaletteEntry, 0, len(notes))
	for _, n := range notes {
		out = append(out, PaletteEntry{
			Name:        notebook.DisplayTitle(n),
			Description: names[n.NotebookID],
			NoteID:      n.ID,
			Layer:       LayerNotes,
		})
	}
	return out
}

// entrySource adapts entries to fuzzy.Source, matching on Name.
type entrySource []PaletteEntry

func (s entrySource) String(i int) string { return s[i].Name }
func (s entrySource) Len() int            { return len(s) }

// FilterEntries returns the entries whose name fuzzy-matches query, best
// match first within each layer, with MatchRanges set. An empty query
// returns every entry unchanged.
func FilterEntries(entries []PaletteEntry, query string) []PaletteEntry {
	if query == "" {
		out := make([]PaletteEntry, len(entries))
		for i, e := range entries {
			e.MatchRanges = nil
			out[i] = e
		}
		return out
	}

	matches := fuzzy.FindFrom(query, entrySource(entries))
	out := make([]PaletteEntry, 0, len(matches))
	for _, m := range matches {
		e := entries[m.Index]
		e.MatchRanges = toRanges(e.Name, m.MatchedIndexes)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Layer < out[j].Layer
	})
	return out
}

// toRanges merges matched byte offsets into contiguous ranges covering
// whole runes.
func toRanges(s string, idx []int) []MatchRange {
	var out []MatchRange
	for _, i := range idx {
		if i < 0 || i >= len(s) {
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		if n := len(out); n > 0 && out[n-1].End == i {
			out[n-1].End = i + size
			continue
		}
		out = append(out, MatchRange{Start: i, End: i + size})
	}
	return out
}

// GroupEntriesByLayer splits entries by layer, keeping their order.
func GroupEntriesByLayer(entries []PaletteEntry) map[Layer][]PaletteEntry {
	groups := make(map[Layer][]PaletteEntry)
	for _, e := range entries {
		groups[e.Layer] = append(groups[e.Layer], e)
	}
	return groups
}
