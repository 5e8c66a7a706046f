// Package keymap maps key presses to command IDs per focus context.
package keymap

import (
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// GlobalContext is consulted when the active context has no binding.
const GlobalContext = "global"

// sequenceTimeout is how long the first key of a sequence stays pending.
const sequenceTimeout = 500 * time.Millisecond

// Binding maps a key (or space-separated key sequence) to a command within
// a context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Command is an action that can be bound to keys or run from the palette.
type Command struct {
	ID      string
	Name    string
	Context string
	Handler func() tea.Cmd
}

// Registry holds commands, default bindings and user overrides.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]Command
	bindings  map[string][]Binding // context -> bindings
	overrides map[string][]Binding // context -> user bindings

	pendingKey  string
	pendingTime time.Time
	now         func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		bindings:  make(map[string][]Binding),
		overrides: make(map[string][]Binding),
		now:       time.Now,
	}
}

// RegisterDefaults registers the default bindings.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}

// RegisterCommand adds or replaces a command.
func (r *Registry) RegisterCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.ID] = cmd
}

// GetCommand looks up a command by ID.
func (r *Registry) GetCommand(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// RegisterBinding adds a default binding.
func (r *Registry) RegisterBinding(b Binding) {
	if b.Context == "" {
		b.Context = GlobalContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// SetUserOverride binds key to cmdID. The override applies in every context
// where cmdID has a default binding (global when it has none) and takes
// precedence over the defaults there.
func (r *Registry) SetUserOverride(key, cmdID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contexts := make(map[string]bool)
	for ctx, bs := range r.bindings {
		for _, b := range bs {
			if b.Command == cmdID {
				contexts[ctx] = true
			}
		}
	}
	if len(contexts) == 0 {
		contexts[GlobalContext] = true
	}
	for ctx := range contexts {
		kept := r.overrides[ctx][:0]
		for _, b := range r.overrides[ctx] {
			if b.Key != key {
				kept = append(kept, b)
			}
		}
		r.overrides[ctx] = append(kept, Binding{Key: key, Command: cmdID, Context: ctx})
	}
}

// Lookup resolves key in context, falling back to the global context.
func (r *Registry) Lookup(key, context string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(key, context)
}

func (r *Registry) lookup(key, context string) (string, bool) {
	for _, ctx := range []string{context, GlobalContext} {
		if id, ok := find(r.overrides[ctx], key); ok {
			return id, true
		}
		if id, ok := find(r.bindings[ctx], key); ok {
			return id, true
		}
		if ctx == GlobalContext {
			break
		}
	}
	return "", false
}

func find(bs []Binding, key string) (string, bool) {
	for _, b := range bs {
		if b.Key == key {
			return b.Command, true
		}
	}
	return "", false
}

// startsSequence reports whether key is the first key of a bound sequence.
func (r *Registry) startsSequence(key, context string) bool {
	prefix := key + " "
	for _, ctx := range []string{context, GlobalContext} {
		for _, set := range [][]Binding{r.overrides[ctx], r.bindings[ctx]} {
			for _, b := range set {
				if strings.HasPrefix(b.Key, prefix) {
					return true
				}
			}
		}
	}
	return false
}

// Resolve feeds one key press through the registry. It returns the bound
// command ID, or pending=true when key starts a sequence and the next key
// is needed.
func (r *Registry) Resolve(key, context string) (cmdID string, pending bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.pendingKey != "" {
		first := r.pendingKey
		fresh := now.Sub(r.pendingTime) <= sequenceTimeout
		r.pendingKey = ""
		if fresh {
			if id, ok := r.lookup(first+" "+key, context); ok {
				return id, false
			}
		}
	}

	if r.startsSequence(key, context) {
		r.pendingKey = key
		r.pendingTime = now
		return "", true
	}
	id, _ := r.lookup(key, context)
	return id, false
}

// HasPending reports whether a sequence is waiting for its next key.
func (r *Registry) HasPending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pendingKey != "" && r.now().Sub(r.pendingTime) <= sequenceTimeout
}

// Handle resolves a key message and returns the bound command's handler
// result. It returns nil when nothing is bound or the key is pending.
func (r *Registry) Handle(msg tea.KeyMsg, context string) tea.Cmd {
	id, pending := r.Resolve(msg.String(), context)
	if pending || id == "" {
		return nil
	}
	cmd, ok := r.GetCommand(id)
	if !ok || cmd.Handler == nil {
		return nil
	}
	return cmd.Handler()
}

// BindingsForContext returns the effective bindings of a context, user
// overrides first, without global fallbacks.
func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []Binding
	for _, set := range [][]Binding{r.overrides[context], r.bindings[context]} {
		for _, b := range set {
			if seen[b.Key] {
				continue
			}
			seen[b.Key] = true
			out = append(out, b)
		}
	}
	return out
}

// BindingsForCommand returns every effective binding of cmdID across
// contexts, sorted by context then key.
func (r *Registry) BindingsForCommand(cmdID string) []Binding {
	r.mu.RLock()
	contexts := make(map[string]bool)
	for ctx := range r.bindings {
		contexts[ctx] = true
	}
	for ctx := range r.overrides {
		contexts[ctx] = true
	}
	r.mu.RUnlock()

	var out []Binding
	for ctx := range contexts {
		for _, b := range r.BindingsForContext(ctx) {
			if b.Command == cmdID {
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Context != out[j].Context {
			return out[i].Context < out[j].Context
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// KeysFor returns the keys bound to cmdID in context (or global), joined
// for display, e.g. "alt+x/ctrl+_".
func (r *Registry) KeysFor(cmdID, context string) string {
	var keys []string
	for _, ctx := range []string{context, GlobalContext} {
		for _, b := range r.BindingsForContext(ctx) {
			if b.Command == cmdID {
				keys = append(keys, b.Key)
			}
		}
		if len(keys) > 0 || ctx == GlobalContext {
			break
		}
	}
	return strings.Join(keys, "/")
}
