package hotkey

import (
	"slices"
	"sort"

	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/queue"

	"go.uber.org/zap"
)

// Registry maps hotkey names to key sequences and keeps exactly one
// Matcher binding per live name. It is owned by the host tick goroutine
// and is not safe for concurrent use; binding callbacks only touch the
// fired queue.
type Registry struct {
	matcher *Matcher
	fired   *queue.Queue[string]
	entries map[string]entry
}

type entry struct {
	keys    []input.Key
	binding Binding
}

// NewRegistry creates a registry that installs its bindings on m.
func NewRegistry(m *Matcher) *Registry {
	return &Registry{
		matcher: m,
		fired:   queue.New[string](),
		entries: make(map[string]entry),
	}
}

// Add registers a hotkey under name. An existing hotkey with the same name
// is removed first.
func (r *Registry) Add(name string, sequence []input.Key) {
	if _, ok := r.entries[name]; ok {
		r.Remove(name)
	}
	if len(sequence) == 0 {
		logger.Warn("Registering global hotkey with an empty sequence; it will never fire",
			zap.String("component", "hotkey"), zap.String("name", name))
	}

	keys := slices.Clone(sequence)
	fired := r.fired
	b := r.matcher.Register(keys, func() { fired.Send(name) })
	r.entries[name] = entry{keys: keys, binding: b}

	logger.Debug("Registered global hotkey", zap.String("component", "hotkey"),
		zap.String("name", name), zap.String("sequence", FormatSequence(keys)))
}

// Remove unregisters the hotkey called name. Removing an unknown name logs
// a warning and does nothing else.
func (r *Registry) Remove(name string) {
	e, ok := r.entries[name]
	if !ok {
		logMissing(name)
		return
	}
	r.matcher.Unregister(e.binding)
	delete(r.entries, name)
}

// Sequence returns a copy of the keys registered under name.
func (r *Registry) Sequence(name string) ([]input.Key, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.keys), true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered hotkeys.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Drain returns the names of every hotkey fired since the last call, in
// firing order. It never blocks.
func (r *Registry) Drain() []string {
	return r.fired.TryDrain()
}
