// Package hotkey provides chord matching against the global key stream and
// the named hotkey registry built on top of it.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"globalinput/internal/input"
	"globalinput/internal/logger"

	"go.uber.org/zap"
)

// ErrEmptySequence is returned when a hotkey has no keys.
var ErrEmptySequence = errors.New("hotkey sequence is empty")

// Binding identifies one registration in a Matcher.
type Binding uint64

// Matcher tracks which keys are held and fires registered callbacks when
// every key of a sequence is down. UpdateState is called from the keyboard
// hook goroutine; Register and Unregister from anywhere.
type Matcher struct {
	mu           sync.RWMutex
	next         Binding
	hotkeys      map[Binding]*registeredHotkey
	currentState map[input.Key]bool
}

type registeredHotkey struct {
	keys     []input.Key
	callback func()
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		hotkeys:      make(map[Binding]*registeredHotkey),
		currentState: make(map[input.Key]bool),
	}
}

// Register adds a sequence and its callback. The callback runs on the
// goroutine calling UpdateState and must not block.
func (m *Matcher) Register(sequence []input.Key, callback func()) Binding {
	keys := make([]input.Key, len(sequence))
	copy(keys, sequence)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.hotkeys[m.next] = &registeredHotkey{keys: keys, callback: callback}
	return m.next
}

// Unregister removes a binding. It reports whether the binding existed.
func (m *Matcher) Unregister(b Binding) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotkeys[b]; !ok {
		return false
	}
	delete(m.hotkeys, b)
	return true
}

// Clear removes all bindings.
func (m *Matcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = make(map[Binding]*registeredHotkey)
}

// Len returns the number of live bindings.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hotkeys)
}

// UpdateState records a key transition and, on a press, fires every
// binding whose keys are all held and which contains the pressed key.
func (m *Matcher) UpdateState(key input.Key, isDown bool) {
	m.mu.Lock()
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown {
		m.checkMatches(key)
	}
}

func (m *Matcher) checkMatches(pressed input.Key) {
	var fire []func()

	m.mu.RLock()
	for _, hk := range m.hotkeys {
		if len(hk.keys) == 0 {
			continue
		}
		match := false
		for _, k := range hk.keys {
			if k == pressed {
				match = true
				break
			}
		}
		// All keys of the hotkey must be in currentState
		for _, k := range hk.keys {
			if !m.currentState[k] {
				match = false
				break
			}
		}
		if match {
			fire = append(fire, hk.callback)
		}
	}
	m.mu.RUnlock()

	for _, fn := range fire {
		fn()
	}
}

// ParseSequence parses a hotkey string such as "Ctrl+Shift+Space".
func ParseSequence(s string) ([]input.Key, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptySequence
	}
	parts := strings.Split(s, "+")
	keys := make([]input.Key, 0, len(parts))
	for _, p := range parts {
		k, err := input.ParseKey(p)
		if err != nil {
			return nil, fmt.Errorf("hotkey %q: %w", s, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// FormatSequence renders a sequence in the form ParseSequence accepts.
func FormatSequence(keys []input.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, "+")
}

func logMissing(name string) {
	logger.Warn("Tried to remove global hotkey which was not registered",
		zap.String("component", "hotkey"), zap.String("name", name))
}
