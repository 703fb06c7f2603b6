// Package inputtest provides in-memory doubles for the input OS boundary.
package inputtest

import (
	"fmt"
	"sync"

	"globalinput/internal/input"
)

// Hook is a KeyboardHook and MouseHook whose callbacks are driven by tests.
type Hook struct {
	mu      sync.Mutex
	Err     error
	onKey   func(input.KeyTransition)
	onMouse func(input.MouseEvent)
}

// HookKeyboard records fn or returns h.Err.
func (h *Hook) HookKeyboard(fn func(input.KeyTransition)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.onKey = fn
	return nil
}

// HookMouse records fn or returns h.Err.
func (h *Hook) HookMouse(fn func(input.MouseEvent)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.onMouse = fn
	return nil
}

// Press delivers key presses.
func (h *Hook) Press(keys ...input.Key) {
	for _, k := range keys {
		h.Key(k, true)
	}
}

// Release delivers key releases.
func (h *Hook) Release(keys ...input.Key) {
	for _, k := range keys {
		h.Key(k, false)
	}
}

// Key delivers one key transition to the installed callback.
func (h *Hook) Key(k input.Key, down bool) {
	h.mu.Lock()
	fn := h.onKey
	h.mu.Unlock()
	if fn != nil {
		fn(input.KeyTransition{Key: k, Down: down})
	}
}

// Mouse delivers mouse events to the installed callback.
func (h *Hook) Mouse(events ...input.MouseEvent) {
	h.mu.Lock()
	fn := h.onMouse
	h.mu.Unlock()
	if fn == nil {
		return
	}
	for _, ev := range events {
		fn(ev)
	}
}

// Locator returns a fixed position or error.
type Locator struct {
	mu    sync.Mutex
	Pos   input.Position
	Err   error
	Calls int
}

// Position implements input.Locator.
func (l *Locator) Position() (input.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls++
	if l.Err != nil {
		return input.Position{}, l.Err
	}
	return l.Pos, nil
}

// Set changes the reported position and error.
func (l *Locator) Set(pos input.Position, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Pos, l.Err = pos, err
}

// Controller records every call in order. Err, when set, is returned from
// every call.
type Controller struct {
	mu    sync.Mutex
	calls []string
	Err   error
	// Applied, when set, receives one value per call.
	Applied chan struct{}
}

func (c *Controller) record(format string, args ...any) error {
	c.mu.Lock()
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
	err := c.Err
	applied := c.Applied
	c.mu.Unlock()
	if applied != nil {
		applied <- struct{}{}
	}
	return err
}

// Calls returns a snapshot of the recorded calls.
func (c *Controller) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Controller) MoveTo(x, y int32) error { return c.record("move_to %d %d", x, y) }

func (c *Controller) MoveRelative(dx, dy int32) error {
	return c.record("move_relative %d %d", dx, dy)
}

func (c *Controller) Press(b input.Button) error   { return c.record("press %s", b) }
func (c *Controller) Release(b input.Button) error { return c.record("release %s", b) }
func (c *Controller) Click(b input.Button) error   { return c.record("click %s", b) }

func (c *Controller) Scroll(d input.ScrollDirection) error { return c.record("scroll %s", d) }
