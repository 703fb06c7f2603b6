// Package native binds the input interfaces to the OS through gohook (global
// hooks) and robotgo (pointer control).
package native

import (
	"fmt"
	"sync"
	"time"

	"globalinput/internal/input"
	"globalinput/internal/logger"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// DefaultHookTimeout bounds how long Trap waits for the hook to report
// that it is enabled.
const DefaultHookTimeout = 3 * time.Second

// Trap owns the process-wide gohook event stream and fans it out to one
// keyboard and one mouse callback. The underlying hook is a process
// singleton: it is started once and never reinstalled.
type Trap struct {
	timeout time.Duration

	once     sync.Once
	startErr error

	mu      sync.RWMutex
	onKey   func(input.KeyTransition)
	onMouse func(input.MouseEvent)
}

var (
	sharedTrap     *Trap
	sharedTrapOnce sync.Once

	hookStart = hook.Start
	hookEnd   = hook.End
)

// SharedTrap returns the process-wide Trap. The timeout of the first call
// wins.
func SharedTrap(timeout time.Duration) *Trap {
	sharedTrapOnce.Do(func() {
		if timeout <= 0 {
			timeout = DefaultHookTimeout
		}
		sharedTrap = &Trap{timeout: timeout}
	})
	return sharedTrap
}

// HookKeyboard installs fn as the keyboard callback.
func (t *Trap) HookKeyboard(fn func(input.KeyTransition)) error {
	if err := t.start(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.onKey != nil {
		return fmt.Errorf("keyboard: %w", input.ErrHookAlreadyBound)
	}
	t.onKey = fn
	return nil
}

// HookMouse installs fn as the mouse callback.
func (t *Trap) HookMouse(fn func(input.MouseEvent)) error {
	if err := t.start(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.onMouse != nil {
		return fmt.Errorf("mouse: %w", input.ErrHookAlreadyBound)
	}
	t.onMouse = fn
	return nil
}

// start launches the gohook loop and waits for its hook-enabled event. On
// timeout the loop is ended so no hook is left installed.
func (t *Trap) start() error {
	t.once.Do(func() {
		logger.Info("Starting global input hook", zap.String("component", "trap"), zap.Duration("timeout", t.timeout))

		events := hookStart()
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					// Already ended; End would close the stream twice
					t.startErr = fmt.Errorf("%w: event stream closed before hook was enabled", input.ErrHookInstallFailed)
					return
				}
				if input.HookKind(ev.Kind) == input.HookEnabled {
					logger.Info("Global input hook enabled", zap.String("component", "trap"))
					go t.dispatch(events)
					return
				}
			case <-timer.C:
				hookEnd()
				t.startErr = fmt.Errorf("%w: hook not enabled within %s", input.ErrHookInstallFailed, t.timeout)
				return
			}
		}
	})
	return t.startErr
}

// dispatch runs for the life of the process on the gohook event stream.
func (t *Trap) dispatch(events chan hook.Event) {
	for ev := range events {
		raw := rawEvent(ev)
		switch raw.Kind {
		case input.KeyPressed, input.KeyReleased:
			t.mu.RLock()
			fn := t.onKey
			t.mu.RUnlock()
			if fn == nil {
				continue
			}
			if tr, ok := input.KeyTransitionFromRaw(raw); ok {
				fn(tr)
			}

		case input.MousePressed, input.MouseReleased, input.MouseMoved, input.MouseDragged, input.MouseWheel:
			t.mu.RLock()
			fn := t.onMouse
			t.mu.RUnlock()
			if fn == nil {
				continue
			}
			if me, ok := input.MouseEventFromRaw(raw); ok {
				fn(me)
			}

		case input.HookDisabled:
			logger.Warn("Global input hook disabled by the OS", zap.String("component", "trap"))
		}
	}
}

func rawEvent(ev hook.Event) input.RawEvent {
	return input.RawEvent{
		Kind:      input.HookKind(ev.Kind),
		Keycode:   ev.Keycode,
		Button:    ev.Button,
		X:         ev.X,
		Y:         ev.Y,
		Rotation:  ev.Rotation,
		Direction: ev.Direction,
	}
}
