// Package bridge runs the background goroutines that sit between the OS and
// the host tick: one hook bridge per device class and the mouse control
// dispatcher.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/osutils"
	"globalinput/internal/queue"

	"go.uber.org/zap"
)

// idleInterval is how long a bridge goroutine sleeps between checks for
// cancellation once its hook is installed.
const idleInterval = 100 * time.Millisecond

const (
	installPending int32 = iota
	installSettled
	installAbandoned
)

// installGate records whether the caller of start is still waiting for the
// install result. Callbacks of a hook whose caller gave up are muted.
type installGate struct {
	state atomic.Int32
}

func (g *installGate) open() bool {
	return g.state.Load() != installAbandoned
}

// HookInstallError reports that a device hook could not be installed.
// errors.Is(err, input.ErrHookInstallFailed) holds for every instance.
type HookInstallError struct {
	Device string
	Err    error
}

func (e *HookInstallError) Error() string {
	msg := fmt.Sprintf("%s hook install failed: %v", e.Device, e.Err)
	if !osutils.IsAdmin() {
		msg += " (" + osutils.PrivilegeHint() + ")"
	}
	return msg
}

func (e *HookInstallError) Unwrap() error { return e.Err }

func (e *HookInstallError) Is(target error) bool {
	return target == input.ErrHookInstallFailed
}

// StartKeyboard installs the keyboard hook on a dedicated goroutine. Every
// transition is fed to matcher (if non-nil) and every press is pushed onto
// keys. It blocks until the install result is known.
func StartKeyboard(ctx context.Context, h input.KeyboardHook, keys *queue.Queue[input.Key], matcher *hotkey.Matcher) error {
	gate := &installGate{}
	callback := func(tr input.KeyTransition) {
		if !gate.open() {
			return
		}
		if matcher != nil {
			matcher.UpdateState(tr.Key, tr.Down)
		}
		if tr.Down {
			keys.Send(tr.Key)
		}
	}
	return start(ctx, "keyboard", gate, func() error { return h.HookKeyboard(callback) })
}

// StartMouse installs the mouse hook on a dedicated goroutine. Every event
// is pushed onto events. It blocks until the install result is known.
func StartMouse(ctx context.Context, h input.MouseHook, events *queue.Queue[input.MouseEvent]) error {
	gate := &installGate{}
	callback := func(ev input.MouseEvent) {
		if gate.open() {
			events.Send(ev)
		}
	}
	return start(ctx, "mouse", gate, func() error { return h.HookMouse(callback) })
}

func start(ctx context.Context, device string, gate *installGate, install func() error) error {
	result := make(chan error, 1)

	go func() {
		// Hooks keep an affinity to the thread that installed them
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		err := install()
		if !gate.state.CompareAndSwap(installPending, installSettled) {
			if err == nil {
				logger.Warn("Global input hook came up after startup gave up, its events are discarded",
					zap.String("component", "bridge"), zap.String("device", device))
			}
			return
		}
		result <- err
		if err != nil {
			return
		}
		idle(ctx)
	}()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		if gate.state.CompareAndSwap(installPending, installAbandoned) {
			err = ctx.Err()
		} else {
			err = <-result
		}
	}

	if err != nil {
		hookErr := &HookInstallError{Device: device, Err: err}
		logger.Error("Global input hook unavailable", zap.String("component", "bridge"),
			zap.String("device", device), zap.Error(hookErr))
		return hookErr
	}

	logger.Info("Global input hook installed", zap.String("component", "bridge"), zap.String("device", device))
	return nil
}

func idle(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(idleInterval):
		}
	}
}

// IsHookInstallError reports whether err carries a HookInstallError and
// returns it.
func IsHookInstallError(err error) (*HookInstallError, bool) {
	var hookErr *HookInstallError
	if errors.As(err, &hookErr) {
		return hookErr, true
	}
	return nil, false
}
