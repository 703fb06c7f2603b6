package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/input/inputtest"
	"globalinput/internal/queue"
)

type blockingHook struct{}

func (blockingHook) HookKeyboard(func(input.KeyTransition)) error {
	select {}
}

// slowHook finishes installing only after release is closed.
type slowHook struct {
	release   chan struct{}
	installed chan struct{}
	onMouse   func(input.MouseEvent)
}

func (h *slowHook) HookMouse(fn func(input.MouseEvent)) error {
	<-h.release
	h.onMouse = fn
	close(h.installed)
	return nil
}

func TestStartKeyboardPushesPresses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hook := &inputtest.Hook{}
	keys := queue.New[input.Key]()
	m := hotkey.NewMatcher()
	r := hotkey.NewRegistry(m)
	r.Add("save", []input.Key{input.KeyLeftControl, input.KeyS})

	if err := StartKeyboard(ctx, hook, keys, m); err != nil {
		t.Fatalf("StartKeyboard: %v", err)
	}

	hook.Press(input.KeyLeftControl, input.KeyS)
	hook.Release(input.KeyS, input.KeyLeftControl)

	got := keys.TryDrain()
	if len(got) != 2 || got[0] != input.KeyLeftControl || got[1] != input.KeyS {
		t.Errorf("Expected only the two presses, got %v", got)
	}
	if fired := r.Drain(); len(fired) != 1 || fired[0] != "save" {
		t.Errorf("Expected hotkey 'save' to fire, got %v", fired)
	}
}

func TestStartKeyboardNilMatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hook := &inputtest.Hook{}
	keys := queue.New[input.Key]()
	if err := StartKeyboard(ctx, hook, keys, nil); err != nil {
		t.Fatalf("StartKeyboard: %v", err)
	}
	hook.Press(input.KeyA)
	if keys.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", keys.Len())
	}
}

func TestStartMouseForwardsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hook := &inputtest.Hook{}
	events := queue.New[input.MouseEvent]()
	if err := StartMouse(ctx, hook, events); err != nil {
		t.Fatalf("StartMouse: %v", err)
	}

	hook.Mouse(input.AbsoluteMove{X: 1, Y: 2}, input.Press{Button: input.ButtonLeft})
	got := events.TryDrain()
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0] != (input.AbsoluteMove{X: 1, Y: 2}) {
		t.Errorf("Unexpected first event %#v", got[0])
	}
}

func TestStartSurfacesInstallFailure(t *testing.T) {
	errDenied := errors.New("permission denied")
	hook := &inputtest.Hook{Err: errDenied}

	err := StartMouse(context.Background(), hook, queue.New[input.MouseEvent]())
	if err == nil {
		t.Fatal("Expected an install error")
	}
	if !errors.Is(err, input.ErrHookInstallFailed) {
		t.Errorf("Expected ErrHookInstallFailed, got %v", err)
	}
	if !errors.Is(err, errDenied) {
		t.Errorf("Expected the cause to be preserved, got %v", err)
	}

	hookErr, ok := IsHookInstallError(fmt.Errorf("boot: %w", err))
	if !ok || hookErr.Device != "mouse" {
		t.Errorf("Expected a mouse HookInstallError, got %v", err)
	}
	if !strings.Contains(err.Error(), "mouse hook install failed") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestStartRespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := StartKeyboard(ctx, blockingHook{}, queue.New[input.Key](), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
	if !errors.Is(err, input.ErrHookInstallFailed) {
		t.Errorf("Expected ErrHookInstallFailed, got %v", err)
	}
}

func TestLateInstallIsMuted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	hook := &slowHook{release: make(chan struct{}), installed: make(chan struct{})}
	events := queue.New[input.MouseEvent]()

	err := StartMouse(ctx, hook, events)
	if !errors.Is(err, input.ErrHookInstallFailed) {
		t.Fatalf("Expected ErrHookInstallFailed, got %v", err)
	}

	close(hook.release)
	select {
	case <-hook.installed:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the late install")
	}

	hook.onMouse(input.AbsoluteMove{X: 5, Y: 5})
	if events.Len() != 0 {
		t.Errorf("Expected events of an abandoned hook to be discarded, got %d", events.Len())
	}
}
