package provider

import (
	"errors"

	"globalinput/internal/input"
)

// KeyEvent is published once per key press seen by the keyboard hook.
type KeyEvent struct {
	Key input.Key
}

// HotkeyEvent is published once per trigger of a registered hotkey.
type HotkeyEvent struct {
	Name string
}

// MouseEvent wraps one raw event from the mouse hook.
type MouseEvent struct {
	Event input.MouseEvent
}

// ScrollEvent is derived from every raw Scroll event.
type ScrollEvent struct {
	Direction input.ScrollDirection
}

// ButtonEvent is derived from every raw Press event.
type ButtonEvent struct {
	Button input.Button
}

// MouseControl is sent by host systems to drive the pointer. Commands are
// forwarded to the dispatcher in the PostUpdate stage of the same tick.
type MouseControl struct {
	Command input.MouseControl
}

// HookStatus records the install result of each device hook. A nil field
// means the hook is live.
type HookStatus struct {
	Keyboard error
	Mouse    error

	keyboardInstalled bool
	mouseInstalled    bool
}

// Available reports whether at least one hook was installed and none of the
// installed hooks failed. It is false until startup has run.
func (s *HookStatus) Available() bool {
	if !s.keyboardInstalled && !s.mouseInstalled {
		return false
	}
	return s.Keyboard == nil && s.Mouse == nil
}

// KeyboardReady reports whether the keyboard hook was installed successfully.
func (s *HookStatus) KeyboardReady() bool {
	return s.keyboardInstalled && s.Keyboard == nil
}

// MouseReady reports whether the mouse hook was installed successfully.
func (s *HookStatus) MouseReady() bool {
	return s.mouseInstalled && s.Mouse == nil
}

// Err joins the install errors, or returns nil.
func (s *HookStatus) Err() error {
	return errors.Join(s.Keyboard, s.Mouse)
}
