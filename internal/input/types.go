// Package input provides the device model for global keyboard and mouse
// capture, the interfaces at the OS boundary, and their gohook and robotgo
// backed implementations.
package input

import (
	"errors"
	"fmt"
)

var (
	// ErrHookInstallFailed is wrapped by every error reporting that a global
	// hook could not be installed (missing permission, no display, ...).
	ErrHookInstallFailed = errors.New("global input hook install failed")

	// ErrHookAlreadyBound is returned when a device callback is installed twice.
	ErrHookAlreadyBound = errors.New("global input hook already bound")

	// ErrUnsupportedButton is returned by controllers that cannot drive a button.
	ErrUnsupportedButton = errors.New("unsupported mouse button")
)

// Position is an absolute screen coordinate.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Button identifies a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
	ButtonSide
	ButtonExtra
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonSide:
		return "side"
	case ButtonExtra:
		return "extra"
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// ParseButton maps a button name back to a Button.
func ParseButton(s string) (Button, error) {
	for b := ButtonLeft; b <= ButtonExtra; b++ {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedButton, s)
}

// ScrollDirection is the direction of one wheel notch.
type ScrollDirection uint8

const (
	ScrollUp ScrollDirection = iota + 1
	ScrollDown
	ScrollLeft
	ScrollRight
)

func (d ScrollDirection) String() string {
	switch d {
	case ScrollUp:
		return "up"
	case ScrollDown:
		return "down"
	case ScrollLeft:
		return "left"
	case ScrollRight:
		return "right"
	}
	return fmt.Sprintf("scroll(%d)", uint8(d))
}

// ParseScrollDirection maps a direction name back to a ScrollDirection.
func ParseScrollDirection(s string) (ScrollDirection, error) {
	for d := ScrollUp; d <= ScrollRight; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown scroll direction %q", s)
}

// KeyTransition is one key press or release reported by the keyboard hook.
type KeyTransition struct {
	Key  Key
	Down bool
}

// MouseEvent is a raw event reported by the mouse hook. The set of
// implementations is closed: AbsoluteMove, RelativeMove, Press, Release
// and Scroll.
type MouseEvent interface {
	mouseEvent()
}

// AbsoluteMove reports the pointer at an absolute screen position.
type AbsoluteMove struct{ X, Y int32 }

// RelativeMove reports pointer motion as a delta.
type RelativeMove struct{ DX, DY int32 }

// Press reports a button going down.
type Press struct{ Button Button }

// Release reports a button going up.
type Release struct{ Button Button }

// Scroll reports one wheel notch.
type Scroll struct{ Direction ScrollDirection }

func (AbsoluteMove) mouseEvent() {}
func (RelativeMove) mouseEvent() {}
func (Press) mouseEvent()        {}
func (Release) mouseEvent()      {}
func (Scroll) mouseEvent()       {}

// MouseControl is a command for the mouse controller. The set of
// implementations is closed: MoveTo, MoveRelative, PressButton,
// ReleaseButton, ClickButton and ScrollWheel.
type MouseControl interface {
	mouseControl()
}

// MoveTo moves the pointer to an absolute position.
type MoveTo struct{ X, Y int32 }

// MoveRelative moves the pointer by a delta.
type MoveRelative struct{ DX, DY int32 }

// PressButton holds a button down.
type PressButton struct{ Button Button }

// ReleaseButton lets a button go.
type ReleaseButton struct{ Button Button }

// ClickButton presses and releases a button in one controller call.
type ClickButton struct{ Button Button }

// ScrollWheel scrolls one notch.
type ScrollWheel struct{ Direction ScrollDirection }

func (MoveTo) mouseControl()        {}
func (MoveRelative) mouseControl()  {}
func (PressButton) mouseControl()   {}
func (ReleaseButton) mouseControl() {}
func (ClickButton) mouseControl()   {}
func (ScrollWheel) mouseControl()   {}

// KeyboardHook installs a process-wide keyboard callback. The callback is
// invoked on a foreign goroutine and must not block.
type KeyboardHook interface {
	HookKeyboard(fn func(KeyTransition)) error
}

// MouseHook installs a process-wide mouse callback. The callback is invoked
// on a foreign goroutine and must not block.
type MouseHook interface {
	HookMouse(fn func(MouseEvent)) error
}

// Locator queries the current pointer position from the OS.
type Locator interface {
	Position() (Position, error)
}

// MouseController drives the OS pointer. Implementations need not be safe
// for concurrent use.
type MouseController interface {
	MoveTo(x, y int32) error
	MoveRelative(dx, dy int32) error
	Press(b Button) error
	Release(b Button) error
	Click(b Button) error
	Scroll(d ScrollDirection) error
}
