package native

import (
	"fmt"

	"globalinput/internal/input"

	"github.com/go-vgo/robotgo"
)

// Injector drives the OS pointer through robotgo. It implements both
// input.MouseController and input.Locator.
type Injector struct{}

// NewInjector creates a new pointer injector.
func NewInjector() *Injector {
	return &Injector{}
}

// MoveTo moves the pointer to an absolute position.
func (i *Injector) MoveTo(x, y int32) error {
	robotgo.Move(int(x), int(y))
	return nil
}

// MoveRelative moves the pointer by a delta.
func (i *Injector) MoveRelative(dx, dy int32) error {
	robotgo.MoveRelative(int(dx), int(dy))
	return nil
}

// Press holds a button down.
func (i *Injector) Press(b input.Button) error {
	name, err := buttonName(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "down")
}

// Release lets a button go.
func (i *Injector) Release(b input.Button) error {
	name, err := buttonName(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "up")
}

// Click presses and releases a button.
func (i *Injector) Click(b input.Button) error {
	name, err := buttonName(b)
	if err != nil {
		return err
	}
	robotgo.Click(name, false)
	return nil
}

// Scroll scrolls one notch.
func (i *Injector) Scroll(d input.ScrollDirection) error {
	switch d {
	case input.ScrollUp:
		robotgo.Scroll(0, 1)
	case input.ScrollDown:
		robotgo.Scroll(0, -1)
	case input.ScrollLeft:
		robotgo.Scroll(-1, 0)
	case input.ScrollRight:
		robotgo.Scroll(1, 0)
	default:
		return fmt.Errorf("invalid scroll direction: %d", d)
	}
	return nil
}

// Position returns the current pointer location. robotgo has no failure
// path for this query.
func (i *Injector) Position() (input.Position, error) {
	x, y := robotgo.Location()
	return input.Position{X: int32(x), Y: int32(y)}, nil
}

func buttonName(b input.Button) (string, error) {
	switch b {
	case input.ButtonLeft:
		return "left", nil
	case input.ButtonRight:
		return "right", nil
	case input.ButtonMiddle:
		return "center", nil
	}
	return "", fmt.Errorf("%w: %s", input.ErrUnsupportedButton, b)
}
