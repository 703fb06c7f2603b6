// Package protocol defines the JSON messages exchanged over the WebSocket
// surface.
package protocol

import (
	"encoding/json"
	"fmt"

	"globalinput/internal/input"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeWelcome is sent by the server right after a client connects
	TypeWelcome MessageType = "welcome"

	// TypeHotkey is broadcast whenever a registered hotkey fires
	TypeHotkey MessageType = "hotkey"

	// TypeMouse is sent by a client to drive the pointer
	TypeMouse MessageType = "mouse"

	// TypeStatusRequest is sent by a client to ask for a status snapshot
	TypeStatusRequest MessageType = "status_req"

	// TypeStatus carries a status snapshot
	TypeStatus MessageType = "status"

	// TypeError reports a rejected client message
	TypeError MessageType = "error"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// DecodePayload converts a decoded Message payload into v.
func DecodePayload(msg Message, v interface{}) error {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s payload: %w", msg.Type, err)
	}
	return nil
}

// WelcomePayload is the payload for TypeWelcome
type WelcomePayload struct {
	ClientID string `json:"client_id"`
}

// HotkeyPayload is the payload for TypeHotkey
type HotkeyPayload struct {
	Name string `json:"name"`
}

// ErrorPayload is the payload for TypeError
type ErrorPayload struct {
	Message string `json:"message"`
}

// StatusPayload is the payload for TypeStatus and the body of GET /api/status
type StatusPayload struct {
	KeyboardHook bool              `json:"keyboard_hook"`
	MouseHook    bool              `json:"mouse_hook"`
	Errors       []string          `json:"errors,omitempty"`
	Hotkeys      map[string]string `json:"hotkeys"`
	Position     input.Position    `json:"position"`
	Ticks        uint64            `json:"ticks"`
}

// Mouse actions accepted in MousePayload.Action
const (
	ActionMoveTo       = "move_to"
	ActionMoveRelative = "move_relative"
	ActionPress        = "press"
	ActionRelease      = "release"
	ActionClick        = "click"
	ActionScroll       = "scroll"
)

// MousePayload is the payload for TypeMouse and the body of POST /api/mouse
type MousePayload struct {
	Action    string `json:"action"`
	X         int32  `json:"x,omitempty"`
	Y         int32  `json:"y,omitempty"`
	Button    string `json:"button,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Command converts the payload into a mouse control command. For
// move_relative, X and Y are the deltas.
func (p MousePayload) Command() (input.MouseControl, error) {
	switch p.Action {
	case ActionMoveTo:
		return input.MoveTo{X: p.X, Y: p.Y}, nil
	case ActionMoveRelative:
		return input.MoveRelative{DX: p.X, DY: p.Y}, nil
	case ActionPress, ActionRelease, ActionClick:
		b, err := input.ParseButton(p.Button)
		if err != nil {
			return nil, err
		}
		switch p.Action {
		case ActionPress:
			return input.PressButton{Button: b}, nil
		case ActionRelease:
			return input.ReleaseButton{Button: b}, nil
		}
		return input.ClickButton{Button: b}, nil
	case ActionScroll:
		d, err := input.ParseScrollDirection(p.Direction)
		if err != nil {
			return nil, err
		}
		return input.ScrollWheel{Direction: d}, nil
	}
	return nil, fmt.Errorf("unknown mouse action %q", p.Action)
}

// MouseFromCommand is the inverse of MousePayload.Command.
func MouseFromCommand(cmd input.MouseControl) MousePayload {
	switch c := cmd.(type) {
	case input.MoveTo:
		return MousePayload{Action: ActionMoveTo, X: c.X, Y: c.Y}
	case input.MoveRelative:
		return MousePayload{Action: ActionMoveRelative, X: c.DX, Y: c.DY}
	case input.PressButton:
		return MousePayload{Action: ActionPress, Button: c.Button.String()}
	case input.ReleaseButton:
		return MousePayload{Action: ActionRelease, Button: c.Button.String()}
	case input.ClickButton:
		return MousePayload{Action: ActionClick, Button: c.Button.String()}
	case input.ScrollWheel:
		return MousePayload{Action: ActionScroll, Direction: c.Direction.String()}
	}
	return MousePayload{}
}
