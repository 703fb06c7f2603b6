package input

// Virtual key codes reported by libuiohook (the hook library under gohook).
// They follow scan code set 1 with 0x0E/0xE0 prefixes for extended keys.
var virtualCodes = map[uint16]Key{
	0x0001: KeyEscape,
	0x003B: KeyF1,
	0x003C: KeyF2,
	0x003D: KeyF3,
	0x003E: KeyF4,
	0x003F: KeyF5,
	0x0040: KeyF6,
	0x0041: KeyF7,
	0x0042: KeyF8,
	0x0043: KeyF9,
	0x0044: KeyF10,
	0x0057: KeyF11,
	0x0058: KeyF12,

	0x0029: KeyBackquote,
	0x0002: Key1,
	0x0003: Key2,
	0x0004: Key3,
	0x0005: Key4,
	0x0006: Key5,
	0x0007: Key6,
	0x0008: Key7,
	0x0009: Key8,
	0x000A: Key9,
	0x000B: Key0,
	0x000C: KeyMinus,
	0x000D: KeyEqual,
	0x000E: KeyBackspace,

	0x000F: KeyTab,
	0x003A: KeyCapsLock,

	0x001E: KeyA,
	0x0030: KeyB,
	0x002E: KeyC,
	0x0020: KeyD,
	0x0012: KeyE,
	0x0021: KeyF,
	0x0022: KeyG,
	0x0023: KeyH,
	0x0017: KeyI,
	0x0024: KeyJ,
	0x0025: KeyK,
	0x0026: KeyL,
	0x0032: KeyM,
	0x0031: KeyN,
	0x0018: KeyO,
	0x0019: KeyP,
	0x0010: KeyQ,
	0x0013: KeyR,
	0x001F: KeyS,
	0x0014: KeyT,
	0x0016: KeyU,
	0x002F: KeyV,
	0x0011: KeyW,
	0x002D: KeyX,
	0x0015: KeyY,
	0x002C: KeyZ,

	0x001A: KeyLeftBracket,
	0x001B: KeyRightBracket,
	0x002B: KeyBackslash,
	0x0027: KeySemicolon,
	0x0028: KeyQuote,
	0x001C: KeyEnter,
	0x0033: KeyComma,
	0x0034: KeyPeriod,
	0x0035: KeySlash,
	0x0039: KeySpace,

	0x0E37: KeyPrintScreen,
	0x0046: KeyScrollLock,
	0x0E45: KeyPause,
	0x0E52: KeyInsert,
	0x0E53: KeyDelete,
	0x0E47: KeyHome,
	0x0E4F: KeyEnd,
	0x0E49: KeyPageUp,
	0x0E51: KeyPageDown,

	0xE048: KeyUp,
	0xE050: KeyDown,
	0xE04B: KeyLeft,
	0xE04D: KeyRight,

	0x002A: KeyLeftShift,
	0x0036: KeyRightShift,
	0x001D: KeyLeftControl,
	0x0E1D: KeyRightControl,
	0x0038: KeyLeftAlt,
	0x0E38: KeyRightAlt,
	0x0E5B: KeyLeftMeta,
	0x0E5C: KeyRightMeta,
}

// KeyFromVirtualCode translates a libuiohook virtual key code. Codes with
// no Key mapping yield KeyUnknown.
func KeyFromVirtualCode(code uint16) Key {
	if k, ok := virtualCodes[code]; ok {
		return k
	}
	return KeyUnknown
}

// ButtonFromCode translates a libuiohook mouse button number.
func ButtonFromCode(code uint16) (Button, bool) {
	switch code {
	case 1:
		return ButtonLeft, true
	case 2:
		return ButtonRight, true
	case 3:
		return ButtonMiddle, true
	case 4:
		return ButtonSide, true
	case 5:
		return ButtonExtra, true
	}
	return 0, false
}

// Wheel axes reported by libuiohook.
const (
	WheelVertical   uint8 = 3
	WheelHorizontal uint8 = 4
)

// ScrollFromWheel translates a wheel rotation on an axis. A negative
// rotation is away from the user (up) or to the left.
func ScrollFromWheel(axis uint8, rotation int32) (ScrollDirection, bool) {
	if rotation == 0 {
		return 0, false
	}
	if axis == WheelHorizontal {
		if rotation < 0 {
			return ScrollLeft, true
		}
		return ScrollRight, true
	}
	if rotation < 0 {
		return ScrollUp, true
	}
	return ScrollDown, true
}

// HookKind is libuiohook's event type numbering, as exposed by gohook.
type HookKind uint8

const (
	HookEnabled HookKind = iota + 1
	HookDisabled
	// KeyTyped is the synthesized character event; it is not a transition.
	KeyTyped
	KeyPressed
	KeyReleased
	// MouseClicked follows a press and release without movement.
	MouseClicked
	MousePressed
	MouseReleased
	MouseMoved
	MouseDragged
	MouseWheel
)

// RawEvent carries the fields of a hook event needed for translation.
type RawEvent struct {
	Kind      HookKind
	Keycode   uint16
	Button    uint16
	X, Y      int16
	Rotation  int32
	Direction uint8
}

// KeyTransitionFromRaw translates a key press or release. Typed events and
// unmapped codes are rejected.
func KeyTransitionFromRaw(ev RawEvent) (KeyTransition, bool) {
	if ev.Kind != KeyPressed && ev.Kind != KeyReleased {
		return KeyTransition{}, false
	}
	k := KeyFromVirtualCode(ev.Keycode)
	if !k.Valid() {
		return KeyTransition{}, false
	}
	return KeyTransition{Key: k, Down: ev.Kind == KeyPressed}, true
}

// MouseEventFromRaw translates a pointer event. Clicks are rejected since
// the press and release were already reported.
func MouseEventFromRaw(ev RawEvent) (MouseEvent, bool) {
	switch ev.Kind {
	case MouseMoved, MouseDragged:
		return AbsoluteMove{X: int32(ev.X), Y: int32(ev.Y)}, true
	case MousePressed:
		if b, ok := ButtonFromCode(ev.Button); ok {
			return Press{Button: b}, true
		}
	case MouseReleased:
		if b, ok := ButtonFromCode(ev.Button); ok {
			return Release{Button: b}, true
		}
	case MouseWheel:
		if d, ok := ScrollFromWheel(ev.Direction, ev.Rotation); ok {
			return Scroll{Direction: d}, true
		}
	}
	return nil, false
}
