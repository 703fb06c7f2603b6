package input

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned by ParseKey for names it does not recognise.
var ErrUnknownKey = errors.New("unknown key")

// Key identifies a physical keyboard key. Keys are totally ordered and
// usable as map keys.
type Key uint16

const (
	KeyUnknown Key = iota

	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyBackquote
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyMinus
	KeyEqual
	KeyBackspace

	KeyTab
	KeyCapsLock

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
	KeySemicolon
	KeyQuote
	KeyEnter
	KeyComma
	KeyPeriod
	KeySlash
	KeySpace

	KeyPrintScreen
	KeyScrollLock
	KeyPause
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyLeftShift
	KeyRightShift
	KeyLeftControl
	KeyRightControl
	KeyLeftAlt
	KeyRightAlt
	KeyLeftMeta
	KeyRightMeta

	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown: "unknown",

	KeyEscape: "esc",
	KeyF1:     "f1", KeyF2: "f2", KeyF3: "f3", KeyF4: "f4",
	KeyF5: "f5", KeyF6: "f6", KeyF7: "f7", KeyF8: "f8",
	KeyF9: "f9", KeyF10: "f10", KeyF11: "f11", KeyF12: "f12",

	KeyBackquote: "`",
	Key1:         "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",
	KeyMinus:     "-",
	KeyEqual:     "=",
	KeyBackspace: "backspace",

	KeyTab:      "tab",
	KeyCapsLock: "capslock",

	KeyA: "a", KeyB: "b", KeyC: "c", KeyD: "d", KeyE: "e", KeyF: "f",
	KeyG: "g", KeyH: "h", KeyI: "i", KeyJ: "j", KeyK: "k", KeyL: "l",
	KeyM: "m", KeyN: "n", KeyO: "o", KeyP: "p", KeyQ: "q", KeyR: "r",
	KeyS: "s", KeyT: "t", KeyU: "u", KeyV: "v", KeyW: "w", KeyX: "x",
	KeyY: "y", KeyZ: "z",

	KeyLeftBracket:  "[",
	KeyRightBracket: "]",
	KeyBackslash:    "\\",
	KeySemicolon:    ";",
	KeyQuote:        "'",
	KeyEnter:        "enter",
	KeyComma:        ",",
	KeyPeriod:       ".",
	KeySlash:        "/",
	KeySpace:        "space",

	KeyPrintScreen: "printscreen",
	KeyScrollLock:  "scrolllock",
	KeyPause:       "pause",
	KeyInsert:      "insert",
	KeyDelete:      "delete",
	KeyHome:        "home",
	KeyEnd:         "end",
	KeyPageUp:      "pageup",
	KeyPageDown:    "pagedown",

	KeyUp:    "up",
	KeyDown:  "down",
	KeyLeft:  "left",
	KeyRight: "right",

	KeyLeftShift:    "lshift",
	KeyRightShift:   "rshift",
	KeyLeftControl:  "lctrl",
	KeyRightControl: "rctrl",
	KeyLeftAlt:      "lalt",
	KeyRightAlt:     "ralt",
	KeyLeftMeta:     "lcmd",
	KeyRightMeta:    "rcmd",
}

// Generic modifier names resolve to the left-hand key.
var keyAliases = map[string]Key{
	"escape":    KeyEscape,
	"return":    KeyEnter,
	"del":       KeyDelete,
	"ins":       KeyInsert,
	"pgup":      KeyPageUp,
	"pgdn":      KeyPageDown,
	"prtsc":     KeyPrintScreen,
	"caps":      KeyCapsLock,
	"shift":     KeyLeftShift,
	"ctrl":      KeyLeftControl,
	"control":   KeyLeftControl,
	"alt":       KeyLeftAlt,
	"option":    KeyLeftAlt,
	"cmd":       KeyLeftMeta,
	"command":   KeyLeftMeta,
	"meta":      KeyLeftMeta,
	"super":     KeyLeftMeta,
	"win":       KeyLeftMeta,
	"rcontrol":  KeyRightControl,
	"roption":   KeyRightAlt,
	"rcommand":  KeyRightMeta,
	"rsuper":    KeyRightMeta,
	"rwin":      KeyRightMeta,
	"grave":     KeyBackquote,
	"backtick":  KeyBackquote,
	"plus":      KeyEqual,
	"semicolon": KeySemicolon,
	"comma":     KeyComma,
	"period":    KeyPeriod,
	"slash":     KeySlash,
}

var keyByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames)+len(keyAliases))
	for k := KeyEscape; k < keyCount; k++ {
		m[keyNames[k]] = k
	}
	for name, k := range keyAliases {
		m[name] = k
	}
	return m
}()

func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return fmt.Sprintf("key(%d)", uint16(k))
}

// Valid reports whether k names a real key.
func (k Key) Valid() bool {
	return k > KeyUnknown && k < keyCount
}

// ParseKey resolves a key name such as "ctrl", "F5" or "space". Matching
// is case-insensitive.
func ParseKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyByName[n]; ok {
		return k, nil
	}
	return KeyUnknown, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Keys returns every valid key in order.
func Keys() []Key {
	out := make([]Key, 0, keyCount-1)
	for k := KeyEscape; k < keyCount; k++ {
		out = append(out, k)
	}
	return out
}
