package input

import (
	"errors"
	"sort"
	"testing"
)

// TestParseKey tests name and alias resolution
func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"ctrl", KeyLeftControl},
		{"LCtrl", KeyLeftControl},
		{"rctrl", KeyRightControl},
		{"Shift", KeyLeftShift},
		{" space ", KeySpace},
		{"F12", KeyF12},
		{"a", KeyA},
		{"Z", KeyZ},
		{"0", Key0},
		{"esc", KeyEscape},
		{"escape", KeyEscape},
		{"return", KeyEnter},
		{"cmd", KeyLeftMeta},
		{"win", KeyLeftMeta},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.name)
		if err != nil {
			t.Errorf("ParseKey(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

// TestParseKeyUnknown tests that unknown names are rejected
func TestParseKeyUnknown(t *testing.T) {
	for _, name := range []string{"", "hyper", "f13", "unknown"} {
		if _, err := ParseKey(name); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("ParseKey(%q): expected ErrUnknownKey, got %v", name, err)
		}
	}
}

// TestKeyNamesRoundTrip tests that every key's name parses back to itself
func TestKeyNamesRoundTrip(t *testing.T) {
	keys := Keys()
	if len(keys) != int(keyCount)-1 {
		t.Fatalf("Expected %d keys, got %d", keyCount-1, len(keys))
	}
	if !sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }) {
		t.Error("Keys() is not ordered")
	}
	for _, k := range keys {
		if !k.Valid() {
			t.Errorf("Key %d reported invalid", k)
		}
		got, err := ParseKey(k.String())
		if err != nil || got != k {
			t.Errorf("Round trip of %s gave %s (%v)", k, got, err)
		}
	}
	if KeyUnknown.Valid() || keyCount.Valid() {
		t.Error("Sentinel keys should not be valid")
	}
}

// TestVirtualCodesCoverEveryKey tests the hook translation table
func TestVirtualCodesCoverEveryKey(t *testing.T) {
	seen := make(map[Key]bool)
	for code, k := range virtualCodes {
		if seen[k] {
			t.Errorf("Key %s mapped from more than one code (0x%04X)", k, code)
		}
		seen[k] = true
	}
	for _, k := range Keys() {
		if !seen[k] {
			t.Errorf("Key %s has no virtual code", k)
		}
	}

	if KeyFromVirtualCode(0x001D) != KeyLeftControl {
		t.Error("Expected 0x001D to be left control")
	}
	if KeyFromVirtualCode(0xFFFF) != KeyUnknown {
		t.Error("Expected unmapped code to yield KeyUnknown")
	}
}

// TestButtonFromCode tests mouse button translation
func TestButtonFromCode(t *testing.T) {
	want := map[uint16]Button{1: ButtonLeft, 2: ButtonRight, 3: ButtonMiddle, 4: ButtonSide, 5: ButtonExtra}
	for code, b := range want {
		got, ok := ButtonFromCode(code)
		if !ok || got != b {
			t.Errorf("ButtonFromCode(%d) = %s, %v", code, got, ok)
		}
	}
	if _, ok := ButtonFromCode(0); ok {
		t.Error("Expected code 0 to be rejected")
	}
}

// TestScrollFromWheel tests wheel translation
func TestScrollFromWheel(t *testing.T) {
	tests := []struct {
		axis     uint8
		rotation int32
		want     ScrollDirection
		ok       bool
	}{
		{WheelVertical, -1, ScrollUp, true},
		{WheelVertical, 3, ScrollDown, true},
		{WheelHorizontal, -2, ScrollLeft, true},
		{WheelHorizontal, 1, ScrollRight, true},
		{WheelVertical, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ScrollFromWheel(tt.axis, tt.rotation)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ScrollFromWheel(%d, %d) = %s, %v; want %s, %v", tt.axis, tt.rotation, got, ok, tt.want, tt.ok)
		}
	}
}

// TestParseButtonAndDirection tests the string forms used on the wire
func TestParseButtonAndDirection(t *testing.T) {
	b, err := ParseButton("middle")
	if err != nil || b != ButtonMiddle {
		t.Errorf("ParseButton(middle) = %s, %v", b, err)
	}
	if _, err := ParseButton("fifth"); !errors.Is(err, ErrUnsupportedButton) {
		t.Errorf("Expected ErrUnsupportedButton, got %v", err)
	}

	d, err := ParseScrollDirection("left")
	if err != nil || d != ScrollLeft {
		t.Errorf("ParseScrollDirection(left) = %s, %v", d, err)
	}
	if _, err := ParseScrollDirection("sideways"); err == nil {
		t.Error("Expected error for unknown direction")
	}
}

// TestKeyTransitionFromRaw tests the hook kind mapping for keys
func TestKeyTransitionFromRaw(t *testing.T) {
	tests := []struct {
		name string
		ev   RawEvent
		want KeyTransition
		ok   bool
	}{
		{"press", RawEvent{Kind: KeyPressed, Keycode: 0x001D}, KeyTransition{Key: KeyLeftControl, Down: true}, true},
		{"release", RawEvent{Kind: KeyReleased, Keycode: 0x001D}, KeyTransition{Key: KeyLeftControl}, true},
		{"typed", RawEvent{Kind: KeyTyped, Keycode: 0x001D}, KeyTransition{}, false},
		{"unmapped", RawEvent{Kind: KeyPressed, Keycode: 0xFFFF}, KeyTransition{}, false},
		{"mouse kind", RawEvent{Kind: MousePressed, Keycode: 0x001D}, KeyTransition{}, false},
	}

	for _, tt := range tests {
		got, ok := KeyTransitionFromRaw(tt.ev)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: got %+v, %v; want %+v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

// TestMouseEventFromRaw tests the hook kind mapping for the pointer
func TestMouseEventFromRaw(t *testing.T) {
	tests := []struct {
		name string
		ev   RawEvent
		want MouseEvent
	}{
		{"move", RawEvent{Kind: MouseMoved, X: 10, Y: -2}, AbsoluteMove{X: 10, Y: -2}},
		{"drag", RawEvent{Kind: MouseDragged, X: 3, Y: 4}, AbsoluteMove{X: 3, Y: 4}},
		{"press", RawEvent{Kind: MousePressed, Button: 1}, Press{Button: ButtonLeft}},
		{"release", RawEvent{Kind: MouseReleased, Button: 2}, Release{Button: ButtonRight}},
		{"wheel", RawEvent{Kind: MouseWheel, Direction: WheelVertical, Rotation: -1}, Scroll{Direction: ScrollUp}},
		{"click", RawEvent{Kind: MouseClicked, Button: 1}, nil},
		{"unknown button", RawEvent{Kind: MousePressed, Button: 9}, nil},
		{"idle wheel", RawEvent{Kind: MouseWheel, Direction: WheelVertical}, nil},
		{"key kind", RawEvent{Kind: KeyPressed}, nil},
	}

	for _, tt := range tests {
		got, ok := MouseEventFromRaw(tt.ev)
		if ok != (tt.want != nil) || got != tt.want {
			t.Errorf("%s: got %#v, %v; want %#v", tt.name, got, ok, tt.want)
		}
	}
}

// TestHookKindNumbering pins the libuiohook event ids
func TestHookKindNumbering(t *testing.T) {
	want := map[HookKind]uint8{
		HookEnabled: 1, HookDisabled: 2, KeyTyped: 3, KeyPressed: 4, KeyReleased: 5,
		MouseClicked: 6, MousePressed: 7, MouseReleased: 8, MouseMoved: 9, MouseDragged: 10, MouseWheel: 11,
	}
	for kind, id := range want {
		if uint8(kind) != id {
			t.Errorf("Kind %d: expected id %d", kind, id)
		}
	}
}
