package main

import (
	"fmt"
	"time"

	"globalinput/internal/frame"
	"globalinput/internal/input"
	"globalinput/internal/provider"
)

type demoSystem func() func(*frame.App)

var demos = map[string]demoSystem{
	"hotkey": hotkeyDemo,
	"log":    logDemo,
	"pos":    posDemo,
	"move":   moveDemo,
}

// hotkeyDemo prints every configured hotkey as it fires.
func hotkeyDemo() func(*frame.App) {
	return func(a *frame.App) {
		for _, ev := range frame.Events[provider.HotkeyEvent](a).Read() {
			fmt.Printf("%s hotkey event received\n", ev.Name)
		}
	}
}

// logDemo dumps key, button and scroll events.
func logDemo() func(*frame.App) {
	return func(a *frame.App) {
		for _, ev := range frame.Events[provider.KeyEvent](a).Read() {
			fmt.Printf("key: %s\n", ev.Key)
		}
		for _, ev := range frame.Events[provider.ButtonEvent](a).Read() {
			fmt.Printf("button: %s\n", ev.Button)
		}
		for _, ev := range frame.Events[provider.ScrollEvent](a).Read() {
			fmt.Printf("scroll: %s\n", ev.Direction)
		}
	}
}

// posDemo prints the pointer position twice a second.
func posDemo() func(*frame.App) {
	var last time.Time
	return func(a *frame.App) {
		if time.Since(last) < 500*time.Millisecond {
			return
		}
		last = time.Now()
		fmt.Printf("position: %s\n", *frame.Resource[input.Position](a))
	}
}

// moveDemo nudges the pointer left every tick while toggle_movement is on.
func moveDemo() func(*frame.App) {
	moving := false
	fmt.Println("Press the toggle_movement hotkey (default Ctrl+Shift+Space) to toggle movement.")
	return func(a *frame.App) {
		for _, ev := range frame.Events[provider.HotkeyEvent](a).Read() {
			if ev.Name == "toggle_movement" {
				moving = !moving
			}
		}
		if moving {
			frame.Events[provider.MouseControl](a).Send(provider.MouseControl{
				Command: input.MoveRelative{DX: -1, DY: 0},
			})
		}
	}
}
