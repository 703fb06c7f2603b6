package provider

import (
	"context"

	"globalinput/internal/frame"
	"globalinput/internal/hotkey"
	"globalinput/internal/input"
)

// Backend bundles the OS boundary used by both providers.
type Backend interface {
	input.KeyboardHook
	input.MouseHook
}

// Options configures Plugins.
type Options struct {
	Context    context.Context
	Hook       Backend
	Locator    input.Locator
	Controller input.MouseController
	QueueLimit int
	// Hotkeys are registered once the registry exists.
	Hotkeys map[string][]input.Key
}

// Group is a set of plugins built in order.
type Group struct {
	Keyboard *KeyboardProvider
	Mouse    *MouseProvider
	hotkeys  map[string][]input.Key
}

// Plugins returns the keyboard and mouse providers sharing one backend.
func Plugins(opts Options) *Group {
	return &Group{
		Keyboard: &KeyboardProvider{Context: opts.Context, Hook: opts.Hook},
		Mouse: &MouseProvider{
			Context:    opts.Context,
			Hook:       opts.Hook,
			Locator:    opts.Locator,
			Controller: opts.Controller,
			QueueLimit: opts.QueueLimit,
		},
		hotkeys: opts.Hotkeys,
	}
}

func (g *Group) Build(app *frame.App) {
	app.AddPlugin(g.Keyboard).AddPlugin(g.Mouse)

	registry := frame.Resource[hotkey.Registry](app)
	for name, seq := range g.hotkeys {
		registry.Add(name, seq)
	}
}

// Close drops the hotkey bindings and stops the mouse control dispatcher.
func (g *Group) Close() {
	g.Keyboard.Close()
	g.Mouse.Close()
}
