// Package provider plugs global keyboard and mouse capture into a frame.App.
// Hook callbacks only fill queues; the systems registered here drain them
// once per tick into host event queues, keep the pointer position resource
// current and forward host control commands to the dispatcher.
package provider

import (
	"context"

	"globalinput/internal/bridge"
	"globalinput/internal/frame"
	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/queue"

	"go.uber.org/zap"
)

// KeyboardProvider publishes KeyEvent and HotkeyEvent and owns the
// hotkey.Registry resource.
type KeyboardProvider struct {
	Context context.Context
	Hook    input.KeyboardHook
	// Matcher is created when nil.
	Matcher *hotkey.Matcher
}

func (p *KeyboardProvider) Build(app *frame.App) {
	ctx := contextOrBackground(p.Context)
	if p.Matcher == nil {
		p.Matcher = hotkey.NewMatcher()
	}
	matcher := p.Matcher
	keys := queue.New[input.Key]()
	registry := hotkey.NewRegistry(matcher)
	status := hookStatus(app)

	frame.Insert(app, registry)
	frame.AddEvent[KeyEvent](app)
	frame.AddEvent[HotkeyEvent](app)

	app.AddStartup("install_keyboard_hook", func(*frame.App) error {
		status.keyboardInstalled = true
		status.Keyboard = bridge.StartKeyboard(ctx, p.Hook, keys, matcher)
		return status.Keyboard
	})

	app.AddSystem(frame.PreUpdate, "read_key_stream", func(a *frame.App) {
		out := frame.Events[KeyEvent](a)
		for _, k := range keys.TryDrain() {
			out.Send(KeyEvent{Key: k})
		}
	})
	app.AddSystem(frame.PreUpdate, "read_hotkeys", func(a *frame.App) {
		out := frame.Events[HotkeyEvent](a)
		for _, name := range registry.Drain() {
			out.Send(HotkeyEvent{Name: name})
		}
	})
}

// Close drops every hotkey binding so a hook that outlives the host no
// longer fires them.
func (p *KeyboardProvider) Close() {
	if p.Matcher != nil {
		p.Matcher.Clear()
	}
}

// MouseProvider publishes MouseEvent, ScrollEvent and ButtonEvent, keeps
// the input.Position resource and forwards MouseControl events.
type MouseProvider struct {
	Context    context.Context
	Hook       input.MouseHook
	Locator    input.Locator
	Controller input.MouseController
	// QueueLimit bounds the raw event queue, dropping the oldest events.
	// Zero means unbounded.
	QueueLimit int

	dispatcher *bridge.Dispatcher
}

func (p *MouseProvider) Build(app *frame.App) {
	ctx := contextOrBackground(p.Context)
	events := queue.New[input.MouseEvent]()
	if p.QueueLimit > 0 {
		events = queue.NewBounded[input.MouseEvent](p.QueueLimit)
	}
	if p.Controller != nil {
		p.dispatcher = bridge.NewDispatcher(p.Controller)
	} else {
		logger.Warn("No mouse controller, MouseControl events will be discarded", zap.String("component", "provider"))
	}
	dispatcher := p.dispatcher
	status := hookStatus(app)

	frame.Insert(app, &input.Position{})
	frame.AddEvent[MouseEvent](app)
	frame.AddEvent[ScrollEvent](app)
	frame.AddEvent[ButtonEvent](app)
	frame.AddEvent[MouseControl](app)

	app.AddStartup("install_mouse_hook", func(*frame.App) error {
		// Pointer control does not depend on the hook.
		if dispatcher != nil {
			dispatcher.Start()
		}
		status.mouseInstalled = true
		status.Mouse = bridge.StartMouse(ctx, p.Hook, events)
		return status.Mouse
	})

	var dropped uint64
	app.AddSystem(frame.PreUpdate, "read_mouse_stream", func(a *frame.App) {
		out := frame.Events[MouseEvent](a)
		for _, ev := range events.TryDrain() {
			out.Send(MouseEvent{Event: ev})
		}
		if n := events.Dropped(); n != dropped {
			logger.Debug("Mouse events dropped by bounded queue", zap.String("component", "provider"),
				zap.Uint64("dropped", n-dropped), zap.Uint64("total", n))
			dropped = n
		}
	})
	app.AddSystem(frame.PreUpdate, "split_mouse_events", splitMouseEvents)
	app.AddSystem(frame.PreUpdate, "store_last_position", func(a *frame.App) {
		storeLastPosition(a, p.Locator)
	})
	app.AddSystem(frame.PostUpdate, "forward_mouse_control", func(a *frame.App) {
		commands := frame.Events[MouseControl](a).Read()
		if dispatcher == nil {
			if len(commands) > 0 {
				logger.Debug("Discarding mouse control commands", zap.String("component", "provider"),
					zap.Int("count", len(commands)))
			}
			return
		}
		for _, c := range commands {
			dispatcher.Send(c.Command)
		}
	})
}

// Close stops the dispatcher once it has applied every queued command.
func (p *MouseProvider) Close() {
	if p.dispatcher == nil {
		return
	}
	p.dispatcher.Close()
	p.dispatcher.Wait()
}

func splitMouseEvents(a *frame.App) {
	scrolls := frame.Events[ScrollEvent](a)
	buttons := frame.Events[ButtonEvent](a)
	for _, raw := range frame.Events[MouseEvent](a).Read() {
		switch ev := raw.Event.(type) {
		case input.Scroll:
			scrolls.Send(ScrollEvent{Direction: ev.Direction})
		case input.Press:
			buttons.Send(ButtonEvent{Button: ev.Button})
		case input.AbsoluteMove, input.RelativeMove, input.Release:
		}
	}
}

func storeLastPosition(a *frame.App, loc input.Locator) {
	pos := frame.Resource[input.Position](a)
	if pos == nil {
		return
	}

	raw := frame.Events[MouseEvent](a).Read()
	for i := len(raw) - 1; i >= 0; i-- {
		if mv, ok := raw[i].Event.(input.AbsoluteMove); ok {
			*pos = input.Position{X: mv.X, Y: mv.Y}
			return
		}
	}

	if loc == nil {
		*pos = input.Position{}
		return
	}
	p, err := loc.Position()
	if err != nil {
		logger.Debug("Pointer position query failed", zap.String("component", "provider"), zap.Error(err))
		*pos = input.Position{}
		return
	}
	*pos = p
}

func hookStatus(app *frame.App) *HookStatus {
	if s := frame.Resource[HookStatus](app); s != nil {
		return s
	}
	s := &HookStatus{}
	frame.Insert(app, s)
	return s
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
