package api

import (
	"globalinput/internal/frame"
	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/protocol"
	"globalinput/internal/provider"

	"go.uber.org/zap"
)

// HotkeyStore persists hotkey changes made through the API.
type HotkeyStore interface {
	SaveHotkey(name, sequence string) error
	RemoveHotkey(name string) error
}

// request is a remote mutation applied on the tick goroutine. store may be
// nil.
type request interface {
	apply(a *frame.App, store HotkeyStore)
}

type addHotkey struct {
	name string
	keys []input.Key
}

func (r addHotkey) apply(a *frame.App, store HotkeyStore) {
	registry := frame.Resource[hotkey.Registry](a)
	if registry == nil {
		logger.Warn("Dropping remote hotkey, keyboard capture is not installed",
			zap.String("component", "api"), zap.String("name", r.name))
		return
	}
	registry.Add(r.name, r.keys)
	if store != nil {
		if err := store.SaveHotkey(r.name, hotkey.FormatSequence(r.keys)); err != nil {
			logger.Warn("Failed to persist hotkey", zap.String("component", "api"),
				zap.String("name", r.name), zap.Error(err))
		}
	}
}

type removeHotkey struct {
	name string
}

func (r removeHotkey) apply(a *frame.App, store HotkeyStore) {
	if registry := frame.Resource[hotkey.Registry](a); registry != nil {
		registry.Remove(r.name)
	}
	if store != nil {
		if err := store.RemoveHotkey(r.name); err != nil {
			logger.Warn("Failed to persist hotkey removal", zap.String("component", "api"),
				zap.String("name", r.name), zap.Error(err))
		}
	}
}

type mouseCommand struct {
	cmd input.MouseControl
}

func (r mouseCommand) apply(a *frame.App, _ HotkeyStore) {
	frame.Events[provider.MouseControl](a).Send(provider.MouseControl{Command: r.cmd})
}

// Plugin connects a Server to the host loop. It must be added after the
// provider plugins. When Store is set, hotkey changes are written through it.
type Plugin struct {
	Server *Server
	Store  HotkeyStore
}

func (p Plugin) Build(app *frame.App) {
	s := p.Server

	app.AddSystem(frame.Update, "apply_remote_requests", func(a *frame.App) {
		for _, r := range s.requests.TryDrain() {
			r.apply(a, p.Store)
		}
	})
	app.AddSystem(frame.Update, "broadcast_hotkeys", func(a *frame.App) {
		if !frame.HasResource[hotkey.Registry](a) {
			return
		}
		for _, ev := range frame.Events[provider.HotkeyEvent](a).Read() {
			s.BroadcastHotkey(ev.Name)
		}
	})
	app.AddSystem(frame.PostUpdate, "publish_status", func(a *frame.App) {
		s.setStatus(snapshot(a))
	})
}

func snapshot(a *frame.App) protocol.StatusPayload {
	st := protocol.StatusPayload{
		Hotkeys: map[string]string{},
		Ticks:   a.Ticks(),
	}
	if hs := frame.Resource[provider.HookStatus](a); hs != nil {
		st.KeyboardHook = hs.KeyboardReady()
		st.MouseHook = hs.MouseReady()
		for _, err := range []error{hs.Keyboard, hs.Mouse} {
			if err != nil {
				st.Errors = append(st.Errors, err.Error())
			}
		}
	}
	if registry := frame.Resource[hotkey.Registry](a); registry != nil {
		for _, name := range registry.Names() {
			keys, _ := registry.Sequence(name)
			st.Hotkeys[name] = hotkey.FormatSequence(keys)
		}
	}
	if pos := frame.Resource[input.Position](a); pos != nil {
		st.Position = *pos
	}
	return st
}
