// Package frame is a small single-threaded tick scheduler. Systems run once
// per tick in stage order, exchange data through typed event queues and
// share state through typed resources.
package frame

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"globalinput/internal/logger"

	"go.uber.org/zap"
)

// Stage orders systems within one tick.
type Stage int

const (
	PreUpdate Stage = iota
	Update
	PostUpdate
	stageCount
)

func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "pre_update"
	case Update:
		return "update"
	case PostUpdate:
		return "post_update"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Plugin registers events, resources and systems on an App.
type Plugin interface {
	Build(app *App)
}

type system struct {
	name string
	fn   func(*App)
}

type startup struct {
	name string
	fn   func(*App) error
}

type clearer interface {
	clear()
}

// App owns the systems, events and resources of one host loop. It is not
// safe for concurrent use; every method must be called from the tick
// goroutine.
type App struct {
	startups  []startup
	stages    [stageCount][]system
	events    map[reflect.Type]clearer
	resources map[reflect.Type]any
	started   bool
	ticks     uint64
}

// New creates an empty App.
func New() *App {
	return &App{
		events:    make(map[reflect.Type]clearer),
		resources: make(map[reflect.Type]any),
	}
}

// AddPlugin builds p into the app.
func (a *App) AddPlugin(p Plugin) *App {
	p.Build(a)
	return a
}

// AddStartup registers a system that runs once before the first tick.
func (a *App) AddStartup(name string, fn func(*App) error) *App {
	a.startups = append(a.startups, startup{name: name, fn: fn})
	return a
}

// AddSystem registers fn to run every tick in the given stage.
func (a *App) AddSystem(stage Stage, name string, fn func(*App)) *App {
	if stage < 0 || stage >= stageCount {
		panic(fmt.Sprintf("frame: invalid stage %d for system %s", stage, name))
	}
	a.stages[stage] = append(a.stages[stage], system{name: name, fn: fn})
	return a
}

// Startup runs every startup system once, in registration order. Errors
// do not stop later systems; they are joined and returned.
func (a *App) Startup() error {
	if a.started {
		return nil
	}
	a.started = true

	var errs []error
	for _, s := range a.startups {
		if err := s.fn(a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Update runs a single tick. Event queues are cleared first, so events
// sent during a tick are visible to every later system of that tick only.
func (a *App) Update() {
	for _, ev := range a.events {
		ev.clear()
	}
	for stage := range a.stages {
		for _, s := range a.stages[stage] {
			s.fn(a)
		}
	}
	a.ticks++
}

// Ticks returns how many ticks have completed.
func (a *App) Ticks() uint64 {
	return a.ticks
}

// Run executes the startup systems and then ticks every interval until ctx
// is done. Startup errors are logged, not fatal.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	if err := a.Startup(); err != nil {
		logger.Warn("Startup completed with errors", zap.String("component", "frame"), zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Update()
		}
	}
}
