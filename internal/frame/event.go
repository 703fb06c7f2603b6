package frame

import (
	"fmt"
	"reflect"
)

// EventQueue holds the events of type T sent during the current tick.
type EventQueue[T any] struct {
	items []T
}

// Send appends an event.
func (q *EventQueue[T]) Send(ev T) {
	q.items = append(q.items, ev)
}

// Read returns this tick's events in send order. The slice must not be
// retained past the tick.
func (q *EventQueue[T]) Read() []T {
	return q.items
}

// Len returns the number of events sent this tick.
func (q *EventQueue[T]) Len() int {
	return len(q.items)
}

func (q *EventQueue[T]) clear() {
	clear(q.items)
	q.items = q.items[:0]
}

// AddEvent registers an event type. Registering twice is a no-op.
func AddEvent[T any](a *App) {
	key := reflect.TypeFor[T]()
	if _, ok := a.events[key]; ok {
		return
	}
	a.events[key] = &EventQueue[T]{}
}

// Events returns the queue for T. It panics if T was never registered,
// which is a wiring bug in the caller.
func Events[T any](a *App) *EventQueue[T] {
	q, ok := a.events[reflect.TypeFor[T]()]
	if !ok {
		panic(fmt.Sprintf("frame: event %s not registered", reflect.TypeFor[T]()))
	}
	return q.(*EventQueue[T])
}

// Insert stores v as the resource of type T, replacing any previous one.
func Insert[T any](a *App, v *T) {
	a.resources[reflect.TypeFor[T]()] = v
}

// Resource returns the resource of type T, or nil if none was inserted.
func Resource[T any](a *App) *T {
	v, ok := a.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return v.(*T)
}

// HasResource reports whether a resource of type T exists.
func HasResource[T any](a *App) bool {
	_, ok := a.resources[reflect.TypeFor[T]()]
	return ok
}
