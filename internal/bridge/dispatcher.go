package bridge

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"globalinput/internal/input"
	"globalinput/internal/logger"
	"globalinput/internal/queue"

	"go.uber.org/zap"
)

// Dispatcher owns a MouseController on one goroutine and applies commands
// strictly in the order they were sent. Results are not reported back.
type Dispatcher struct {
	ctrl     input.MouseController
	commands *queue.Queue[input.MouseControl]
	done     chan struct{}
	once     sync.Once
}

// NewDispatcher creates a dispatcher for ctrl. Call Start to run it.
func NewDispatcher(ctrl input.MouseController) *Dispatcher {
	return &Dispatcher{
		ctrl:     ctrl,
		commands: queue.New[input.MouseControl](),
		done:     make(chan struct{}),
	}
}

// Start launches the dispatcher goroutine. Extra calls are no-ops.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		go d.loop()
	})
}

// Send queues a command without blocking. It reports false once the
// dispatcher has been closed.
func (d *Dispatcher) Send(cmd input.MouseControl) bool {
	return d.commands.Send(cmd)
}

// Close stops accepting commands. Commands already queued are still applied
// before the goroutine exits.
func (d *Dispatcher) Close() {
	d.commands.Close()
}

// Wait blocks until the dispatcher goroutine has exited.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(d.done)

	logger.Debug("Mouse control dispatcher started", zap.String("component", "dispatcher"))
	for {
		cmd, ok := d.commands.Recv(context.Background())
		if !ok {
			logger.Debug("Mouse control dispatcher stopped", zap.String("component", "dispatcher"))
			return
		}
		if err := Apply(d.ctrl, cmd); err != nil {
			logger.Debug("Mouse control command failed", zap.String("component", "dispatcher"),
				zap.String("command", fmt.Sprintf("%T", cmd)), zap.Error(err))
		}
	}
}

// Apply performs a single command on ctrl.
func Apply(ctrl input.MouseController, cmd input.MouseControl) error {
	switch c := cmd.(type) {
	case input.MoveTo:
		return ctrl.MoveTo(c.X, c.Y)
	case input.MoveRelative:
		return ctrl.MoveRelative(c.DX, c.DY)
	case input.PressButton:
		return ctrl.Press(c.Button)
	case input.ReleaseButton:
		return ctrl.Release(c.Button)
	case input.ClickButton:
		return ctrl.Click(c.Button)
	case input.ScrollWheel:
		return ctrl.Scroll(c.Direction)
	}
	return fmt.Errorf("unknown mouse control command %T", cmd)
}
