// Package shutdown turns an interrupt into a cooperative cancellation and
// guarantees the GPIO lines are released on the way out.
package shutdown

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/JohannesEH/srfinder/internal/gpio"
)

// State of a Controller. It only moves forward.
type State int32

const (
	Idle State = iota
	Running
	Cancelling
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Cancelling:
		return "cancelling"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Controller owns the pins and backend of a session.
//
// Start registers for SIGINT and SIGTERM and returns a context that is done
// once one arrives. The measurement loop polls that context between cycles.
// Shutdown must be deferred right after New so the lines are released on
// every exit path, not only on a signal.
type Controller struct {
	log     *zap.Logger
	backend io.Closer
	signals []os.Signal

	mu   sync.Mutex
	pins []gpio.Pin
	ctx  context.Context
	stop context.CancelFunc

	state     atomic.Int32
	cancelled atomic.Bool
	once      sync.Once
}

func New(log *zap.Logger, backend io.Closer) *Controller {
	return &Controller{
		log:     log,
		backend: backend,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Track registers pins to release on shutdown.
func (c *Controller) Track(pins ...gpio.Pin) {
	c.mu.Lock()
	c.pins = append(c.pins, pins...)
	c.mu.Unlock()
}

// Start moves Idle to Running and returns the cancellation context. Calling
// it in any other state returns an already cancelled context.
func (c *Controller) Start(parent context.Context) context.Context {
	if !c.state.CompareAndSwap(int32(Idle), int32(Running)) {
		ctx, cancel := context.WithCancel(parent)
		cancel()
		return ctx
	}

	ctx, stop := signal.NotifyContext(parent, c.signals...)
	c.mu.Lock()
	c.ctx, c.stop = ctx, stop
	c.mu.Unlock()

	context.AfterFunc(ctx, c.markCancelled)
	return ctx
}

func (c *Controller) markCancelled() {
	if c.state.CompareAndSwap(int32(Running), int32(Cancelling)) {
		c.cancelled.Store(true)
		c.log.Info("cancellation requested")
	}
}

// Cancelled reports whether a signal or the parent context ended the session.
// It does not wait for the signal goroutine: a done context counts as soon as
// it is observed, unless Shutdown ran first.
func (c *Controller) Cancelled() bool {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx != nil && ctx.Err() != nil {
		c.markCancelled()
	}
	return c.cancelled.Load() || c.State() == Cancelling
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Shutdown releases every tracked pin, closes the backend and stops
// listening for signals. Only the first call does anything.
func (c *Controller) Shutdown() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		pins, stop := c.pins, c.stop
		c.pins = nil
		c.mu.Unlock()

		for _, p := range pins {
			if rerr := p.Release(); rerr != nil {
				err = multierr.Append(err, fmt.Errorf("release pin %d: %w", p.Number(), rerr))
			}
		}
		if c.backend != nil {
			err = multierr.Append(err, c.backend.Close())
		}

		c.state.Store(int32(Terminated))
		if stop != nil {
			stop()
		}
		c.log.Debug("pins released", zap.Int("count", len(pins)), zap.Bool("cancelled", c.Cancelled()))
	})
	return err
}
