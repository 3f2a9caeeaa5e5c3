// Package ranging times ultrasonic echoes and turns them into distances.
package ranging

import (
	"errors"
	"fmt"
	"time"

	"github.com/JohannesEH/srfinder/internal/clock"
	"github.com/JohannesEH/srfinder/internal/gpio"
)

// ErrSensorTimeout is returned when an echo edge is not seen within the
// configured bound.
var ErrSensorTimeout = errors.New("sensor timeout")

const (
	DefaultTriggerHold = 100 * time.Microsecond
	DefaultEchoTimeout = 100 * time.Millisecond
)

// Echo is one observed echo pulse.
type Echo struct {
	Start time.Time // echo went high
	Stop  time.Time // echo went low
}

func (e Echo) Duration() time.Duration {
	return e.Stop.Sub(e.Start)
}

// Timer fires the trigger line and measures the echo line by busy-waiting on
// it. Scheduled wake-ups are too coarse for the tens of microseconds that
// matter here, so Measure spins on the calling goroutine for the whole pulse.
type Timer struct {
	clock   clock.Clock
	hold    time.Duration
	timeout time.Duration
}

// NewTimer returns a Timer that holds the trigger high for hold and waits at
// most timeout for each echo edge. A zero timeout waits forever.
func NewTimer(clk clock.Clock, hold, timeout time.Duration) *Timer {
	if hold <= 0 {
		hold = DefaultTriggerHold
	}
	return &Timer{clock: clk, hold: hold, timeout: timeout}
}

// Measure issues one trigger pulse and returns the echo it produced.
func (t *Timer) Measure(trigger, echo gpio.Pin) (Echo, error) {
	trigger.Write(gpio.High)
	t.clock.Sleep(t.hold)
	trigger.Write(gpio.Low)

	if err := t.await(echo, gpio.High, t.clock.Now()); err != nil {
		return Echo{}, err
	}
	start := t.clock.Now()

	if err := t.await(echo, gpio.Low, start); err != nil {
		return Echo{}, err
	}
	return Echo{Start: start, Stop: t.clock.Now()}, nil
}

func (t *Timer) await(pin gpio.Pin, want gpio.Level, since time.Time) error {
	if t.timeout <= 0 {
		for pin.Read() != want {
		}
		return nil
	}

	deadline := since.Add(t.timeout)
	for pin.Read() != want {
		if t.clock.Now().After(deadline) {
			return fmt.Errorf("echo pin %d did not go %s within %s: %w", pin.Number(), want, t.timeout, ErrSensorTimeout)
		}
	}
	return nil
}
