// Package gpio abstracts the digital I/O lines the range finder is wired to.
//
// Every call on a Pin is an immediate side effect on the line. Nothing is
// buffered or cached.
package gpio

import (
	"errors"
	"fmt"
)

// ErrHardwareFault is returned when the I/O interface is unavailable or a pin
// cannot be resolved or configured.
var ErrHardwareFault = errors.New("gpio: hardware fault")

// Level is the logical state of a line.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Direction of a line.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Pin is a single addressable I/O line.
type Pin interface {
	// Number is the BCM GPIO number of the line.
	Number() int
	Configure(dir Direction) error
	// Write sets the output level. It is ignored unless the pin is an output.
	Write(l Level)
	Read() Level
	// Release drives an output low and reverts the line to an input.
	Release() error
}

// Backend hands out pins of one I/O interface.
type Backend interface {
	Open() error
	Pin(n int) (Pin, error)
	Close() error
}

// New returns the backend registered under name. Sim backends are built by
// the caller since they need a clock and a target.
func New(name string) (Backend, error) {
	switch name {
	case "rpio":
		return NewRPIO(), nil
	case "periph":
		return NewPeriph(), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrHardwareFault, name)
	}
}

func fault(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrHardwareFault, fmt.Sprintf(format, args...))
}
