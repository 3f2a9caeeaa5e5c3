package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// Periph drives lines through the periph.io host drivers, which pick sysfs or
// the SoC registers depending on what the board exposes.
type Periph struct {
	opened bool
}

func NewPeriph() *Periph {
	return &Periph{}
}

func (b *Periph) Open() error {
	if _, err := host.Init(); err != nil {
		return fault("periph host init: %v", err)
	}
	b.opened = true
	return nil
}

func (b *Periph) Pin(n int) (Pin, error) {
	if !b.opened {
		return nil, fault("pin %d: periph host not initialised", n)
	}
	name := fmt.Sprintf("GPIO%d", n)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fault("pin %d (%s) not found", n, name)
	}
	return &periphPin{pin: p, n: n}, nil
}

// Close is a no-op, periph keeps its drivers loaded for the process lifetime.
func (b *Periph) Close() error {
	b.opened = false
	return nil
}

type periphPin struct {
	pin gpio.PinIO
	n   int
	dir Direction
}

func (p *periphPin) Number() int { return p.n }

func (p *periphPin) Configure(dir Direction) error {
	var err error
	switch dir {
	case Output:
		err = p.pin.Out(gpio.Low)
	case Input:
		err = p.pin.In(gpio.Float, gpio.NoEdge)
	default:
		return fault("pin %d: unsupported %s", p.n, dir)
	}
	if err != nil {
		return fault("pin %d: set %s: %v", p.n, dir, err)
	}
	p.dir = dir
	return nil
}

func (p *periphPin) Write(l Level) {
	if p.dir != Output {
		return
	}
	_ = p.pin.Out(gpio.Level(l == High))
}

func (p *periphPin) Read() Level {
	if p.pin.Read() == gpio.High {
		return High
	}
	return Low
}

func (p *periphPin) Release() error {
	if p.dir == Output {
		if err := p.pin.Out(gpio.Low); err != nil {
			return fault("pin %d: drive low: %v", p.n, err)
		}
	}
	if err := p.pin.In(gpio.Float, gpio.NoEdge); err != nil {
		return fault("pin %d: revert to input: %v", p.n, err)
	}
	p.dir = Input
	return nil
}
