package gpio

import (
	"github.com/stianeikeland/go-rpio/v4"
)

// maxBCMPin is the highest BCM line routed to the 40 pin header.
const maxBCMPin = 27

// RPIO drives lines through memory mapped registers (/dev/gpiomem). Reads are
// a single load, which keeps the echo poll tight.
type RPIO struct {
	opened bool
}

func NewRPIO() *RPIO {
	return &RPIO{}
}

func (b *RPIO) Open() error {
	if err := rpio.Open(); err != nil {
		return fault("open gpio memory: %v", err)
	}
	b.opened = true
	return nil
}

func (b *RPIO) Pin(n int) (Pin, error) {
	if !b.opened {
		return nil, fault("pin %d: gpio memory not open", n)
	}
	if n < 0 || n > maxBCMPin {
		return nil, fault("pin %d: not a header line (0-%d)", n, maxBCMPin)
	}
	return &rpioPin{pin: rpio.Pin(n)}, nil
}

func (b *RPIO) Close() error {
	if !b.opened {
		return nil
	}
	b.opened = false
	if err := rpio.Close(); err != nil {
		return fault("close gpio memory: %v", err)
	}
	return nil
}

type rpioPin struct {
	pin rpio.Pin
	dir Direction
}

func (p *rpioPin) Number() int { return int(p.pin) }

func (p *rpioPin) Configure(dir Direction) error {
	switch dir {
	case Output:
		p.pin.Output()
	case Input:
		p.pin.Input()
	default:
		return fault("pin %d: unsupported %s", p.pin, dir)
	}
	p.dir = dir
	return nil
}

func (p *rpioPin) Write(l Level) {
	if p.dir != Output {
		return
	}
	if l == High {
		p.pin.High()
	} else {
		p.pin.Low()
	}
}

func (p *rpioPin) Read() Level {
	if p.pin.Read() == rpio.High {
		return High
	}
	return Low
}

func (p *rpioPin) Release() error {
	if p.dir == Output {
		p.pin.Low()
	}
	p.pin.Input()
	p.dir = Input
	return nil
}
