package gpio

import (
	"time"

	"github.com/JohannesEH/srfinder/internal/clock"
)

// Sim emulates an HC-SR04 wired to two lines. A falling edge on any output
// pin fires the sensor; after Delay every input pin reads high for Width.
type Sim struct {
	Clock clock.Clock
	// Delay between the trigger falling and the echo rising.
	Delay time.Duration
	// Width of the echo pulse, i.e. the round trip time.
	Width time.Duration
	// Tick advances a clock.Manual on every input read so busy-wait loops
	// make progress in tests. Leave zero with a real clock.
	Tick time.Duration
	// Silent sensors never answer, as with a disconnected echo line.
	Silent bool

	opened bool
	fired  time.Time
}

func (s *Sim) Open() error {
	if s.Clock == nil {
		s.Clock = clock.Real{}
	}
	s.opened = true
	return nil
}

func (s *Sim) Pin(n int) (Pin, error) {
	if !s.opened {
		return nil, fault("pin %d: simulator not open", n)
	}
	if n < 0 || n > maxBCMPin {
		return nil, fault("pin %d: not a header line (0-%d)", n, maxBCMPin)
	}
	return &simPin{sim: s, n: n}, nil
}

func (s *Sim) Close() error {
	s.opened = false
	return nil
}

func (s *Sim) echo() Level {
	if s.Tick > 0 {
		if m, ok := s.Clock.(*clock.Manual); ok {
			m.Advance(s.Tick)
		}
	}
	if s.Silent || s.fired.IsZero() {
		return Low
	}
	now := s.Clock.Now()
	rise := s.fired.Add(s.Delay)
	if !now.Before(rise) && now.Before(rise.Add(s.Width)) {
		return High
	}
	return Low
}

type simPin struct {
	sim   *Sim
	n     int
	dir   Direction
	level Level
}

func (p *simPin) Number() int { return p.n }

func (p *simPin) Configure(dir Direction) error {
	if dir != Input && dir != Output {
		return fault("pin %d: unsupported %s", p.n, dir)
	}
	p.dir = dir
	return nil
}

func (p *simPin) Write(l Level) {
	if p.dir != Output {
		return
	}
	if p.level == High && l == Low {
		p.sim.fired = p.sim.Clock.Now()
	}
	p.level = l
}

func (p *simPin) Read() Level {
	if p.dir == Output {
		return p.level
	}
	return p.sim.echo()
}

func (p *simPin) Release() error {
	p.level = Low
	p.dir = Input
	return nil
}
