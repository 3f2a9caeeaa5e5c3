package sampler

import (
	"math"
	"strconv"
	"time"

	"github.com/JohannesEH/srfinder/internal/gpio"
)

const (
	DefaultFrequency = 25.0
	MaxFrequency     = 100.0
)

// ValidFrequency reports whether f lies strictly inside (0, MaxFrequency).
// Anything else starts no session.
func ValidFrequency(f float64) bool {
	return f > 0 && f < MaxFrequency
}

// Sample is one emitted reading.
type Sample struct {
	Elapsed  float64 // seconds since the session started
	Distance float64 // centimetres
}

// String formats the sample as "<elapsed>;<distance>" in fixed point with six
// decimals.
func (s Sample) String() string {
	buf := make([]byte, 0, 32)
	buf = strconv.AppendFloat(buf, s.Elapsed, 'f', 6, 64)
	buf = append(buf, ';')
	buf = strconv.AppendFloat(buf, s.Distance, 'f', 6, 64)
	return string(buf)
}

// Session ties a pair of configured pins to a sampling frequency. It is owned
// by the Scheduler running it.
type Session struct {
	Trigger   gpio.Pin
	Echo      gpio.Pin
	Frequency float64
	Start     time.Time

	running bool
}

func NewSession(trigger, echo gpio.Pin, frequency float64) *Session {
	return &Session{Trigger: trigger, Echo: echo, Frequency: frequency}
}

// Period is the flat sleep between two cycles. Frequencies too low to
// express as a Duration saturate at the longest one.
func (s *Session) Period() time.Duration {
	period := float64(time.Second) / s.Frequency
	if period >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(period)
}

func (s *Session) Running() bool {
	return s.running
}
