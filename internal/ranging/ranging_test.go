package ranging

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohannesEH/srfinder/internal/clock"
	"github.com/JohannesEH/srfinder/internal/gpio"
)

func TestToDistance(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    float64
	}{
		{"zero", 0, 0},
		{"one millisecond", 0.001, 17.0145},
		{"580 microseconds", 0.00058, 9.86841},
		{"one second", 1, 17014.5},
		{"negative passes through", -0.001, -17.0145},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToDistance(tt.seconds), 1e-9)
		})
	}

	assert.True(t, math.IsNaN(ToDistance(math.NaN())))
}

func TestEchoDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), EchoDuration(0))
	assert.InDelta(t, float64(time.Second), float64(EchoDuration(17014.5)), 1)
	assert.InDelta(t, 100.0, ToDistance(EchoDuration(100).Seconds()), 1e-4)
}

func newSim(t *testing.T, s *gpio.Sim) (trigger, echo gpio.Pin) {
	t.Helper()
	require.NoError(t, s.Open())
	trigger, err := s.Pin(23)
	require.NoError(t, err)
	echo, err = s.Pin(24)
	require.NoError(t, err)
	require.NoError(t, trigger.Configure(gpio.Output))
	require.NoError(t, echo.Configure(gpio.Input))
	return trigger, echo
}

func TestMeasure(t *testing.T) {
	start := time.Unix(1000, 0)
	clk := clock.NewManual(start)
	sim := &gpio.Sim{
		Clock: clk,
		Delay: 200 * time.Microsecond,
		Width: 580 * time.Microsecond,
		Tick:  time.Microsecond,
	}
	trigger, echo := newSim(t, sim)

	timer := NewTimer(clk, DefaultTriggerHold, DefaultEchoTimeout)
	got, err := timer.Measure(trigger, echo)
	require.NoError(t, err)

	assert.Equal(t, 580*time.Microsecond, got.Duration())
	assert.Equal(t, start.Add(DefaultTriggerHold+200*time.Microsecond), got.Start)
	assert.Equal(t, gpio.Low, trigger.Read(), "trigger is left low")
	assert.InDelta(t, 9.86841, ToDistance(got.Duration().Seconds()), 1e-9)
}

func TestMeasureUnbounded(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	sim := &gpio.Sim{Clock: clk, Delay: time.Second, Width: time.Millisecond, Tick: 100 * time.Microsecond}
	trigger, echo := newSim(t, sim)

	got, err := NewTimer(clk, 0, 0).Measure(trigger, echo)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, got.Duration())
}

func TestMeasureTimeout(t *testing.T) {
	t.Run("echo never rises", func(t *testing.T) {
		clk := clock.NewManual(time.Unix(0, 0))
		sim := &gpio.Sim{Clock: clk, Silent: true, Tick: time.Microsecond}
		trigger, echo := newSim(t, sim)

		_, err := NewTimer(clk, DefaultTriggerHold, time.Millisecond).Measure(trigger, echo)
		require.ErrorIs(t, err, ErrSensorTimeout)
		assert.Contains(t, err.Error(), "did not go high")
	})

	t.Run("echo never falls", func(t *testing.T) {
		clk := clock.NewManual(time.Unix(0, 0))
		sim := &gpio.Sim{Clock: clk, Width: time.Hour, Tick: 10 * time.Microsecond}
		trigger, echo := newSim(t, sim)

		_, err := NewTimer(clk, DefaultTriggerHold, time.Millisecond).Measure(trigger, echo)
		require.ErrorIs(t, err, ErrSensorTimeout)
		assert.Contains(t, err.Error(), "did not go low")
	})
}
