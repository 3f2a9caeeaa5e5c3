package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 23, cfg.TriggerPin)
	assert.Equal(t, 24, cfg.EchoPin)
	assert.Equal(t, "rpio", cfg.Backend)
	assert.Equal(t, 100*time.Microsecond, cfg.TriggerHold)
	assert.Equal(t, 100*time.Millisecond, cfg.EchoTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Settle)
	assert.Equal(t, 0, cfg.MaxTimeouts)
	assert.Equal(t, 100.0, cfg.SimDistance)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SRFINDER_TRIGGER_PIN", "17")
	t.Setenv("SRFINDER_ECHO_PIN", "27")
	t.Setenv("SRFINDER_BACKEND", "sim")
	t.Setenv("SRFINDER_ECHO_TIMEOUT", "40ms")
	t.Setenv("SRFINDER_MAX_TIMEOUTS", "5")
	t.Setenv("SRFINDER_LOG_DEV", "true")
	t.Setenv("SRFINDER_METRICS_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 17, cfg.TriggerPin)
	assert.Equal(t, 27, cfg.EchoPin)
	assert.Equal(t, "sim", cfg.Backend)
	assert.Equal(t, 40*time.Millisecond, cfg.EchoTimeout)
	assert.Equal(t, 5, cfg.MaxTimeouts)
	assert.Equal(t, ":9100", cfg.MetricsAddr)

	lc := cfg.Logging()
	assert.True(t, lc.Development)
	assert.Equal(t, []string{"stderr"}, lc.OutputPaths)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable pin", "SRFINDER_ECHO_PIN", "twenty"},
		{"unknown backend", "SRFINDER_BACKEND", "arduino"},
		{"shared pin", "SRFINDER_ECHO_PIN", "23"},
		{"negative pin", "SRFINDER_TRIGGER_PIN", "-1"},
		{"zero hold", "SRFINDER_TRIGGER_HOLD", "0s"},
		{"negative timeout", "SRFINDER_ECHO_TIMEOUT", "-1ms"},
		{"negative max timeouts", "SRFINDER_MAX_TIMEOUTS", "-2"},
		{"negative sim distance", "SRFINDER_SIM_DISTANCE", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestUsage(t *testing.T) {
	for _, key := range []string{
		"SRFINDER_TRIGGER_PIN",
		"SRFINDER_ECHO_PIN",
		"SRFINDER_BACKEND",
		"SRFINDER_TRIGGER_HOLD",
		"SRFINDER_ECHO_TIMEOUT",
		"SRFINDER_SETTLE",
		"SRFINDER_MAX_TIMEOUTS",
		"SRFINDER_SIM_DISTANCE",
		"SRFINDER_LOG_LEVEL",
		"SRFINDER_LOG_DEV",
		"SRFINDER_METRICS_ADDR",
	} {
		assert.Contains(t, Usage(), key)
	}
}
