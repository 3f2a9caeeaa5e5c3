// Package config loads runtime settings from SRFINDER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/JohannesEH/srfinder/internal/logging"
)

const prefix = "srfinder"

// Config holds everything except the sampling frequency, which comes from
// the command line.
type Config struct {
	// Pins are BCM numbers; 23 and 24 are header pins 16 and 18.
	TriggerPin int    `envconfig:"TRIGGER_PIN" default:"23"`
	EchoPin    int    `envconfig:"ECHO_PIN" default:"24"`
	Backend    string `envconfig:"BACKEND" default:"rpio"`

	TriggerHold time.Duration `envconfig:"TRIGGER_HOLD" default:"100us"`
	EchoTimeout time.Duration `envconfig:"ECHO_TIMEOUT" default:"100ms"`
	Settle      time.Duration `envconfig:"SETTLE" default:"100ms"`
	MaxTimeouts int           `envconfig:"MAX_TIMEOUTS" default:"0"`

	// SimDistance is the target distance in cm of the sim backend.
	SimDistance float64 `envconfig:"SIM_DISTANCE" default:"100"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`

	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case "rpio", "periph", "sim":
	default:
		return fmt.Errorf("backend %q: want rpio, periph or sim", c.Backend)
	}
	if c.TriggerPin < 0 || c.EchoPin < 0 {
		return errors.New("pin numbers must not be negative")
	}
	if c.TriggerPin == c.EchoPin {
		return fmt.Errorf("trigger and echo share pin %d", c.TriggerPin)
	}
	if c.TriggerHold <= 0 {
		return errors.New("trigger hold must be positive")
	}
	if c.EchoTimeout < 0 || c.Settle < 0 {
		return errors.New("durations must not be negative")
	}
	if c.MaxTimeouts < 0 {
		return errors.New("max timeouts must not be negative")
	}
	if c.SimDistance < 0 {
		return errors.New("sim distance must not be negative")
	}
	return nil
}

// Logging maps the log settings onto a logging.Config.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Development = c.LogDev
	return cfg
}

// Usage describes the recognised environment variables.
func Usage() string {
	return `  SRFINDER_TRIGGER_PIN       BCM pin of the trigger line (default 23)
  SRFINDER_ECHO_PIN          BCM pin of the echo line (default 24)
  SRFINDER_BACKEND           rpio, periph or sim (default rpio)
  SRFINDER_TRIGGER_HOLD      width of the trigger pulse (default 100us)
  SRFINDER_ECHO_TIMEOUT      bound on each echo edge wait, 0 waits forever (default 100ms)
  SRFINDER_SETTLE            delay after pin setup before the first reading (default 100ms)
  SRFINDER_MAX_TIMEOUTS      consecutive timeouts before giving up, 0 never (default 0)
  SRFINDER_SIM_DISTANCE      distance in cm reported by the sim backend (default 100)
  SRFINDER_LOG_LEVEL         debug, info, warn or error (default info)
  SRFINDER_LOG_DEV           human readable console logs (default false)
  SRFINDER_METRICS_ADDR      serve Prometheus metrics on this address
`
}
