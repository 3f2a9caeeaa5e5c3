// Package sampler runs the measurement loop and writes samples to the output
// stream.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/JohannesEH/srfinder/internal/clock"
	"github.com/JohannesEH/srfinder/internal/gpio"
	"github.com/JohannesEH/srfinder/internal/metrics"
	"github.com/JohannesEH/srfinder/internal/ranging"
)

// Measurer produces one echo per call.
type Measurer interface {
	Measure(trigger, echo gpio.Pin) (ranging.Echo, error)
}

// Scheduler drives a Session at its frequency.
type Scheduler struct {
	clock       clock.Clock
	measurer    Measurer
	out         io.Writer
	log         *zap.Logger
	metrics     *metrics.Metrics
	maxTimeouts int
}

type Option func(*Scheduler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithMaxTimeouts makes Run give up after n consecutive sensor timeouts.
// Zero, the default, keeps going forever.
func WithMaxTimeouts(n int) Option {
	return func(s *Scheduler) { s.maxTimeouts = n }
}

func NewScheduler(clk clock.Clock, m Measurer, out io.Writer, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    clk,
		measurer: m,
		out:      out,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run samples until ctx is cancelled. Cancellation is only observed between
// cycles; a measurement in progress always completes. After each cycle Run
// sleeps a full period, so the effective rate is below the configured one by
// the time spent measuring.
//
// A session with an out of range frequency takes no samples and returns nil.
// Sensor timeouts skip the cycle; other measurement errors and write errors
// end the run.
func (s *Scheduler) Run(ctx context.Context, session *Session) error {
	if !ValidFrequency(session.Frequency) {
		s.log.Debug("frequency out of range, not sampling", zap.Float64("frequency", session.Frequency))
		return nil
	}

	period := session.Period()
	session.Start = s.clock.Now()
	session.running = true
	defer func() { session.running = false }()

	s.log.Info("sampling started",
		zap.Float64("frequency", session.Frequency),
		zap.Duration("period", period),
		zap.Int("trigger", session.Trigger.Number()),
		zap.Int("echo", session.Echo.Number()))

	timeouts := 0
	for {
		echo, err := s.measurer.Measure(session.Trigger, session.Echo)
		switch {
		case err == nil:
			timeouts = 0
			if err := s.emit(session, echo); err != nil {
				return err
			}
		case errors.Is(err, ranging.ErrSensorTimeout):
			timeouts++
			s.metrics.ObserveTimeout()
			s.log.Warn("measurement skipped", zap.Error(err), zap.Int("consecutive", timeouts))
			if s.maxTimeouts > 0 && timeouts >= s.maxTimeouts {
				return fmt.Errorf("%d consecutive timeouts: %w", timeouts, err)
			}
		default:
			return fmt.Errorf("measure: %w", err)
		}

		select {
		case <-ctx.Done():
		case <-s.clock.After(period):
		}
		if ctx.Err() != nil {
			s.log.Info("sampling cancelled")
			return nil
		}
	}
}

func (s *Scheduler) emit(session *Session, echo ranging.Echo) error {
	width := echo.Duration()
	sample := Sample{
		Elapsed:  echo.Stop.Sub(session.Start).Seconds(),
		Distance: ranging.ToDistance(width.Seconds()),
	}
	// One write per line so a reader never sees half a sample.
	if _, err := io.WriteString(s.out, sample.String()+"\n"); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	s.metrics.ObserveSample(width, sample.Distance)
	s.log.Debug("sample", zap.Duration("echo", width), zap.Float64("distance", sample.Distance))
	return nil
}
