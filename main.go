// Command srfinder reads an HC-SR04 or HY-SRF05 ultrasonic range finder wired
// to a Raspberry Pi and prints "<time>;<distance>" lines to stdout until it is
// interrupted.
//
// Wiring: VCC to 5V, GND to ground, TRG to GPIO23 (header pin 16) and ECH to
// GPIO24 (header pin 18) through a 330/470 ohm divider, since the sensor
// drives its echo line at 5V and the Pi inputs tolerate 3.3V only.
//
//	srfinder -f 30 > output.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/JohannesEH/srfinder/internal/clock"
	"github.com/JohannesEH/srfinder/internal/config"
	"github.com/JohannesEH/srfinder/internal/gpio"
	"github.com/JohannesEH/srfinder/internal/logging"
	"github.com/JohannesEH/srfinder/internal/metrics"
	"github.com/JohannesEH/srfinder/internal/ranging"
	"github.com/JohannesEH/srfinder/internal/sampler"
	"github.com/JohannesEH/srfinder/internal/shutdown"
)

const name = "srfinder"

const (
	exitOK    = 0
	exitFault = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `%[1]s -f <frequency>

Reads distance at a rate based on (-f) frequency and prints <time>;<distance> to stdout.
The operation of measurement is ended using SIGINT or Ctrl+C.

This tool is intended for a raspberry pi using a HY-SRF05 or a HC-SR04.
Default pins used are GPIO23 (trig) and GPIO24 (echo).

Usage:
  %[1]s [options...]
  %[1]s -f 30 > output.csv

Options:
  -f, --frequency            determines read frequency. Default is 25hz
  -h                         show this help

Environment:
%[2]s`, name, config.Usage())
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }

	var frequency float64
	fs.Float64Var(&frequency, "f", sampler.DefaultFrequency, "")
	fs.Float64Var(&frequency, "frequency", sampler.DefaultFrequency, "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	// Out of range frequencies are a silent no-op, whatever the environment.
	if !sampler.ValidFrequency(frequency) {
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return exitUsage
	}

	log, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()

	if err := measure(cfg, frequency, stdout, log); err != nil {
		log.Error("srfinder failed", zap.Error(err))
		return exitFault
	}
	return exitOK
}

// measure sets up the pins and samples until interrupted. The lines are
// released on every return path.
func measure(cfg *config.Config, frequency float64, stdout io.Writer, log *zap.Logger) error {
	clk := clock.Real{}

	backend, err := newBackend(cfg, clk)
	if err != nil {
		return err
	}

	ctrl := shutdown.New(log.Named("shutdown"), backend)
	defer func() {
		if serr := ctrl.Shutdown(); serr != nil {
			log.Warn("releasing pins", zap.Error(serr))
		}
	}()
	ctx := ctrl.Start(context.Background())

	if err := backend.Open(); err != nil {
		return err
	}
	trigger, echo, err := setup(backend, cfg, ctrl)
	if err != nil {
		return err
	}
	clk.Sleep(cfg.Settle)
	if ctrl.Cancelled() {
		log.Info("measurement cancelled before sampling")
		return nil
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, log.Named("metrics")); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	timer := ranging.NewTimer(clk, cfg.TriggerHold, cfg.EchoTimeout)
	scheduler := sampler.NewScheduler(clk, timer, stdout, log.Named("sampler"),
		sampler.WithMetrics(m),
		sampler.WithMaxTimeouts(cfg.MaxTimeouts))

	if err := scheduler.Run(ctx, sampler.NewSession(trigger, echo, frequency)); err != nil {
		return err
	}
	if ctrl.Cancelled() {
		log.Info("measurement cancelled")
	} else {
		log.Info("measurement completed")
	}
	return nil
}

func newBackend(cfg *config.Config, clk clock.Clock) (gpio.Backend, error) {
	if cfg.Backend == "sim" {
		return &gpio.Sim{
			Clock: clk,
			Delay: 200 * time.Microsecond,
			Width: ranging.EchoDuration(cfg.SimDistance),
		}, nil
	}
	return gpio.New(cfg.Backend)
}

// setup configures the trigger as a low output and the echo as an input.
// Each pin is handed to ctrl as soon as it is configured.
func setup(backend gpio.Backend, cfg *config.Config, ctrl *shutdown.Controller) (trigger, echo gpio.Pin, err error) {
	trigger, err = backend.Pin(cfg.TriggerPin)
	if err != nil {
		return nil, nil, err
	}
	echo, err = backend.Pin(cfg.EchoPin)
	if err != nil {
		return nil, nil, err
	}
	if err := trigger.Configure(gpio.Output); err != nil {
		return nil, nil, err
	}
	ctrl.Track(trigger)
	trigger.Write(gpio.Low)

	if err := echo.Configure(gpio.Input); err != nil {
		return nil, nil, err
	}
	ctrl.Track(echo)
	return trigger, echo, nil
}
