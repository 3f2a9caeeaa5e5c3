// Package metrics exposes measurement counters in the Prometheus format.
//
// A nil *Metrics is valid and records nothing, so callers that run without a
// metrics endpoint do not need to branch.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "srfinder"

// Metrics holds the range finder collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Samples      prometheus.Counter
	Timeouts     prometheus.Counter
	EchoDuration prometheus.Histogram
	Distance     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples written to the output stream.",
		}),
		Timeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_timeouts_total",
			Help:      "Measurements abandoned because an echo edge never arrived.",
		}),
		EchoDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "echo_duration_seconds",
			Help:      "Width of the measured echo pulse.",
			// 100us (1.7cm) up to ~51ms, past the sensor's no-target pulse.
			Buckets: prometheus.ExponentialBuckets(100e-6, 2, 10),
		}),
		Distance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distance_cm",
			Help:      "Most recent measured distance.",
		}),
	}
}

// ObserveSample records one emitted sample.
func (m *Metrics) ObserveSample(echo time.Duration, distance float64) {
	if m == nil {
		return
	}
	m.Samples.Inc()
	m.EchoDuration.Observe(echo.Seconds())
	m.Distance.Set(distance)
}

func (m *Metrics) ObserveTimeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
