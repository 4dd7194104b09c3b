// Package metrics exposes Prometheus collectors for Upag API round trips.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess      = "success"
	OutcomeAPIError     = "api_error"
	OutcomeNetworkError = "network_error"
	OutcomeClientError  = "client_error"
)

// Recorder records request counts and latencies. A nil *Recorder is a no-op.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the client collectors on reg. Collectors that are
// already registered (for example by a second client on the same registry)
// are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, nil
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "upag",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Upag API requests by method, resource and outcome.",
	}, []string{"method", "resource", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "upag",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Upag API round trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "resource"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Recorder{requests: requests, duration: duration}, nil
}

// Observe records one finished round trip.
func (r *Recorder) Observe(method, resource, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, resource, outcome).Inc()
	r.duration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
