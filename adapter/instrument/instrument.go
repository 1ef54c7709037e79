// Package instrument exports compilation metrics to prometheus.
package instrument

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

// Compilation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Observer implements [domain.Observer] with prometheus metrics.
type Observer struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver registers the compilation metrics in reg and returns an
// observer updating them. A nil reg creates unregistered metrics. Like
// promauto, it panics if the metrics are already registered in reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		total: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "criterium_compile_total",
				Help: "Total number of query compilations",
			},
			[]string{"dialect", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "criterium_compile_duration_seconds",
				Help:    "Query compilation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"dialect"},
		),
	}
}

// Observe implements [domain.Observer].
func (o *Observer) Observe(dialect string, elapsed time.Duration, err error) {
	o.total.WithLabelValues(dialect, Outcome(err)).Inc()
	o.duration.WithLabelValues(dialect).Observe(elapsed.Seconds())
}

// Outcome classifies the result of a compilation.
func Outcome(err error) string {
	var verr domain.ValidationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &verr):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
