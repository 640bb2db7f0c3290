// Package metrics holds the prometheus collectors of the parcel engine.
package metrics

import (
	"parcelhub/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK   = "ok"
	OutcomeNoOp = "noop"
)

type Metrics struct {
	Operations     *prometheus.CounterVec
	BatchSize      *prometheus.HistogramVec
	RelayPublished prometheus.Counter
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Warehouse operations by outcome; rejections carry the error kind",
		}, []string{"operation", "outcome"}),
		BatchSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Parcels per bulk sort or manifest",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"operation"}),
		RelayPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_published_total",
			Help:      "Warehouse events published to the broker",
		}),
	}
}

// Observe counts one operation. A nil err is OutcomeOK; otherwise the
// outcome is the error kind.
func (m *Metrics) Observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = string(errs.KindOf(err))
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveNoOp(operation string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, OutcomeNoOp).Inc()
}

func (m *Metrics) ObserveBatch(operation string, size int) {
	if m == nil {
		return
	}
	m.BatchSize.WithLabelValues(operation).Observe(float64(size))
}

func (m *Metrics) ObserveRelay(published int) {
	if m == nil {
		return
	}
	m.RelayPublished.Add(float64(published))
}
