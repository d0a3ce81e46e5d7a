// Package telemetry holds the process-wide Prometheus collectors for
// worksheet persistence.
package telemetry

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Prefix is shared by every collector in this package.
const Prefix = "booster_"

// Persistence operations.
const (
	OpLoad  = "load"
	OpSave  = "save"
	OpClear = "clear"
)

// Results recorded per operation.
const (
	ResultOK      = "ok"
	ResultMissing = "missing"
	ResultError   = "error"
)

var (
	// PersistenceTotal counts persistence operations by operation and result.
	PersistenceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booster_persistence_total",
		Help: "Worksheet persistence operations by operation and result",
	}, []string{"operation", "result"})

	// PersistenceDuration tracks backend latency per operation.
	PersistenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booster_persistence_duration_seconds",
		Help:    "Worksheet persistence latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"operation"})

	// DebounceTotal counts debounced writes by outcome (fired, flushed,
	// cancelled).
	DebounceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booster_debounce_total",
		Help: "Debounced snapshot writes by outcome",
	}, []string{"outcome"})

	// MutationsTotal counts store mutations by operation.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booster_store_mutations_total",
		Help: "Worksheet store mutations by operation",
	}, []string{"operation"})
)

// ObservePersistence records one persistence operation.
func ObservePersistence(operation, result string, seconds float64) {
	PersistenceTotal.WithLabelValues(operation, result).Inc()
	PersistenceDuration.WithLabelValues(operation).Observe(seconds)
}

// Write renders the booster collectors gathered from g in the Prometheus text
// format. Runtime collectors registered alongside them are skipped.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), Prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
