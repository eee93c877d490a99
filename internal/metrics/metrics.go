// Package metrics exposes Prometheus instrumentation for the locker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Save triggers.
const (
	TriggerWrite    = "write"
	TriggerAutosave = "autosave"
	TriggerForce    = "force"
	TriggerSweep    = "sweep"
)

// Metrics tracks arrests, item dispositions, saves and retention purges.
type Metrics struct {
	SnapshotsCreated prometheus.Counter
	ItemsCollected   *prometheus.CounterVec
	ItemsDiscarded   *prometheus.CounterVec
	Saves            *prometheus.CounterVec
	SaveDuration     prometheus.Histogram
	SnapshotsPurged  prometheus.Counter
}

// New registers all locker metrics on reg. A nil reg uses a private registry,
// which keeps repeated construction in tests from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		SnapshotsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "evidence_locker_snapshots_created_total",
			Help: "Total number of arrest snapshots created",
		}),
		ItemsCollected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evidence_locker_items_collected_total",
			Help: "Items stored in snapshots by disposition",
		}, []string{"disposition"}),
		ItemsDiscarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evidence_locker_items_discarded_total",
			Help: "Inventory slots not stored, by reason",
		}, []string{"reason"}),
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evidence_locker_saves_total",
			Help: "Save attempts by trigger and result",
		}, []string{"trigger", "result"}),
		SaveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evidence_locker_save_duration_seconds",
			Help:    "Duration of save operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SnapshotsPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "evidence_locker_snapshots_purged_total",
			Help: "Snapshots removed by the retention sweep",
		}),
	}
}

// ObserveSave records one save attempt. Call with time.Now() at the start.
func (m *Metrics) ObserveSave(trigger string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Saves.WithLabelValues(trigger, result).Inc()
	m.SaveDuration.Observe(time.Since(start).Seconds())
}

// RecordDiscards adds discarded slot counts by reason.
func (m *Metrics) RecordDiscards(byReason map[string]int) {
	for reason, n := range byReason {
		m.ItemsDiscarded.WithLabelValues(reason).Add(float64(n))
	}
}
