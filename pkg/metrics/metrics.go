// Package metrics exposes Prometheus counters for the consistency layer.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	repairs     *prometheus.CounterVec
	moves       *prometheus.CounterVec
	movedLeaves *prometheus.CounterVec
	deletes     *prometheus.CounterVec
	uploads     *prometheus.CounterVec
	searches    *prometheus.CounterVec
}

// New registers the docsync collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		repairs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_reconcile_repairs_total",
				Help: "Metadata repairs triggered by drift, by reason and result",
			},
			[]string{"reason", "result"}, // reason: "missing", "renamed"
		),
		moves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_moves_total",
				Help: "Move and rename operations by kind and result",
			},
			[]string{"kind", "result"}, // result: "ok", "partial", "invalid", "error", "noop"
		),
		movedLeaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_moved_objects_total",
				Help: "Individual objects relocated by the tree mover",
			},
			[]string{"result"},
		),
		deletes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_deletes_total",
				Help: "Deleted documents by result",
			},
			[]string{"result"},
		),
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_uploads_total",
				Help: "Uploaded documents by result",
			},
			[]string{"result"},
		),
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_searches_total",
				Help: "Search requests by scope",
			},
			[]string{"scope"}, // "scoped", "global"
		),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) RecordRepair(reason string, err error) {
	if m == nil {
		return
	}
	m.repairs.WithLabelValues(reason, result(err)).Inc()
}

func (m *Metrics) RecordMove(kind, outcome string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordMovedObject(err error) {
	if m == nil {
		return
	}
	m.movedLeaves.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) RecordDelete(err error) {
	if m == nil {
		return
	}
	m.deletes.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) RecordUpload(err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) RecordSearch(scope string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(scope).Inc()
}
