package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordRepair("missing", nil)
	m.RecordRepair("missing", nil)
	m.RecordRepair("renamed", errors.New("down"))
	m.RecordMove("folder", "partial")
	m.RecordMovedObject(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.repairs.WithLabelValues("missing", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repairs.WithLabelValues("renamed", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.moves.WithLabelValues("folder", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movedLeaves.WithLabelValues("ok")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRepair("missing", nil)
		m.RecordMove("file", "ok")
		m.RecordMovedObject(nil)
		m.RecordDelete(nil)
		m.RecordUpload(nil)
		m.RecordSearch("global")
	})
}
