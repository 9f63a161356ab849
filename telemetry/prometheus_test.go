package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/holograph"
	"github.com/hupe1980/holograph/model"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.RecordInsert(time.Millisecond, nil)
	c.RecordInsert(time.Millisecond, errors.New("boom"))
	c.RecordQuery(holograph.QueryKindObject, 3, time.Microsecond, nil)
	c.RecordResonate(25, 4, time.Millisecond, nil)
	c.RecordSave(1024, time.Millisecond, nil)
	c.RecordLoad(7, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("insert", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("insert", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("query_object", "success")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.savedBytes))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.loaded))

	n, err := testutil.GatherAndCount(reg, "holograph_resonate_cells_scanned")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrometheusCollector_Store(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	kb, err := holograph.New(holograph.WithMetricsCollector(c))
	require.NoError(t, err)
	defer kb.Close()

	ctx := context.Background()
	require.NoError(t, kb.Insert(ctx, model.Triple{Subject: "Ada", Predicate: "loves", Object: "Jan"}))
	_, err = kb.QueryObject(ctx, "Ada", "loves")
	require.NoError(t, err)
	_, err = kb.Resonate(ctx, holograph.Query{Subject: "Ada"}, 0.9)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("insert", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("query_object", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("resonate", "success")))
}

func TestNewPrometheusCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusCollector(reg)
	assert.Panics(t, func() { NewPrometheusCollector(reg) })
}
