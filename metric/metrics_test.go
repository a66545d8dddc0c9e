package metric_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/metric"
	"github.com/stratalign/stratalign/vocabulary/align"
)

func TestStoreMetricsCountActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.NewStoreMetrics(reg)
	s := graph.NewStore(graph.NewCatalog(), graph.WithMetrics(m))

	require.NoError(t, s.AddEntity("O1", align.TypeObjective, map[graph.Resource]graph.Object{
		align.PredicateImportance: graph.Lit(graph.Category(string(align.ImportanceHigh))),
	}))
	require.Error(t, s.AddEntity("O2", align.TypeObjective, nil))

	_, err := s.QueryPattern([]graph.Pattern{
		{Subject: graph.V("x"), Predicate: graph.R(align.PredicateType), Object: graph.R(align.TypeObjective)},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Writes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WritesRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries))
}

// Two stores in one process must be able to register without colliding.
func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	a := metric.NewStoreMetrics(prometheus.NewRegistry())
	b := metric.NewStoreMetrics(prometheus.NewRegistry())
	a.Writes.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Writes))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Writes))
}
