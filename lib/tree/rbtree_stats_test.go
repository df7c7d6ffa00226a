package tree

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectInt64Sum(t *testing.T, rm metricdata.ResourceMetrics, name string) (int64, bool) {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			return lo.SumBy(sum.DataPoints, func(dp metricdata.DataPoint[int64]) int64 {
				return dp.Value
			}), true
		}
	}
	return 0, false
}

func TestRbtreeStats(t *testing.T) {
	ctx := context.Background()
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer func() {
		require.NoError(t, provider.Shutdown(ctx))
	}()

	tree := newTestRBTree[int, int](
		WithRBTreeStats[int, int]("stats-test"),
		WithRBTreeArena[int, int](16, 1),
	)
	for _, key := range lo.Shuffle(lo.Range(16)) {
		_, err := tree.Insert(key, key)
		require.NoError(t, err)
	}
	_, err := tree.Insert(99, 99)
	require.ErrorIs(t, err, ErrRBTreeAllocExhausted)
	for i := 0; i < 4; i++ {
		require.True(t, tree.Delete(i))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
	require.Equal(t, RBTreeStatsName+"/stats-test", rm.ScopeMetrics[0].Scope.Name)

	testcases := []struct {
		name     string
		expected int64
	}{
		{name: "rbtree.node.count", expected: 12},
		{name: "rbtree.insert.count", expected: 16},
		{name: "rbtree.remove.count", expected: 4},
		{name: "rbtree.alloc.failed.count", expected: 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			res, ok := collectInt64Sum(tt, rm, tc.name)
			require.True(tt, ok)
			require.Equal(tt, tc.expected, res)
		})
	}

	res, ok := collectInt64Sum(t, rm, "rbtree.rebalance.count")
	require.True(t, ok)
	require.Greater(t, res, int64(0))

	tree.Clear()
	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	res, ok = collectInt64Sum(t, rm, "rbtree.node.count")
	require.True(t, ok)
	require.Equal(t, int64(0), res)
}

func TestRbtreeStats_Disabled(t *testing.T) {
	var stats *rbTreeStats
	require.NotPanics(t, func() {
		stats.RecordNodeCount(1)
		stats.IncreaseInsertCount()
		stats.IncreaseRemoveCount()
		stats.IncreaseRotateCount(true)
		stats.IncreaseRebalanceCount(false)
		stats.IncreaseAllocFailCount()
	})
}

func TestRbtreeStats_Swap(t *testing.T) {
	ctx := context.Background()
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer func() {
		require.NoError(t, provider.Shutdown(ctx))
	}()

	t1 := newTestRBTree[int, int](WithRBTreeStats[int, int]("swap-a"))
	t2 := newTestRBTree[int, int](WithRBTreeStats[int, int]("swap-b"), WithRBTreeDesc[int, int]())
	for i := 0; i < 3; i++ {
		_, _ = t1.Insert(i, i)
	}
	for i := 0; i < 5; i++ {
		_, _ = t2.Insert(i, i)
	}
	require.NoError(t, t1.Swap(t2))

	nodeCount := func(scope string) int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		for _, sm := range rm.ScopeMetrics {
			if sm.Scope.Name != RBTreeStatsName+"/"+scope {
				continue
			}
			res, ok := collectInt64Sum(t, metricdata.ResourceMetrics{
				ScopeMetrics: []metricdata.ScopeMetrics{sm},
			}, "rbtree.node.count")
			require.True(t, ok)
			return res
		}
		require.FailNow(t, "scope not found", scope)
		return 0
	}
	require.Equal(t, int64(5), nodeCount("swap-a"))
	require.Equal(t, int64(3), nodeCount("swap-b"))

	t1.Clear()
	t2.Clear()
	require.Equal(t, int64(0), nodeCount("swap-a"))
	require.Equal(t, int64(0), nodeCount("swap-b"))
}
