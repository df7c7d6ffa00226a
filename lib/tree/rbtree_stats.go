package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xtree/rbtree"
)

var (
	insertPhase = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.phase", "insert")))
	removePhase = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.phase", "remove")))
)

// All the methods are nil receiver safe, so a tree without stats
// enabled calls them without checks.
type rbTreeStats struct {
	nodeCount      metric.Int64UpDownCounter
	insertCount    metric.Int64Counter
	removeCount    metric.Int64Counter
	rotateCount    metric.Int64Counter
	rebalanceCount metric.Int64Counter
	allocFailCount metric.Int64Counter
}

func (stats *rbTreeStats) RecordNodeCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseRemoveCount() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseRotateCount(insert bool) {
	if stats == nil {
		return
	}
	if insert {
		stats.rotateCount.Add(context.Background(), 1, insertPhase)
		return
	}
	stats.rotateCount.Add(context.Background(), 1, removePhase)
}

// IncreaseRebalanceCount counts the fixup loop iterations.
func (stats *rbTreeStats) IncreaseRebalanceCount(insert bool) {
	if stats == nil {
		return
	}
	if insert {
		stats.rebalanceCount.Add(context.Background(), 1, insertPhase)
		return
	}
	stats.rebalanceCount.Add(context.Background(), 1, removePhase)
}

func (stats *rbTreeStats) IncreaseAllocFailCount() {
	if stats == nil {
		return
	}
	stats.allocFailCount.Add(context.Background(), 1)
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := RBTreeStatsName
	if len(strings.TrimSpace(name)) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	return &rbTreeStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.node.count",
			metric.WithDescription("The number of live nodes in the rbtree."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.count",
			metric.WithDescription("The number of nodes inserted into the rbtree."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.remove.count",
			metric.WithDescription("The number of nodes removed from the rbtree."),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotate.count",
			metric.WithDescription("The number of rotations, labeled by the rebalance phase."),
		)),
		rebalanceCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rebalance.count",
			metric.WithDescription("The number of rebalance loop iterations, labeled by the rebalance phase."),
		)),
		allocFailCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.alloc.failed.count",
			metric.WithDescription("The number of inserts rejected by the node allocator."),
		)),
	}
}
