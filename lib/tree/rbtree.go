package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

var _ RBTree[uint8, uint8] = (*rbTree[uint8, uint8])(nil)

// rbMinMax caches the extremal nodes. It is created along with the
// tree and only refreshed after a mutation completes. Never trust it
// in the middle of a rebalance.
type rbMinMax[K any, V any] struct {
	min *rbNode[K, V]
	max *rbNode[K, V]
}

func (mm *rbMinMax[K, V]) refresh(root *rbNode[K, V]) {
	mm.min = root.minimum()
	mm.max = root.maximum()
}

func (mm *rbMinMax[K, V]) reset() {
	mm.min, mm.max = nil, nil
}

type rbTree[K any, V any] struct {
	root   *rbNode[K, V]
	minMax *rbMinMax[K, V]
	kcmp     infra.OrderedKeyComparator[K]
	alloc    Allocator[RBNodeSlot[K, V]]
	newAlloc func() Allocator[RBNodeSlot[K, V]]
	logger   xlog.XLogger
	stats    *rbTreeStats
	count    int64
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	return tree.kcmp(k1, k2)
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) IsEmpty() bool {
	return tree.root == nil
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	return asRBNode[K, V](tree.root)
}

func (tree *rbTree[K, V]) Min() RBNode[K, V] {
	return asRBNode[K, V](tree.minMax.min)
}

func (tree *rbTree[K, V]) Max() RBNode[K, V] {
	return asRBNode[K, V](tree.minMax.max)
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
// The longest path nodes' number is 2 * shortest path nodes' number.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
}

// rotate turns the pivot down to the dir side.
func (tree *rbTree[K, V]) rotate(pivot *rbNode[K, V], dir RBDirection, insert bool) {
	switch dir {
	case Left:
		tree.leftRotate(pivot)
	case Right:
		tree.rightRotate(pivot)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate with root direction")
	}
	tree.stats.IncreaseRotateCount(insert)
}

func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Search(key K) RBNode[K, V] {
	return asRBNode[K, V](tree.search(key))
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

// Clear releases every node by walking the child links only and
// resets the tree into the freshly constructed state. The min/max
// sentinel object is kept.
func (tree *rbTree[K, V]) Clear() {
	released := tree.release()
	tree.minMax.reset()
	tree.stats.RecordNodeCount(-released)
	if released > 0 {
		tree.logger.Debug("rbtree cleared", zap.Int64("released", released))
	}
}

// Release is an alias of Clear.
func (tree *rbTree[K, V]) Release() {
	tree.Clear()
}

func (tree *rbTree[K, V]) release() int64 {
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return 0
	}

	released := int64(0)
	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		tree.releaseNode(aux)
		released++
	}
	return released
}

// CopyFrom replaces the content by re-inserting every pair of src
// visited in the given order. Each insert rebalances on its own, so
// the shape may differ from src.
// Pre-order is the copy-construct order, in-order the assignment order.
// The receiver keeps its own comparator, allocator and options.
func (tree *rbTree[K, V]) CopyFrom(src RBTree[K, V], order TraversalOrder) (err error) {
	if src == nil {
		tree.Clear()
		return nil
	}
	if s, ok := src.(*rbTree[K, V]); ok && s == tree {
		return nil
	}

	tree.Clear()
	src.Traverse(order, func(idx int64, color RBColor, key K, val V) bool {
		_, err = tree.Insert(key, val)
		return err == nil
	})
	if err != nil {
		tree.logger.Error(err, "rbtree copy interrupted",
			zap.Stringer("order", order),
			zap.Int64("copied", tree.count),
			zap.Int64("expected", src.Len()),
		)
		return err
	}
	tree.logger.Debug("rbtree copied",
		zap.Stringer("order", order),
		zap.Int64("count", tree.count),
	)
	return nil
}

// Clone creates a new tree with the same comparator and options,
// except the allocator is always a fresh one from the same factory.
func (tree *rbTree[K, V]) Clone(order TraversalOrder) (RBTree[K, V], error) {
	dup := &rbTree[K, V]{
		minMax:   &rbMinMax[K, V]{},
		kcmp:     tree.kcmp,
		newAlloc: tree.newAlloc,
		logger:   tree.logger,
		stats:    tree.stats,
	}
	dup.alloc = dup.mustNewAlloc()
	if err := dup.CopyFrom(tree, order); err != nil {
		return nil, err
	}
	return dup, nil
}

// Swap exchanges the whole content with other without touching any
// node. The comparator and the allocator travel with the nodes, the
// logger and the stats stay. The node count of each stats is moved
// by the size difference.
func (tree *rbTree[K, V]) Swap(other RBTree[K, V]) error {
	o, ok := other.(*rbTree[K, V])
	if !ok || o == nil {
		return ErrRBTreeIncompatible
	}
	if o == tree {
		return nil
	}
	treeCount, otherCount := tree.count, o.count
	tree.root, o.root = o.root, tree.root
	tree.count, o.count = o.count, tree.count
	tree.minMax, o.minMax = o.minMax, tree.minMax
	// The nodes are ordered by their own comparator.
	tree.kcmp, o.kcmp = o.kcmp, tree.kcmp
	// The nodes have to go back to where they came from.
	tree.alloc, o.alloc = o.alloc, tree.alloc
	tree.newAlloc, o.newAlloc = o.newAlloc, tree.newAlloc

	tree.stats.RecordNodeCount(tree.count - treeCount)
	o.stats.RecordNodeCount(o.count - otherCount)
	return nil
}

type RBTreeOpt[K any, V any] func(*rbTree[K, V])

func WithRBTreeDesc[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.kcmp = tree.kcmp.Reverse()
	}
}

func WithRBTreeLogger[K any, V any](logger xlog.XLogger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		if logger == nil {
			return
		}
		tree.logger = logger.Named("rbtree")
	}
}

func WithRBTreeStats[K any, V any](name string) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.stats = newRBTreeStats(name)
	}
}

// WithRBTreeArena allocates the nodes from chunks of capPerChunk nodes.
// A positive maxChunks bounds the tree capacity, the insert beyond it
// fails with ErrRBTreeAllocExhausted.
func WithRBTreeArena[K any, V any](capPerChunk, maxChunks uint32) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.newAlloc = func() Allocator[RBNodeSlot[K, V]] {
			return NewArenaAllocator[RBNodeSlot[K, V]](capPerChunk, maxChunks)
		}
	}
}

// WithRBTreeAllocator plugs in a caller owned node memory strategy.
// The factory is called once by the constructor and once per Clone,
// it must return a new allocator every time.
func WithRBTreeAllocator[K any, V any](factory func() Allocator[RBNodeSlot[K, V]]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		if factory == nil {
			return
		}
		tree.newAlloc = factory
	}
}

func (tree *rbTree[K, V]) mustNewAlloc() Allocator[RBNodeSlot[K, V]] {
	alloc := tree.newAlloc()
	if alloc == nil {
		panic(ErrRBTreeNilAllocator)
	}
	return alloc
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return NewRBTreeWithComparator[K, V](infra.AscComparator[K], opts...)
}

// NewRBTreeWithComparator accepts any key type ordered by cmp.
// The cmp has to be a strict weak ordering, it is not validated.
func NewRBTreeWithComparator[K any, V any](cmp infra.OrderedKeyComparator[K], opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	if cmp == nil {
		panic(ErrRBTreeNilComparator)
	}
	tree := &rbTree[K, V]{
		minMax: &rbMinMax[K, V]{},
		kcmp:   cmp,
		count:  0,
	}

	for _, o := range opts {
		if o == nil {
			continue
		}
		o(tree)
	}

	if tree.newAlloc == nil {
		tree.newAlloc = func() Allocator[RBNodeSlot[K, V]] {
			return HeapAllocator[RBNodeSlot[K, V]]{}
		}
	}
	tree.alloc = tree.mustNewAlloc()
	if tree.logger == nil {
		tree.logger = xlog.NewNopXLogger()
	}
	return tree
}
