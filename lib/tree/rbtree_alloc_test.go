package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

func TestArenaAllocator(t *testing.T) {
	arena := NewArenaAllocator[rbNode[int, int]](4, 2)
	require.Equal(t, int64(8), arena.Capacity())

	objs := make([]*rbNode[int, int], 0, 8)
	for i := 0; i < 8; i++ {
		obj, err := arena.Allocate()
		require.NoError(t, err)
		require.NotNil(t, obj)
		obj.key = i
		objs = append(objs, obj)
	}
	require.Equal(t, 2, arena.Chunks())
	require.Equal(t, int64(8), arena.InUse())

	_, err := arena.Allocate()
	require.ErrorIs(t, err, ErrRBTreeAllocExhausted)

	arena.Release(objs[3])
	arena.Release(objs[5])
	require.Equal(t, 2, arena.Recycled())
	require.Equal(t, int64(6), arena.InUse())
	require.Equal(t, 0, objs[3].key)

	// LIFO reuse of the released slots.
	obj, err := arena.Allocate()
	require.NoError(t, err)
	require.True(t, obj == objs[5])
	obj, err = arena.Allocate()
	require.NoError(t, err)
	require.True(t, obj == objs[3])
	require.Equal(t, 2, arena.Chunks())

	arena.Release(nil)
	require.Equal(t, int64(8), arena.InUse())

	unbounded := NewArenaAllocator[rbNode[int, int]](0, 0)
	require.Equal(t, int64(-1), unbounded.Capacity())
	for i := 0; i < 10; i++ {
		_, err = unbounded.Allocate()
		require.NoError(t, err)
	}
	require.Equal(t, 10, unbounded.Chunks())

	require.Panics(t, func() {
		NewArenaAllocator[*rbNode[int, int]](4, 0)
	})
}

func TestHeapAllocator(t *testing.T) {
	alloc := HeapAllocator[rbNode[string, []byte]]{}
	obj, err := alloc.Allocate()
	require.NoError(t, err)
	obj.key, obj.val, obj.hasKV = "a", []byte("b"), true
	alloc.Release(obj)
	require.Equal(t, "", obj.key)
	require.Nil(t, obj.val)
	require.False(t, obj.hasKV)
	alloc.Release(nil)
}

func TestRbtree_ArenaExhausted(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(buf),
		xlog.WithXLoggerEncoder(xlog.JSON),
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
	)
	tree := newTestRBTree[int, int](
		WithRBTreeArena[int, int](4, 2),
		WithRBTreeLogger[int, int](logger),
	)
	arena := tree.alloc.(*ArenaAllocator[RBNodeSlot[int, int]])

	for i := 0; i < 8; i++ {
		inserted, err := tree.Insert(i, i)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	type snapshot struct {
		color RBColor
		key   int
	}
	shape := func() []snapshot {
		res := make([]snapshot, 0, 8)
		tree.Traverse(PreOrder, func(idx int64, color RBColor, key int, val int) bool {
			res = append(res, snapshot{color, key})
			return true
		})
		return res
	}
	before := shape()

	inserted, err := tree.Insert(100, 100)
	require.ErrorIs(t, err, ErrRBTreeAllocExhausted)
	require.False(t, inserted)
	require.Equal(t, int64(8), tree.Len())
	require.Equal(t, before, shape())
	require.Equal(t, 7, tree.Max().Key())
	require.NoError(t, Validate[int, int](tree, infra.AscComparator[int]))

	// A duplicate never reaches the allocator.
	inserted, err = tree.Insert(3, 3)
	require.NoError(t, err)
	require.False(t, inserted)

	require.Contains(t, buf.String(), "rbtree node allocation failed")
	line := lo.Filter(strings.Split(buf.String(), "\n"), func(item string, _ int) bool {
		return strings.Contains(item, "allocation failed")
	})
	require.Len(t, line, 1)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(line[0]), &entry))
	require.Equal(t, "WARN", entry["lvl"])
	require.Equal(t, "rbtree", entry["component"])
	require.EqualValues(t, 8, entry["count"])

	// Released slots come back to the tree.
	require.True(t, tree.Delete(0))
	require.Equal(t, 1, arena.Recycled())
	inserted, err = tree.Insert(100, 100)
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, 0, arena.Recycled())
	require.Equal(t, int64(8), arena.InUse())

	tree.Clear()
	require.Equal(t, int64(0), arena.InUse())
	require.Equal(t, 8, arena.Recycled())
	require.Contains(t, buf.String(), "rbtree cleared")

	for i := 0; i < 8; i++ {
		_, err = tree.Insert(i*10, i)
		require.NoError(t, err)
	}
	require.Equal(t, 2, arena.Chunks())
	require.NoError(t, Validate[int, int](tree, infra.AscComparator[int]))
}

func TestRbtree_CopyFromExhausted(t *testing.T) {
	src := newTestRBTree[int, int]()
	for i := 0; i < 20; i++ {
		_, _ = src.Insert(i, i)
	}
	buf := &bytes.Buffer{}
	dst := newTestRBTree[int, int](
		WithRBTreeArena[int, int](4, 1),
		WithRBTreeLogger[int, int](xlog.NewXLogger(xlog.WithXLoggerWriter(buf))),
	)
	err := dst.CopyFrom(src, InOrder)
	require.ErrorIs(t, err, ErrRBTreeAllocExhausted)
	require.Equal(t, int64(4), dst.Len())
	require.NoError(t, Validate[int, int](dst, infra.AscComparator[int]))
	require.Contains(t, buf.String(), "rbtree copy interrupted")

	_, err = src.Clone(PreOrder)
	require.NoError(t, err)
	_, err = dst.Clone(InOrder)
	require.NoError(t, err)
}

var errTestAllocDenied = errors.New("test allocator denied")

// countingAllocator tracks every live object to check the tree pairs
// each Allocate with exactly one Release.
type countingAllocator[T any] struct {
	limit     int // 0 means unbounded
	allocated int
	released  int
	live      map[*T]struct{}
}

func newCountingAllocator[T any](limit int) *countingAllocator[T] {
	return &countingAllocator[T]{
		limit: limit,
		live:  make(map[*T]struct{}, 64),
	}
}

func (a *countingAllocator[T]) Allocate() (*T, error) {
	if a.limit > 0 && len(a.live) >= a.limit {
		return nil, errTestAllocDenied
	}
	obj := new(T)
	a.live[obj] = struct{}{}
	a.allocated++
	return obj, nil
}

func (a *countingAllocator[T]) Release(obj *T) {
	if _, ok := a.live[obj]; !ok {
		panic("release an object not owned by the allocator")
	}
	delete(a.live, obj)
	a.released++
}

func TestRbtree_CustomAllocator(t *testing.T) {
	allocators := make([]*countingAllocator[RBNodeSlot[int, int]], 0, 2)
	tree := newTestRBTree[int, int](WithRBTreeAllocator[int, int](func() Allocator[RBNodeSlot[int, int]] {
		a := newCountingAllocator[RBNodeSlot[int, int]](100)
		allocators = append(allocators, a)
		return a
	}))
	require.Len(t, allocators, 1)
	alloc := allocators[0]

	for _, key := range lo.Shuffle(lo.Range(100)) {
		inserted, err := tree.Insert(key, key)
		require.NoError(t, err)
		require.True(t, inserted)
	}
	require.Equal(t, 100, alloc.allocated)
	require.Len(t, alloc.live, 100)

	// Duplicate keys never allocate.
	_, err := tree.Insert(42, 0)
	require.NoError(t, err)
	require.Equal(t, 100, alloc.allocated)

	// Full allocator leaves the tree untouched.
	before := make([]int, 0, 100)
	tree.Traverse(PreOrder, func(idx int64, color RBColor, key int, val int) bool {
		before = append(before, key)
		return true
	})
	inserted, err := tree.Insert(1000, 1000)
	require.ErrorIs(t, err, errTestAllocDenied)
	require.False(t, inserted)
	require.Equal(t, int64(100), tree.Len())
	require.Equal(t, 99, tree.Max().Key())
	after := make([]int, 0, 100)
	tree.Traverse(PreOrder, func(idx int64, color RBColor, key int, val int) bool {
		after = append(after, key)
		return true
	})
	require.Equal(t, before, after)

	// The successor is released, the two children target stays live.
	root := tree.root
	require.NotNil(t, root.left)
	require.NotNil(t, root.right)
	succ := root.right.minimum()
	require.True(t, tree.Delete(root.key))
	require.Equal(t, 1, alloc.released)
	require.Contains(t, alloc.live, (*RBNodeSlot[int, int])(root))
	require.NotContains(t, alloc.live, (*RBNodeSlot[int, int])(succ))
	require.NoError(t, Validate[int, int](tree, infra.AscComparator[int]))

	// One child and leaf removals.
	for i := 0; i < 10; i++ {
		_, err = tree.RemoveMin()
		require.NoError(t, err)
	}
	require.Equal(t, 11, alloc.released)
	require.Len(t, alloc.live, int(tree.Len()))

	dup, err := tree.Clone(InOrder)
	require.NoError(t, err)
	require.Len(t, allocators, 2)
	require.Len(t, allocators[1].live, int(dup.Len()))
	require.Len(t, alloc.live, int(tree.Len()))

	tree.Clear()
	require.Empty(t, alloc.live)
	require.Equal(t, alloc.allocated, alloc.released)
	dup.Clear()
	require.Empty(t, allocators[1].live)

	require.PanicsWithValue(t, ErrRBTreeNilAllocator, func() {
		NewRBTree[int, int](WithRBTreeAllocator[int, int](func() Allocator[RBNodeSlot[int, int]] {
			return nil
		}))
	})
}
