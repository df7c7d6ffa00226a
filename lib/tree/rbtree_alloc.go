package tree

import "reflect"

var (
	_ Allocator[RBNodeSlot[uint8, uint8]] = (*HeapAllocator[RBNodeSlot[uint8, uint8]])(nil)
	_ Allocator[RBNodeSlot[uint8, uint8]] = (*ArenaAllocator[RBNodeSlot[uint8, uint8]])(nil)
)

func (tree *rbTree[K, V]) allocNode() (*rbNode[K, V], error) {
	slot, err := tree.alloc.Allocate()
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrRBTreeAllocExhausted
	}
	z := (*rbNode[K, V])(slot)
	// A custom allocator is not trusted to zero the recycled slots.
	*z = rbNode[K, V]{}
	return z, nil
}

// releaseNode unlinks the node and marks the stale handles before the
// memory goes back to the allocator.
func (tree *rbTree[K, V]) releaseNode(node *rbNode[K, V]) {
	node.parent = nil
	node.left = nil
	node.right = nil
	node.hasKV = false
	tree.alloc.Release((*RBNodeSlot[K, V])(node))
}

// HeapAllocator leaves the node memory to the Go runtime.
type HeapAllocator[T any] struct{}

func (HeapAllocator[T]) Allocate() (*T, error) {
	return new(T), nil
}

// Release destroys the payload so the GC does not keep the key and
// value alive through a stale reference.
func (HeapAllocator[T]) Release(obj *T) {
	if obj == nil {
		return
	}
	var zero T
	*obj = zero
}

// ArenaAllocator hands out objects from fixed size chunks and recycles
// the released ones before growing.
// T must not be a pointer type.
type ArenaAllocator[T any] struct {
	chunks      [][]T
	recycled    []*T
	capPerChunk int
	maxChunks   int // 0 means unbounded
	offset      int // next free slot in the last chunk
	inUse       int64
}

func (arena *ArenaAllocator[T]) Allocate() (*T, error) {
	if rl := len(arena.recycled); rl > 0 {
		obj := arena.recycled[rl-1]
		arena.recycled[rl-1] = nil
		arena.recycled = arena.recycled[:rl-1]
		arena.inUse++
		return obj, nil
	}

	if len(arena.chunks) <= 0 || arena.offset >= arena.capPerChunk {
		if arena.maxChunks > 0 && len(arena.chunks) >= arena.maxChunks {
			return nil, ErrRBTreeAllocExhausted
		}
		arena.chunks = append(arena.chunks, make([]T, arena.capPerChunk))
		arena.offset = 0
	}
	obj := &arena.chunks[len(arena.chunks)-1][arena.offset]
	arena.offset++
	arena.inUse++
	return obj, nil
}

func (arena *ArenaAllocator[T]) Release(obj *T) {
	if obj == nil {
		return
	}
	var zero T
	*obj = zero
	arena.recycled = append(arena.recycled, obj)
	arena.inUse--
}

// InUse returns the number of objects allocated but not yet released.
func (arena *ArenaAllocator[T]) InUse() int64 {
	return arena.inUse
}

func (arena *ArenaAllocator[T]) Recycled() int {
	return len(arena.recycled)
}

func (arena *ArenaAllocator[T]) Chunks() int {
	return len(arena.chunks)
}

// Capacity returns how many objects could be live at most.
// Returns -1 for an unbounded arena.
func (arena *ArenaAllocator[T]) Capacity() int64 {
	if arena.maxChunks <= 0 {
		return -1
	}
	return int64(arena.maxChunks) * int64(arena.capPerChunk)
}

func NewArenaAllocator[T any](capPerChunk, maxChunks uint32) *ArenaAllocator[T] {
	o := *new(T)
	if reflect.TypeOf(o) != nil && reflect.TypeOf(o).Kind() == reflect.Ptr {
		panic("forbid to pass ptr generic type for arena allocator")
	}
	if capPerChunk == 0 {
		capPerChunk = 1
	}
	return &ArenaAllocator[T]{
		chunks:      make([][]T, 0, 8),
		recycled:    make([]*T, 0, capPerChunk),
		capPerChunk: int(capPerChunk),
		maxChunks:   int(maxChunks),
	}
}
