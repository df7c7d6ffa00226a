package tree

import "errors"

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

type TraversalOrder uint8

const (
	PreOrder TraversalOrder = iota
	InOrder
	PostOrder
)

var (
	ErrRBTreeKeyNotFound      = errors.New("[rbtree] key not found")
	ErrRBTreeEmpty            = errors.New("[rbtree] empty element to remove")
	ErrRBTreeAllocExhausted   = errors.New("[rbtree] node allocator exhausted")
	ErrRBTreeNilComparator    = errors.New("[rbtree] nil key comparator")
	ErrRBTreeNilAllocator     = errors.New("[rbtree] allocator factory returns nil")
	ErrRBTreeIncompatible     = errors.New("[rbtree] incompatible tree implementation")
	ErrRBTreeRedViolation     = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation   = errors.New("[rbtree] black violation")
	ErrRBTreeOrderViolation   = errors.New("[rbtree] in-order keys are not strictly ascending")
	ErrRBTreeSizeViolation    = errors.New("[rbtree] node count and size mismatch")
	ErrRBTreeMinMaxViolation  = errors.New("[rbtree] min/max cache mismatch")
	ErrRBTreeParentViolation  = errors.New("[rbtree] parent back reference mismatch")
	ErrRBTreeRootRedViolation = errors.New("[rbtree] non-empty root is red")
)

type RBNode[K any, V any] interface {
	Key() K
	Val() V
	// HasKeyVal reports false once the node has been released to the
	// allocator, a stale handle from Search is able to detect it until
	// the allocator hands the same memory out again.
	HasKeyVal() bool
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is not thread-safe. The callers have to serialize the accesses.
type RBTree[K any, V any] interface {
	Len() int64
	IsEmpty() bool
	Root() RBNode[K, V]
	// Min and Max read the cached extremal nodes in O(1).
	Min() RBNode[K, V]
	Max() RBNode[K, V]
	// Insert returns false without any modification if the key exists.
	Insert(key K, val V) (bool, error)
	Remove(key K) (RBNode[K, V], error)
	Delete(key K) bool
	RemoveMin() (RBNode[K, V], error)
	RemoveMax() (RBNode[K, V], error)
	Search(key K) RBNode[K, V]
	Contains(key K) bool
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Traverse(order TraversalOrder, action func(idx int64, color RBColor, key K, val V) bool)
	CopyFrom(src RBTree[K, V], order TraversalOrder) error
	Clone(order TraversalOrder) (RBTree[K, V], error)
	Swap(other RBTree[K, V]) error
	Clear()
	Release()
}

// Allocator is the node memory capability consumed by the tree.
// Allocate returns a zero value object, Release takes back an object
// that is no longer reachable from the tree.
//
// The tree allocates RBNodeSlot objects, a caller supplied allocator
// is plugged in by WithRBTreeAllocator.
type Allocator[T any] interface {
	Allocate() (*T, error)
	Release(obj *T)
}

// RBNodeSlot is the memory of one tree node. The fields are opaque,
// an allocator only creates, zeroes and recycles it.
type RBNodeSlot[K any, V any] rbNode[K, V]
