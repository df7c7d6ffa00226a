package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func isBlack[K any, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K any, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RedViolationValidate checks the root is black and no red node has
// a red child.
func RedViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if isRed[K, V](root) {
		return fmt.Errorf("%w: root key %v", ErrRBTreeRootRedViolation, root.Key())
	}

	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		l, r := aux.Left(), aux.Right()
		if isRed[K, V](aux) && (isRed[K, V](l) || isRed[K, V](r)) {
			return fmt.Errorf("%w: key %v", ErrRBTreeRedViolation, aux.Key())
		}
		if l != nil {
			stack = append(stack, l)
		}
		if r != nil {
			stack = append(stack, r)
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each nil leaf to root node black depth are equal.
*/
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	type blackDepth struct {
		node  RBNode[K, V]
		depth int
	}
	stack := make([]blackDepth, 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, blackDepth{node: root})

	expected := -1
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		depth := aux.depth
		if isBlack[K, V](aux.node) {
			depth++
		}
		for _, child := range []RBNode[K, V]{aux.node.Left(), aux.node.Right()} {
			if child != nil {
				stack = append(stack, blackDepth{node: child, depth: depth})
				continue
			}
			if /* first nil leaf */ expected < 0 {
				expected = depth
			} else if expected != depth {
				return fmt.Errorf("%w: key %v, black depth %d, expected %d",
					ErrRBTreeBlackViolation, aux.node.Key(), depth, expected)
			}
		}
	}
	return nil
}

// ParentViolationValidate checks every child refers back to its parent.
func ParentViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root key %v has parent", ErrRBTreeParentViolation, root.Key())
	}

	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		for _, child := range []RBNode[K, V]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return fmt.Errorf("%w: key %v", ErrRBTreeParentViolation, child.Key())
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// OrderValidate checks the in-order keys are strictly ascending by cmp,
// which also means no duplicate keys.
func OrderValidate[K any, V any](tree RBTree[K, V], cmp infra.OrderedKeyComparator[K]) (err error) {
	var prev K
	tree.Traverse(InOrder, func(idx int64, color RBColor, key K, val V) bool {
		if idx > 0 && cmp(prev, key) >= 0 {
			err = fmt.Errorf("%w: index %d, key %v after %v", ErrRBTreeOrderViolation, idx, key, prev)
			return false
		}
		prev = key
		return true
	})
	return err
}

// SizeValidate checks the size counter equals the live node count.
func SizeValidate[K any, V any](tree RBTree[K, V]) error {
	count := int64(0)
	tree.Traverse(PreOrder, func(idx int64, color RBColor, key K, val V) bool {
		count++
		return true
	})
	if count != tree.Len() {
		return fmt.Errorf("%w: counted %d, size %d", ErrRBTreeSizeViolation, count, tree.Len())
	}
	if (count == 0) != tree.IsEmpty() {
		return fmt.Errorf("%w: counted %d, empty %v", ErrRBTreeSizeViolation, count, tree.IsEmpty())
	}
	return nil
}

// MinMaxValidate checks the cached extremal nodes against a full descent.
func MinMaxValidate[K any, V any](tree RBTree[K, V]) error {
	var minimum, maximum RBNode[K, V]
	for aux := tree.Root(); aux != nil; aux = aux.Left() {
		minimum = aux
	}
	for aux := tree.Root(); aux != nil; aux = aux.Right() {
		maximum = aux
	}
	if tree.Min() != minimum {
		return fmt.Errorf("%w: cached min mismatch", ErrRBTreeMinMaxViolation)
	}
	if tree.Max() != maximum {
		return fmt.Errorf("%w: cached max mismatch", ErrRBTreeMinMaxViolation)
	}
	return nil
}

// Validate runs all the validations and combines their errors.
func Validate[K any, V any](tree RBTree[K, V], cmp infra.OrderedKeyComparator[K]) error {
	var err error
	err = multierr.Append(err, RedViolationValidate[K, V](tree))
	err = multierr.Append(err, BlackViolationValidate[K, V](tree))
	err = multierr.Append(err, ParentViolationValidate[K, V](tree))
	err = multierr.Append(err, OrderValidate[K, V](tree, cmp))
	err = multierr.Append(err, SizeValidate[K, V](tree))
	err = multierr.Append(err, MinMaxValidate[K, V](tree))
	return err
}
