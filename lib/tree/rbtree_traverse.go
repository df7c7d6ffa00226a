package tree

// Foreach walks in the key order (in-order traversal) until action
// returns false.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	idx := int64(0)
	for aux := tree.minMax.min; aux != nil; aux = aux.succ() {
		if !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
	}
}

// Traverse is the hook for copy and assignment, the caller picks the
// visiting order. Modifying the tree inside action is undefined.
func (tree *rbTree[K, V]) Traverse(order TraversalOrder, action func(idx int64, color RBColor, key K, val V) bool) {
	if tree.root == nil || action == nil {
		return
	}
	switch order {
	case PreOrder:
		tree.preorder(action)
	case InOrder:
		tree.inorder(action)
	case PostOrder:
		tree.postorder(action)
	default:
		panic( /* debug assertion */ "[rbtree] unknown traversal order")
	}
}

func (tree *rbTree[K, V]) preorder(action func(idx int64, color RBColor, key K, val V) bool) {
	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	stack = append(stack, tree.root)
	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		// Right first, so the left subtree pops first.
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
	}
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) inorder(action func(idx int64, color RBColor, key K, val V) bool) {
	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	aux := tree.root
	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K, V]) postorder(action func(idx int64, color RBColor, key K, val V) bool) {
	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	var prev *rbNode[K, V]
	aux := tree.root
	idx := int64(0)
	for aux != nil || len(stack) > 0 {
		for ; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
		top := stack[len(stack)-1]
		if top.right != nil && top.right != prev {
			aux = top.right
			continue
		}
		if !action(idx, top.color, top.key, top.val) {
			return
		}
		idx++
		prev = top
		stack = stack[:len(stack)-1]
	}
}
