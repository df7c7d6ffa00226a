package tree

/*
r1: Current node X has left and right node.
Find node X's succ (the minimum of the right subtree) to replace it.
Copy the key and value only, then remove the succ node, which has
at most one (right) child.

	  |                    |
	  X                    S
	 / \                  / \
	L  ..   copy(S, X)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                S' ..

r2: Current node X has exactly one child. The child must be a red node
and X must be black (see conclusion), so splice the child into X's slot
and paint it into black.

r3: (1) Current node X is a red leaf node, unlink directly. Removing
a red node never changes the black height, nothing to repaint.

r3: (2) Current node X is a black leaf node, rebalance at X's position
before unlinking, the rebalance needs X's sibling. (black-violation)

r4: Current node X is the root leaf, the tree becomes empty.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) *rbNode[K, V] {
	res := z.snapshot()

	y := z
	if /* r1 */ y.left != nil && y.right != nil {
		y = z.right.minimum()
		z.key, z.val = y.key, y.val
	}

	if /* r2 */ !y.isLeaf() {
		replace := y.left
		if replace == nil {
			replace = y.right
		}

		switch y.Direction() {
		case Root:
			tree.root = replace
		case Left:
			y.parent.left = replace
		case Right:
			y.parent.right = replace
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (r2)")
		}
		replace.parent = y.parent

		if y.isBlack() {
			replace.color = Black
		}
	} else if /* r4 */ y.isRoot() {
		tree.root = nil
	} else {
		if /* r3 (2) */ y.isBlack() {
			tree.removeRebalance(y)
		}
		// The rebalance may rotate around y but never moves it off its
		// parent, y is still a leaf.
		switch y.Direction() {
		case Left:
			y.parent.left = nil
		case Right:
			y.parent.right = nil
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] y should be a leaf node, violate (r3)")
		}
	}

	tree.releaseNode(y)

	tree.count--
	tree.minMax.refresh(tree.root)
	tree.stats.IncreaseRemoveCount()
	tree.stats.RecordNodeCount(-1)
	return res
}

// Remove returns the detached payload of the removed node.
func (tree *rbTree[K, V]) Remove(key K) (RBNode[K, V], error) {
	z := tree.search(key)
	if z == nil {
		return nil, ErrRBTreeKeyNotFound
	}
	return tree.removeNode(z), nil
}

// Delete reports whether a node was removed.
func (tree *rbTree[K, V]) Delete(key K) bool {
	z := tree.search(key)
	if z == nil {
		return false
	}
	tree.removeNode(z)
	return true
}

func (tree *rbTree[K, V]) RemoveMin() (RBNode[K, V], error) {
	if tree.minMax.min == nil {
		return nil, ErrRBTreeEmpty
	}
	return tree.removeNode(tree.minMax.min), nil
}

func (tree *rbTree[K, V]) RemoveMax() (RBNode[K, V], error) {
	if tree.minMax.max == nil {
		return nil, ErrRBTreeEmpty
	}
	return tree.removeNode(tree.minMax.max), nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node (near nephew).
Sd is the opposite direction to X and it X's sibling's child node (far nephew).

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P
(2) X is right node of P, right rotate P.
(3) repaint S into black, P into red.
Retry with the new black sibling Sc.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
is black.
Repaint S into red and P into black. Done.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Unable to satisfy p3 and p4. We have to paint the S into red to satisfy
p4 locally. Then loop to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: Current node X's sibling S is black, far nephew Sd is red.
Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) S takes P's color, P is painted into black.
(4) Repaint Sd into black. Done.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V]) removeRebalance(x *rbNode[K, V]) {
	for {
		tree.stats.IncreaseRebalanceCount(false)
		if x.isRoot() {
			return
		}

		dir := x.Direction()
		sibling := x.sibling()
		if sibling == nil {
			// A black non-root node always has a sibling, keep the
			// deficit moving upward for safety.
			x = x.parent
			continue
		}

		if /* rm1 */ sibling.isRed() {
			x.parent.color = Red
			sibling.color = Black
			tree.rotate(x.parent, dir, false)
			continue
		}

		var sc, sd *rbNode[K, V]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (rm2)")
		}

		if sc.isBlack() && sd.isBlack() {
			sibling.color = Red
			if /* rm2 */ x.parent.isRed() {
				x.parent.color = Black
				return
			}
			/* rm3 */
			x = x.parent
			continue
		}

		if /* rm4 */ sd.isBlack() {
			// Rotate S away from X, Sc becomes the new sibling and
			// S becomes its red far child.
			tree.rotate(sibling, -dir, false)
			sc.color = Black
			sibling.color = Red
			sibling, sd = sc, sibling
		}

		/* rm5 */
		tree.rotate(x.parent, dir, false)
		sibling.color = x.parent.color
		x.parent.color = Black
		sd.color = Black
		return
	}
}
