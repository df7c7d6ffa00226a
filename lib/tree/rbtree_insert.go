package tree

import "go.uber.org/zap"

// i1: Empty rbtree, insert directly, but root node is painted to black.
// i2: The key exists already, nothing changed and the value is not replaced.
// i3: Attach the new red node under the last visited node, then rebalance.
func (tree *rbTree[K, V]) Insert(key K, val V) (bool, error) {
	var x, y *rbNode[K, V] = tree.root, nil
	res := int64(0)
	for x != nil {
		y = x
		res = tree.keyCompare(key, x.key)
		if /* i2 */ res == 0 {
			return false, nil
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	// The allocation is the first mutation step, so a failure leaves
	// the tree untouched.
	z, err := tree.allocNode()
	if err != nil {
		tree.stats.IncreaseAllocFailCount()
		tree.logger.Warn("rbtree node allocation failed",
			zap.Error(err),
			zap.Int64("count", tree.count),
		)
		return false, err
	}
	z.key, z.val, z.hasKV = key, val, true
	z.color = Red

	if /* i1 */ y == nil {
		z.color = Black
		tree.root = z
	} else /* i3 */ {
		z.parent = y
		if res < 0 {
			y.left = z
		} else {
			y.right = z
		}
		tree.insertRebalance(z)
	}

	tree.count++
	tree.minMax.refresh(tree.root)
	tree.stats.IncreaseInsertCount()
	tree.stats.RecordNodeCount(1)
	return true, nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X is root, paint it into black. Done.

im2: Current node X's parent P is black, hold p3 and p4. Done.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Loop to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation still red-violation. Here must enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Handle im4 scenario, current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for x != nil {
		tree.stats.IncreaseRebalanceCount(true)
		if /* im1 */ x.isRoot() {
			x.color = Black
			return
		}

		if /* im2 */ x.parent.isBlack() {
			return
		}

		// The red parent is never the root, so the grandpa exists.
		if /* im3 */ uncle := x.uncle(); uncle.isRed() {
			x.parent.color = Black
			uncle.color = Black
			gp := x.grandpa()
			gp.color = Red
			x = gp
			continue
		}

		dir := x.Direction()
		if /* im4 */ pdir := x.parent.Direction(); dir != pdir {
			p := x.parent
			// Rotate P down to the side of the parent, so X takes
			// P's slot with the same direction.
			tree.rotate(p, pdir, true)
			x = p // enter im5 to fix
		}

		/* im5 */
		gp := x.grandpa()
		p := x.parent
		switch p.Direction() {
		case Left:
			tree.rotate(gp, Right, true)
		case Right:
			tree.rotate(gp, Left, true)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (im5)")
		}
		p.color = Black
		gp.color = Red
		return
	}
}
