package tree

import (
	"github.com/benz9527/xkv/lib/infra"
)

// References:
// https://en.wikipedia.org/wiki/AVL_tree
// avl property:
// For every node, height(left) - height(right) is one of -1, 0 and 1.
// So the height is at most about 1.44 * log2(n+2), insert, remove
// and find are bounded to O(log n).
// The recursion depth is bounded by the height as well.

type AVLTree[K infra.OrderedKey, V any] struct {
	arena *nodeArena[K, V]
	kcmp  infra.OrderedKeyComparator[K]
	root  nodeIndex
	count int64
}

func (tree *AVLTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *AVLTree[K, V]) Height() int32 {
	return tree.arena.height(tree.root)
}

func (tree *AVLTree[K, V]) updateHeight(x nodeIndex) {
	node := tree.arena.node(x)
	node.height = 1 + max(tree.arena.height(node.left), tree.arena.height(node.right))
}

func (tree *AVLTree[K, V]) balance(x nodeIndex) int32 {
	if x == nilNode {
		return 0
	}
	node := tree.arena.node(x)
	return tree.arena.height(node.left) - tree.arena.height(node.right)
}

/*
	    |                       |
	    Y                       X
	   / \   rightRotate(Y)    / \
	  X   R  ============>    L   Y
	 / \                         / \
	L   Xr                      Xr  R
*/
func (tree *AVLTree[K, V]) rightRotate(y nodeIndex) nodeIndex {
	yn := tree.arena.node(y)
	if yn.left == nilNode {
		// impossible run to here
		panic( /* debug assertion */ "[avl] right rotate node y.left is nil")
	}
	x := yn.left
	xn := tree.arena.node(x)
	yn.left, xn.right = xn.right, y
	tree.updateHeight(y)
	tree.updateHeight(x)
	return x
}

/*
	  |                         |
	  X                         Y
	 / \     leftRotate(X)     / \
	L   Y    ============>    X   R
	   / \                   / \
	  Yl  R                 L   Yl
*/
func (tree *AVLTree[K, V]) leftRotate(x nodeIndex) nodeIndex {
	xn := tree.arena.node(x)
	if xn.right == nilNode {
		// impossible run to here
		panic( /* debug assertion */ "[avl] left rotate node x.right is nil")
	}
	y := xn.right
	yn := tree.arena.node(y)
	xn.right, yn.left = yn.left, x
	tree.updateHeight(x)
	tree.updateHeight(y)
	return y
}

/*
r1 (left-left): balance(X) > 1 and balance(X.left) >= 0, rightRotate(X).
r2 (left-right): balance(X) > 1 and balance(X.left) < 0,
leftRotate(X.left) then rightRotate(X).
r3 (right-right): balance(X) < -1 and balance(X.right) <= 0, leftRotate(X).
r4 (right-left): balance(X) < -1 and balance(X.right) > 0,
rightRotate(X.right) then leftRotate(X).

Returns the new root of the subtree.
*/
func (tree *AVLTree[K, V]) rebalance(x nodeIndex) nodeIndex {
	tree.updateHeight(x)
	bal := tree.balance(x)
	node := tree.arena.node(x)
	switch {
	case bal > 1:
		if /* r2 */ tree.balance(node.left) < 0 {
			node.left = tree.leftRotate(node.left)
		}
		return tree.rightRotate(x)
	case bal < -1:
		if /* r4 */ tree.balance(node.right) > 0 {
			node.right = tree.rightRotate(node.right)
		}
		return tree.leftRotate(x)
	default:
	}
	return x
}

// Insert is an upsert. The overwrite does not change the structure.
// An allocation failure happens before any link changes, so the tree
// is left as it was.
func (tree *AVLTree[K, V]) Insert(key K, val V) error {
	root, inserted, err := tree.insert(tree.root, key, val)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[avl] unable to insert")
	}
	tree.root = root
	if inserted {
		tree.count++
	}
	return nil
}

func (tree *AVLTree[K, V]) insert(x nodeIndex, key K, val V) (nodeIndex, bool, error) {
	if x == nilNode {
		z, err := tree.arena.allocate(key, val)
		if err != nil {
			return x, false, err
		}
		return z, true, nil
	}

	res := tree.kcmp(key, tree.arena.node(x).key)
	if /* equal */ res == 0 {
		tree.arena.node(x).val = val
		return x, false, nil
	}

	var (
		child    nodeIndex
		inserted bool
		err      error
	)
	if /* less */ res < 0 {
		child, inserted, err = tree.insert(tree.arena.node(x).left, key, val)
		if err != nil || !inserted {
			return x, false, err
		}
		// The arena may be reallocated by the insertion.
		tree.arena.node(x).left = child
	} else /* greater */ {
		child, inserted, err = tree.insert(tree.arena.node(x).right, key, val)
		if err != nil || !inserted {
			return x, false, err
		}
		tree.arena.node(x).right = child
	}
	return tree.rebalance(x), true, nil
}

func (tree *AVLTree[K, V]) Find(key K) (val V, ok bool) {
	if x := search[K, V](tree.arena, tree.root, tree.kcmp, key); x != nilNode {
		return tree.arena.node(x).val, true
	}
	return val, false
}

func (tree *AVLTree[K, V]) Remove(key K) bool {
	root, removed := tree.remove(tree.root, key)
	if !removed {
		return false
	}
	tree.root = root
	tree.count--
	return true
}

func (tree *AVLTree[K, V]) remove(x nodeIndex, key K) (nodeIndex, bool) {
	if x == nilNode {
		return x, false
	}

	node := tree.arena.node(x)
	res := tree.kcmp(key, node.key)
	switch {
	case res < 0:
		child, removed := tree.remove(node.left, key)
		if !removed {
			return x, false
		}
		node.left = child
	case res > 0:
		child, removed := tree.remove(node.right, key)
		if !removed {
			return x, false
		}
		node.right = child
	default:
		if node.left == nilNode || node.right == nilNode {
			child := node.left
			if child == nilNode {
				child = node.right
			}
			tree.arena.recycle(x)
			return child, true
		}
		succ := node.right
		for tree.arena.node(succ).left != nilNode {
			succ = tree.arena.node(succ).left
		}
		sn := tree.arena.node(succ)
		node.key, node.val = sn.key, sn.val
		node.right = tree.removeMin(node.right)
	}
	return tree.rebalance(x), true
}

// removeMin splices out the leftmost node of the subtree and
// rebalances the path back to the subtree root.
func (tree *AVLTree[K, V]) removeMin(x nodeIndex) nodeIndex {
	node := tree.arena.node(x)
	if node.left == nilNode {
		right := node.right
		tree.arena.recycle(x)
		return right
	}
	node.left = tree.removeMin(node.left)
	return tree.rebalance(x)
}

// Foreach iterates in key order until the action returns false.
func (tree *AVLTree[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	inorderForeach[K, V](tree.arena, tree.root, action)
}

func (tree *AVLTree[K, V]) Clear() {
	tree.arena.reset()
	tree.root = nilNode
	tree.count = 0
}

// Validate checks the inorder keys, the stored heights and the
// balance factor of every node.
func (tree *AVLTree[K, V]) Validate() error {
	if err := validateInorder[K, V](tree.arena, tree.root, tree.kcmp, tree.count); err != nil {
		return err
	}
	_, err := tree.validateHeight(tree.root)
	return err
}

func (tree *AVLTree[K, V]) validateHeight(x nodeIndex) (int32, error) {
	if x == nilNode {
		return 0, nil
	}
	node := tree.arena.node(x)
	lh, err := tree.validateHeight(node.left)
	if err != nil {
		return 0, err
	}
	rh, err := tree.validateHeight(node.right)
	if err != nil {
		return 0, err
	}
	if bal := lh - rh; bal > 1 || bal < -1 {
		return 0, errAVLBalanceViolation
	}
	h := 1 + max(lh, rh)
	if h != node.height {
		return 0, errAVLHeightViolation
	}
	return h, nil
}

type AVLTreeOption[K infra.OrderedKey, V any] func(tree *AVLTree[K, V])

func WithAVLTreeMaxNodes[K infra.OrderedKey, V any](n int) AVLTreeOption[K, V] {
	return func(tree *AVLTree[K, V]) {
		tree.arena.limit = n
	}
}

func WithAVLTreeComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) AVLTreeOption[K, V] {
	return func(tree *AVLTree[K, V]) {
		if cmp != nil {
			tree.kcmp = cmp
		}
	}
}

func NewAVLTree[K infra.OrderedKey, V any](opts ...AVLTreeOption[K, V]) *AVLTree[K, V] {
	tree := &AVLTree[K, V]{
		arena: newNodeArena[K, V](0, 0),
		kcmp:  infra.DefaultOrderedKeyComparator[K](),
		root:  nilNode,
	}
	for _, o := range opts {
		o(tree)
	}
	if tree.arena.limit <= 0 || tree.arena.limit > maxArenaNodes {
		tree.arena.limit = maxArenaNodes
	}
	return tree
}
