package tree

import (
	"github.com/benz9527/xkv/lib/infra"
)

// BSTree is the unbalanced binary search tree.
// The height is O(n) for the sorted insertion order, it is accepted.
// Insert and remove are iterative, there is no recursion depth limit.
type BSTree[K infra.OrderedKey, V any] struct {
	arena *nodeArena[K, V]
	kcmp  infra.OrderedKeyComparator[K]
	root  nodeIndex
	count int64
}

func (tree *BSTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *BSTree[K, V]) link(parent nodeIndex, dir Direction, child nodeIndex) {
	switch dir {
	case Root:
		tree.root = child
	case Left:
		tree.arena.node(parent).left = child
	case Right:
		tree.arena.node(parent).right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ "[bst] unknown node direction to link")
	}
}

// Insert is an upsert. A new key is attached as a leaf.
func (tree *BSTree[K, V]) Insert(key K, val V) error {
	parent, dir := nilNode, Root
	for x := tree.root; x != nilNode; {
		node := tree.arena.node(x)
		res := tree.kcmp(key, node.key)
		if /* equal */ res == 0 {
			node.val = val
			return nil
		}
		parent = x
		if /* less */ res < 0 {
			dir, x = Left, node.left
		} else /* greater */ {
			dir, x = Right, node.right
		}
	}

	z, err := tree.arena.allocate(key, val)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[bst] unable to insert")
	}
	tree.link(parent, dir, z)
	tree.count++
	return nil
}

func (tree *BSTree[K, V]) Find(key K) (val V, ok bool) {
	if x := search[K, V](tree.arena, tree.root, tree.kcmp, key); x != nilNode {
		return tree.arena.node(x).val, true
	}
	return val, false
}

/*
rm1: X has at most one child C, splice X out and reparent C.

	  P            P
	  |            |
	  X   ====>    C
	 /
	C

rm2: X has two children. Copy its in-order successor S (the leftmost
node of the right subtree) into X, then splice S out. S has no left child.

	    X                S
	   / \              / \
	  L   R    ====>   L   R
	     /                /
	    S                Sr
	     \
	      Sr
*/
func (tree *BSTree[K, V]) Remove(key K) bool {
	parent, dir := nilNode, Root
	z := tree.root
	for z != nilNode {
		node := tree.arena.node(z)
		res := tree.kcmp(key, node.key)
		if res == 0 {
			break
		}
		parent = z
		if res < 0 {
			dir, z = Left, node.left
		} else {
			dir, z = Right, node.right
		}
	}
	if z == nilNode {
		return false
	}

	zn := tree.arena.node(z)
	if /* rm2 */ zn.left != nilNode && zn.right != nilNode {
		sp, s := z, zn.right
		for tree.arena.node(s).left != nilNode {
			sp, s = s, tree.arena.node(s).left
		}
		sn := tree.arena.node(s)
		zn.key, zn.val = sn.key, sn.val
		if sp == z {
			zn.right = sn.right
		} else {
			tree.arena.node(sp).left = sn.right
		}
		tree.arena.recycle(s)
	} else /* rm1 */ {
		child := zn.left
		if child == nilNode {
			child = zn.right
		}
		tree.link(parent, dir, child)
		tree.arena.recycle(z)
	}
	tree.count--
	return true
}

// Height is calculated level by level (BFS).
func (tree *BSTree[K, V]) Height() int32 {
	if tree.root == nilNode {
		return 0
	}
	height := int32(0)
	queue := []nodeIndex{tree.root}
	for len(queue) > 0 {
		height++
		next := make([]nodeIndex, 0, len(queue)*2)
		for _, x := range queue {
			node := tree.arena.node(x)
			if node.left != nilNode {
				next = append(next, node.left)
			}
			if node.right != nilNode {
				next = append(next, node.right)
			}
		}
		queue = next
	}
	return height
}

// Foreach iterates in key order until the action returns false.
func (tree *BSTree[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	inorderForeach[K, V](tree.arena, tree.root, action)
}

func (tree *BSTree[K, V]) Clear() {
	tree.arena.reset()
	tree.root = nilNode
	tree.count = 0
}

func (tree *BSTree[K, V]) Validate() error {
	return validateInorder[K, V](tree.arena, tree.root, tree.kcmp, tree.count)
}

type BSTreeOption[K infra.OrderedKey, V any] func(tree *BSTree[K, V])

// WithBSTreeMaxNodes limits the live nodes, an insert beyond it
// returns ErrTreeNodesExhausted.
func WithBSTreeMaxNodes[K infra.OrderedKey, V any](n int) BSTreeOption[K, V] {
	return func(tree *BSTree[K, V]) {
		tree.arena.limit = n
	}
}

func WithBSTreeComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) BSTreeOption[K, V] {
	return func(tree *BSTree[K, V]) {
		if cmp != nil {
			tree.kcmp = cmp
		}
	}
}

func NewBSTree[K infra.OrderedKey, V any](opts ...BSTreeOption[K, V]) *BSTree[K, V] {
	tree := &BSTree[K, V]{
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
