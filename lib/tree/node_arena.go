package tree

import (
	"math"

	"github.com/benz9527/xkv/lib/infra"
)

// nodeIndex addresses a node inside the arena. It is stable for the
// whole lifetime of the node, the backing slice may be reallocated.
type nodeIndex int32

// The arena slot 0 is reserved as the nil node (non-zero offset).
// Its height is always 0 and it is never written.
const nilNode nodeIndex = 0

const maxArenaNodes = math.MaxInt32 - 1

type treeNode[K infra.OrderedKey, V any] struct {
	key    K
	val    V
	left   nodeIndex
	right  nodeIndex
	height int32 // Only maintained by the AVL tree.
}

// nodeArena owns all the nodes of a tree. The detached nodes are
// recycled and reused by the next allocation.
type nodeArena[K infra.OrderedKey, V any] struct {
	nodes    []treeNode[K, V]
	recycled []nodeIndex
	initCap  int
	limit    int
	live     int
}

func (arena *nodeArena[K, V]) allocate(key K, val V) (nodeIndex, error) {
	if arena.live >= arena.limit {
		return nilNode, ErrTreeNodesExhausted
	}
	arena.live++
	if n := len(arena.recycled); n > 0 {
		idx := arena.recycled[n-1]
		arena.recycled = arena.recycled[:n-1]
		arena.nodes[idx] = treeNode[K, V]{key: key, val: val, height: 1}
		return idx, nil
	}
	arena.nodes = append(arena.nodes, treeNode[K, V]{key: key, val: val, height: 1})
	return nodeIndex(len(arena.nodes) - 1), nil
}

// node returns the node address. It must not be kept over an allocation.
func (arena *nodeArena[K, V]) node(idx nodeIndex) *treeNode[K, V] {
	if idx == nilNode {
		// impossible run to here
		panic( /* debug assertion */ "[tree] access the nil node")
	}
	return &arena.nodes[idx]
}

func (arena *nodeArena[K, V]) height(idx nodeIndex) int32 {
	return arena.nodes[idx].height
}

func (arena *nodeArena[K, V]) recycle(idx nodeIndex) {
	arena.nodes[idx] = treeNode[K, V]{}
	arena.recycled = append(arena.recycled, idx)
	arena.live--
}

// reset drops every node at once. The old backing slice is released
// to the GC instead of being cleared node by node.
func (arena *nodeArena[K, V]) reset() {
	arena.nodes = make([]treeNode[K, V], 1, arena.initCap)
	arena.recycled = nil
	arena.live = 0
}

func (arena *nodeArena[K, V]) liveNodes() int {
	return arena.live
}

func newNodeArena[K infra.OrderedKey, V any](initCap, limit int) *nodeArena[K, V] {
	if initCap <= 0 {
		initCap = 16
	}
	if limit <= 0 || limit > maxArenaNodes {
		limit = maxArenaNodes
	}
	arena := &nodeArena[K, V]{
		initCap: initCap,
		limit:   limit,
	}
	arena.reset()
	return arena
}

// Inorder traversal with an explicit stack, the depth of an
// unbalanced tree may be O(n).
func inorderForeach[K infra.OrderedKey, V any](
	arena *nodeArena[K, V],
	root nodeIndex,
	action func(idx int64, key K, val V) bool,
) {
	stack := make([]nodeIndex, 0, 32)
	defer func() {
		clear(stack)
	}()

	for aux := root; aux != nilNode; aux = arena.nodes[aux].left {
		stack = append(stack, aux)
	}
	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		node := &arena.nodes[aux]
		if !action(idx, node.key, node.val) {
			return
		}
		idx++
		for aux = node.right; aux != nilNode; aux = arena.nodes[aux].left {
			stack = append(stack, aux)
		}
	}
}

func search[K infra.OrderedKey, V any](
	arena *nodeArena[K, V],
	root nodeIndex,
	kcmp infra.OrderedKeyComparator[K],
	key K,
) nodeIndex {
	for aux := root; aux != nilNode; {
		node := &arena.nodes[aux]
		res := kcmp(key, node.key)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = node.left
		} else {
			aux = node.right
		}
	}
	return nilNode
}

// validateInorder checks the strictly increasing keys and the node count.
func validateInorder[K infra.OrderedKey, V any](
	arena *nodeArena[K, V],
	root nodeIndex,
	kcmp infra.OrderedKeyComparator[K],
	count int64,
) error {
	var (
		prev    K
		visited int64
		err     error
	)
	inorderForeach[K, V](arena, root, func(idx int64, key K, val V) bool {
		if idx > 0 && kcmp(prev, key) >= 0 {
			err = errTreeOrderViolation
			return false
		}
		prev = key
		visited++
		return true
	})
	if err != nil {
		return err
	}
	if visited != count || int64(arena.liveNodes()) != count {
		return errTreeCountMismatch
	}
	return nil
}
