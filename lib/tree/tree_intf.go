package tree

import (
	"errors"

	"github.com/benz9527/xkv/lib/infra"
)

var (
	ErrTreeNodesExhausted  = errors.New("[tree] node arena exhausted")
	errTreeCountMismatch   = errors.New("[tree] node count mismatch")
	errTreeOrderViolation  = errors.New("[tree] inorder keys are not strictly increasing")
	errAVLHeightViolation  = errors.New("[avl] stored height mismatch")
	errAVLBalanceViolation = errors.New("[avl] balance factor out of [-1, 1]")
)

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

// OrderedTree is the shared surface of the unbalanced and
// the AVL binary search trees.
type OrderedTree[K infra.OrderedKey, V any] interface {
	Len() int64
	Height() int32
	Insert(key K, val V) error
	Remove(key K) bool
	Find(key K) (V, bool)
	Foreach(action func(idx int64, key K, val V) bool)
	Clear()
	// Validate walks the whole tree to check the tree properties.
	Validate() error
}

var (
	_ OrderedTree[int, struct{}] = (*BSTree[int, struct{}])(nil)
	_ OrderedTree[int, struct{}] = (*AVLTree[int, struct{}])(nil)
)
