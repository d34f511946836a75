package container

import (
	"errors"
	"strings"

	"github.com/benz9527/xkv/lib/kv"
	"github.com/benz9527/xkv/lib/list"
	"github.com/benz9527/xkv/lib/tree"
)

var errUnknownKind = errors.New("[container] unknown kind")

// Container is the common surface of every key-value engine.
// None of the engines is thread safe.
type Container[K comparable, V any] interface {
	// Insert is an upsert. An error means the engine ran out of
	// nodes or slots and nothing was changed.
	Insert(key K, val V) error
	Remove(key K) bool
	Find(key K) (V, bool)
	Len() int64
	Clear()
	Foreach(action func(idx int64, key K, val V) bool)
}

var (
	_ Container[int, struct{}] = (*list.SeqList[int, struct{}])(nil)
	_ Container[int, struct{}] = (*list.SkipList[int, struct{}])(nil)
	_ Container[int, struct{}] = (*tree.BSTree[int, struct{}])(nil)
	_ Container[int, struct{}] = (*tree.AVLTree[int, struct{}])(nil)
	_ Container[int, struct{}] = (*kv.HashTable[int, struct{}])(nil)
)

type Kind uint8

const (
	SeqListKind Kind = iota
	BSTreeKind
	HashTableKind
	AVLTreeKind
	SkipListKind
	_kindMax
)

func (k Kind) String() string {
	switch k {
	case SeqListKind:
		return "list"
	case BSTreeKind:
		return "bst"
	case HashTableKind:
		return "hash"
	case AVLTreeKind:
		return "avl"
	case SkipListKind:
		return "skiplist"
	default:
	}
	return "unknown"
}

func ParseKind(kind string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "list":
		return SeqListKind, nil
	case "bst":
		return BSTreeKind, nil
	case "hash":
		return HashTableKind, nil
	case "avl":
		return AVLTreeKind, nil
	case "skiplist":
		return SkipListKind, nil
	default:
	}
	return _kindMax, errUnknownKind
}

// Kinds returns all the engines in the declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, _kindMax)
	for k := SeqListKind; k < _kindMax; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
