package container

import (
	"math"

	"github.com/benz9527/xkv/lib/infra"
	"github.com/benz9527/xkv/lib/kv"
	"github.com/benz9527/xkv/lib/list"
	"github.com/benz9527/xkv/lib/tree"
)

type engineOptions struct {
	hashCapacity *int64
	sklMaxLevel  *int
	sklP         *float64
	seed         *uint64
	listPolicy   *list.InsertPolicy
	trustedKeys  bool
	maxTreeNodes int
}

// Option is validated at construction, the engine's own options
// panic on bad values instead.
type Option func(opts *engineOptions) error

func WithHashCapacity(capacity uint64) Option {
	return func(opts *engineOptions) error {
		if capacity == 0 || capacity > math.MaxInt32 {
			return infra.NewErrorStack("[container] hash capacity out of range [1, MaxInt32]")
		}
		c := int64(capacity)
		opts.hashCapacity = &c
		return nil
	}
}

func WithSkipListMaxLevel(maxLevel int) Option {
	return func(opts *engineOptions) error {
		if maxLevel <= 0 || maxLevel > 32 {
			return infra.NewErrorStack("[container] skip list max level out of range [1, 32]")
		}
		opts.sklMaxLevel = &maxLevel
		return nil
	}
}

func WithSkipListProbability(p float64) Option {
	return func(opts *engineOptions) error {
		if !(p > 0 && p < 1) {
			return infra.NewErrorStack("[container] skip list probability out of range (0, 1)")
		}
		opts.sklP = &p
		return nil
	}
}

// WithSeed fixes the skip list levels. 0 keeps the random seed.
func WithSeed(seed uint64) Option {
	return func(opts *engineOptions) error {
		if seed != 0 {
			opts.seed = &seed
		}
		return nil
	}
}

func WithListPolicy(policy list.InsertPolicy) Option {
	return func(opts *engineOptions) error {
		if !policy.Valid() {
			return infra.NewErrorStack("[container] unknown list insert policy")
		}
		opts.listPolicy = &policy
		return nil
	}
}

// WithTrustedKeys is only meaningful for the sequential list.
// The caller promises the keys are unique.
func WithTrustedKeys() Option {
	return func(opts *engineOptions) error {
		opts.trustedKeys = true
		return nil
	}
}

// WithMaxTreeNodes limits the nodes of the BST and AVL engines.
func WithMaxTreeNodes(n int) Option {
	return func(opts *engineOptions) error {
		if n <= 0 {
			return infra.NewErrorStack("[container] max tree nodes must be positive")
		}
		opts.maxTreeNodes = n
		return nil
	}
}

// New builds the engine by kind. The options not related to the kind
// are validated but ignored.
func New[K infra.OrderedKey, V any](kind Kind, opts ...Option) (Container[K, V], error) {
	cfg := &engineOptions{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			return nil, err
		}
	}

	switch kind {
	case SeqListKind:
		lopts := make([]list.SeqListOption[K, V], 0, 2)
		if cfg.listPolicy != nil {
			lopts = append(lopts, list.WithSeqListPolicy[K, V](*cfg.listPolicy))
		}
		if cfg.trustedKeys {
			lopts = append(lopts, list.WithSeqListTrustedKeys[K, V]())
		}
		return list.NewSeqList[K, V](lopts...), nil
	case BSTreeKind:
		return tree.NewBSTree[K, V](tree.WithBSTreeMaxNodes[K, V](cfg.maxTreeNodes)), nil
	case AVLTreeKind:
		return tree.NewAVLTree[K, V](tree.WithAVLTreeMaxNodes[K, V](cfg.maxTreeNodes)), nil
	case HashTableKind:
		hopts := make([]kv.HashTableOption[K, V], 0, 1)
		if cfg.hashCapacity != nil {
			hopts = append(hopts, kv.WithHashTableCapacity[K, V](*cfg.hashCapacity))
		}
		return kv.NewHashTable[K, V](hopts...), nil
	case SkipListKind:
		sopts := make([]list.SkipListOption[K, V], 0, 3)
		if cfg.sklMaxLevel != nil {
			sopts = append(sopts, list.WithSkipListMaxLevel[K, V](*cfg.sklMaxLevel))
		}
		if cfg.sklP != nil {
			sopts = append(sopts, list.WithSkipListProbability[K, V](*cfg.sklP))
		}
		if cfg.seed != nil {
			sopts = append(sopts, list.WithSkipListRandSeed[K, V](*cfg.seed))
		}
		return list.NewSkipList[K, V](sopts...), nil
	default:
	}
	return nil, infra.WrapErrorStackWithMessage(errUnknownKind, kind.String())
}
