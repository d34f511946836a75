package list

import (
	"github.com/benz9527/xkv/lib/infra"
)

// References:
// https://github.com/antirez/disque/blob/master/src/skiplist.c
// https://github.com/liyue201/gostl

// The tower of a node is decided on insertion and never changes.
// towers[0] is the data level, it links every key in the skip list.
type skipListNode[K infra.OrderedKey, V any] struct {
	towers []*skipListNode[K, V]
	key    K
	val    V
}

func newSkipListNode[K infra.OrderedKey, V any](level int32, key K, val V) *skipListNode[K, V] {
	return &skipListNode[K, V]{
		towers: make([]*skipListNode[K, V], level),
		key:    key,
		val:    val,
	}
}

func (node *skipListNode[K, V]) level() int32 {
	return int32(len(node.towers))
}

// SkipList is a single-threaded ordered map.
type SkipList[K infra.OrderedKey, V any] struct {
	// sentinel node, it owns maxLevel towers.
	head     *skipListNode[K, V]
	kcmp     infra.OrderedKeyComparator[K]
	rand     *levelRand
	seed     uint64
	len      int64
	level    int32 // The highest tower present, 0 if empty.
	maxLevel int32
	p        float64
}

func (skl *SkipList[K, V]) Len() int64 {
	return skl.len
}

func (skl *SkipList[K, V]) Level() int32 {
	return skl.level
}

func (skl *SkipList[K, V]) MaxLevel() int32 {
	return skl.maxLevel
}

func (skl *SkipList[K, V]) Seed() uint64 {
	return skl.seed
}

// traverse records the rightmost node whose next key is not less than
// the key at every level, from top to bottom.
func (skl *SkipList[K, V]) traverse(key K, update []*skipListNode[K, V]) *skipListNode[K, V] {
	x := skl.head
	for l := skl.level - 1; l >= 0; l-- {
		for next := x.towers[l]; next != nil && skl.kcmp(next.key, key) < 0; next = x.towers[l] {
			x = next
		}
		if update != nil {
			update[l] = x
		}
	}
	if x = x.towers[0]; x != nil && skl.kcmp(x.key, key) == 0 {
		return x
	}
	return nil
}

// Insert is an upsert, the value of an existing key is overwritten.
func (skl *SkipList[K, V]) Insert(key K, val V) error {
	var update [skipListMaxLevelLimit]*skipListNode[K, V]
	if x := skl.traverse(key, update[:]); x != nil {
		x.val = val
		return nil
	}

	lvl := skl.rand.next()
	if lvl > skl.level {
		for l := skl.level; l < lvl; l++ {
			update[l] = skl.head
		}
		skl.level = lvl
	}
	x := newSkipListNode[K, V](lvl, key, val)
	for l := int32(0); l < lvl; l++ {
		x.towers[l] = update[l].towers[l]
		update[l].towers[l] = x
	}
	skl.len++
	return nil
}

func (skl *SkipList[K, V]) Find(key K) (val V, ok bool) {
	if x := skl.traverse(key, nil); x != nil {
		return x.val, true
	}
	return val, false
}

func (skl *SkipList[K, V]) Remove(key K) bool {
	var update [skipListMaxLevelLimit]*skipListNode[K, V]
	x := skl.traverse(key, update[:])
	if x == nil {
		return false
	}
	for l := int32(0); l < x.level(); l++ {
		if update[l].towers[l] != x {
			// impossible run to here
			panic( /* debug assertion */ "[skip-list] predecessor does not link to the removed node")
		}
		update[l].towers[l] = x.towers[l]
		x.towers[l] = nil
	}
	for skl.level > 0 && skl.head.towers[skl.level-1] == nil {
		skl.level--
	}
	skl.len--
	return true
}

// Foreach iterates the data level in key order until the action returns false.
func (skl *SkipList[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	idx := int64(0)
	for x := skl.head.towers[0]; x != nil; x = x.towers[0] {
		if !action(idx, x.key, x.val) {
			return
		}
		idx++
	}
}

// ForeachLevel iterates the nodes linked at the level.
func (skl *SkipList[K, V]) ForeachLevel(level int32, action func(key K, nodeLevel int32) bool) {
	if level < 0 || level >= skl.maxLevel {
		return
	}
	for x := skl.head.towers[level]; x != nil; x = x.towers[level] {
		if !action(x.key, x.level()) {
			return
		}
	}
}

// Clear unlinks every tower.
func (skl *SkipList[K, V]) Clear() {
	for x := skl.head.towers[0]; x != nil; {
		next := x.towers[0]
		clear(x.towers)
		x.towers = nil
		x = next
	}
	clear(skl.head.towers)
	skl.level = 0
	skl.len = 0
}

type SkipListOption[K infra.OrderedKey, V any] func(skl *SkipList[K, V])

func WithSkipListMaxLevel[K infra.OrderedKey, V any](maxLevel int) SkipListOption[K, V] {
	return func(skl *SkipList[K, V]) {
		if maxLevel <= 0 || maxLevel > skipListMaxLevelLimit {
			panic( /* debug assertion */ "[skip-list] max level out of range (1, 32]")
		}
		skl.maxLevel = int32(maxLevel)
	}
}

func WithSkipListProbability[K infra.OrderedKey, V any](p float64) SkipListOption[K, V] {
	return func(skl *SkipList[K, V]) {
		if !(p > 0 && p < 1) {
			panic( /* debug assertion */ "[skip-list] probability out of range (0, 1)")
		}
		skl.p = p
	}
}

func WithSkipListRandSeed[K infra.OrderedKey, V any](seed uint64) SkipListOption[K, V] {
	return func(skl *SkipList[K, V]) {
		skl.seed = seed
	}
}

func WithSkipListComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) SkipListOption[K, V] {
	return func(skl *SkipList[K, V]) {
		if cmp != nil {
			skl.kcmp = cmp
		}
	}
}

func NewSkipList[K infra.OrderedKey, V any](opts ...SkipListOption[K, V]) *SkipList[K, V] {
	skl := &SkipList[K, V]{
		kcmp:     infra.DefaultOrderedKeyComparator[K](),
		maxLevel: skipListDefaultMaxLevel,
		p:        skipListDefaultP,
		seed:     cryptoRandUint64(),
	}
	for _, o := range opts {
		o(skl)
	}
	skl.rand = newLevelRand(skl.seed, skl.p, skl.maxLevel)
	skl.head = newSkipListNode[K, V](skl.maxLevel, *new(K), *new(V))
	return skl
}
