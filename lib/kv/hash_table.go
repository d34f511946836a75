package kv

import (
	"errors"
)

// References:
// https://en.wikipedia.org/wiki/Linear_probing
// https://en.wikipedia.org/wiki/Open_addressing
// Backward shift deletion:
// https://codecapsule.com/2013/11/17/robin-hood-hashing-backward-shift-deletion/

var ErrHashTableCapacityExhausted = errors.New("[hash-table] capacity exhausted")

const (
	hashTableDefaultCap    = 1024
	hashTableDefaultMaxCap = 1 << 40
	// Max load factor 0.7, as integer numerator and denominator.
	hashTableLoadNum = 7
	hashTableLoadDen = 10
)

type HashFunc[K comparable] func(key K) uint64

type hashTableSlot[K comparable, V any] struct {
	key      K
	val      V
	occupied bool
}

// HashTable is an open addressing table with linear probing.
// The occupied slots never exceed 70% of the capacity after an insert,
// so there is always an empty slot to stop the probing.
type HashTable[K comparable, V any] struct {
	slots  []hashTableSlot[K, V]
	hash   HashFunc[K]
	hasher *Hasher[K] // nil if the hash func is user defined
	len    int64
	maxCap int64
}

func (ht *HashTable[K, V]) Len() int64 {
	return ht.len
}

func (ht *HashTable[K, V]) Cap() int64 {
	return int64(len(ht.slots))
}

func (ht *HashTable[K, V]) LoadFactor() float64 {
	return float64(ht.len) / float64(len(ht.slots))
}

func (ht *HashTable[K, V]) home(key K) int64 {
	return int64(ht.hash(key) % uint64(len(ht.slots)))
}

// probe returns the slot index holding the key, or the first empty
// slot on the probing sequence with found false.
func (ht *HashTable[K, V]) probe(key K) (int64, bool) {
	capacity := int64(len(ht.slots))
	start := ht.home(key)
	for i := start; ; {
		slot := &ht.slots[i]
		if !slot.occupied {
			return i, false
		}
		if slot.key == key {
			return i, true
		}
		if i = (i + 1) % capacity; i == start {
			// impossible run to here
			panic( /* debug assertion */ "[hash-table] probing wraps around a full table")
		}
	}
}

func (ht *HashTable[K, V]) overloaded(n int64) bool {
	return n*hashTableLoadDen > int64(len(ht.slots))*hashTableLoadNum
}

// Insert is an upsert. The table grows (doubles) before a new key
// would push the load factor over 0.7. If the growth is not possible,
// the table is left unchanged.
func (ht *HashTable[K, V]) Insert(key K, val V) error {
	if i, found := ht.probe(key); found {
		ht.slots[i].val = val
		return nil
	}

	if ht.overloaded(ht.len + 1) {
		newCap := int64(len(ht.slots))
		for newCap*hashTableLoadNum < (ht.len+1)*hashTableLoadDen {
			newCap <<= 1
		}
		if newCap > ht.maxCap {
			return ErrHashTableCapacityExhausted
		}
		ht.rehash(newCap)
	}

	i, _ := ht.probe(key)
	ht.slots[i] = hashTableSlot[K, V]{key: key, val: val, occupied: true}
	ht.len++
	return nil
}

func (ht *HashTable[K, V]) rehash(newCap int64) {
	oldSlots := ht.slots
	ht.slots = make([]hashTableSlot[K, V], newCap)
	if ht.hasher != nil {
		reseeded := newSeedHasher[K](*ht.hasher)
		ht.hasher = &reseeded
		ht.hash = reseeded.Hash
	}
	for i := range oldSlots {
		if !oldSlots[i].occupied {
			continue
		}
		j, _ := ht.probe(oldSlots[i].key)
		ht.slots[j] = oldSlots[i]
	}
}

func (ht *HashTable[K, V]) Find(key K) (val V, ok bool) {
	if i, found := ht.probe(key); found {
		return ht.slots[i].val, true
	}
	return val, false
}

/*
Remove clears the slot and shifts the following entries of the same
cluster backward, no tombstone is left.

	cap 8, home(a)=home(b)=2, home(c)=3, remove(a)
	| 0 | 1 | 2 | 3 | 4 | 5 |        | 0 | 1 | 2 | 3 | 4 | 5 |
	|   |   | a | b | c |   |  ====> |   |   | b | c |   |   |

An entry at j can be moved to the hole i only if its home slot is
not in the cyclic range (i, j].
*/
func (ht *HashTable[K, V]) Remove(key K) bool {
	i, found := ht.probe(key)
	if !found {
		return false
	}

	capacity := int64(len(ht.slots))
	for j := (i + 1) % capacity; ht.slots[j].occupied; j = (j + 1) % capacity {
		k := ht.home(ht.slots[j].key)
		if (i < j && (k <= i || k > j)) || (i > j && k <= i && k > j) {
			ht.slots[i] = ht.slots[j]
			i = j
		}
	}
	ht.slots[i] = hashTableSlot[K, V]{}
	ht.len--
	return true
}

// Foreach iterates the occupied slots in the slot order.
func (ht *HashTable[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	idx := int64(0)
	for i := range ht.slots {
		if !ht.slots[i].occupied {
			continue
		}
		if !action(idx, ht.slots[i].key, ht.slots[i].val) {
			return
		}
		idx++
	}
}

// Clear keeps the current capacity.
func (ht *HashTable[K, V]) Clear() {
	clear(ht.slots)
	ht.len = 0
}

type HashTableOption[K comparable, V any] func(ht *HashTable[K, V])

func WithHashTableCapacity[K comparable, V any](capacity int64) HashTableOption[K, V] {
	return func(ht *HashTable[K, V]) {
		if capacity <= 0 {
			panic( /* debug assertion */ "[hash-table] capacity must be positive")
		}
		ht.slots = make([]hashTableSlot[K, V], capacity)
	}
}

// WithHashTableMaxCapacity limits the growth. An insert needs a
// larger table returns ErrHashTableCapacityExhausted.
func WithHashTableMaxCapacity[K comparable, V any](maxCap int64) HashTableOption[K, V] {
	return func(ht *HashTable[K, V]) {
		if maxCap <= 0 {
			panic( /* debug assertion */ "[hash-table] max capacity must be positive")
		}
		ht.maxCap = maxCap
	}
}

// WithHashTableHasher replaces the runtime hasher. The func must be
// deterministic for the lifetime of the table.
func WithHashTableHasher[K comparable, V any](fn HashFunc[K]) HashTableOption[K, V] {
	return func(ht *HashTable[K, V]) {
		if fn == nil {
			return
		}
		ht.hash = fn
		ht.hasher = nil
	}
}

func NewHashTable[K comparable, V any](opts ...HashTableOption[K, V]) *HashTable[K, V] {
	hasher := newHasher[K]()
	ht := &HashTable[K, V]{
		hash:   hasher.Hash,
		hasher: &hasher,
		maxCap: hashTableDefaultMaxCap,
	}
	for _, o := range opts {
		o(ht)
	}
	if ht.slots == nil {
		ht.slots = make([]hashTableSlot[K, V], hashTableDefaultCap)
	}
	if int64(len(ht.slots)) > ht.maxCap {
		ht.maxCap = int64(len(ht.slots))
	}
	return ht
}
