//go:build go1.22
// +build go1.22

package kv

import (
	randv2 "math/rand/v2"
	"unsafe"
)

// runtimeHashFn is the hash function generated by the compiler for
// the map key type, (ptr to key, seed) -> hash.
type runtimeHashFn func(unsafe.Pointer, uintptr) uintptr

// Copy from go1.22.1
// go/src/internal/abi/type.go
type _mapType struct {
	_      [9]uint64     // go/src/internal/abi/type.go Type: size 48, 6 bytes; key, elem, bucket: size 8 * 3, 3 bytes
	hasher runtimeHashFn // function for hashing keys
	_      uint64        // key size, value size, bucket size, flags
}

type _mapIface struct {
	typ *_mapType
	_   uint64 // go/src/runtime/map.go, hmap pointer, size 8, 1 byte
}

//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

func newHashSeed() uintptr {
	return uintptr(randv2.Uint64())
}

// Hasher borrows the runtime map hasher, so every comparable key
// type (string, integers, floats, structs of them) is supported
// without a user defined hash func.
type Hasher[K comparable] struct {
	hash runtimeHashFn
	seed uintptr
}

func (h Hasher[K]) Hash(key K) uint64 {
	// Promise the key no escapes to the heap.
	p := noescape(unsafe.Pointer(&key))
	return uint64(h.hash(p, h.seed))
}

func getRuntimeHasher[K comparable]() (fn runtimeHashFn) {
	i := (any)(make(map[K]struct{}))
	iface := (*_mapIface)(unsafe.Pointer(&i))
	fn = iface.typ.hasher
	return
}

func newHasher[K comparable]() Hasher[K] {
	return Hasher[K]{
		hash: getRuntimeHasher[K](),
		seed: newHashSeed(),
	}
}

// newSeedHasher shares the hash func with a fresh seed. The hash
// table reseeds on every growth.
func newSeedHasher[K comparable](hasher Hasher[K]) Hasher[K] {
	return Hasher[K]{
		hash: hasher.hash,
		seed: newHashSeed(),
	}
}

// NewHashFunc returns a seeded runtime hash func for K.
func NewHashFunc[K comparable]() HashFunc[K] {
	return newHasher[K]().Hash
}
