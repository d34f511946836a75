package list

// References:
// https://www.cl.cam.ac.uk/teaching/2005/Algorithms/skiplists.pdf

import (
	saferand "crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"
)

const (
	skipListMaxLevelLimit   = 32
	skipListDefaultMaxLevel = 16
	skipListDefaultP        = 0.5
)

// levelRand flips a biased coin until it fails or the max level is reached.
// The source is seedable, so the tower heights are reproducible.
type levelRand struct {
	rnd      *randv2.Rand
	p        float64
	maxLevel int32
}

func (r *levelRand) next() int32 {
	lvl := int32(1)
	for lvl < r.maxLevel && r.rnd.Float64() < r.p {
		lvl++
	}
	return lvl
}

func newLevelRand(seed uint64, p float64, maxLevel int32) *levelRand {
	return &levelRand{
		// The second PCG word is derived from the seed, one seed is enough
		// to replay the same level sequence.
		rnd:      randv2.New(randv2.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		p:        p,
		maxLevel: maxLevel,
	}
}

func cryptoRandUint64() uint64 {
	randUint64 := [8]byte{}
	if _, err := saferand.Read(randUint64[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(randUint64[:])
}
