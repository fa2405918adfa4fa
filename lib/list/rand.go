package list

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
)

// levelGenerator samples tower heights by counting Bernoulli(p)
// successes up to maxLevel. It owns its own PRNG, seeded from
// crypto/rand, instead of reaching for the package-level math/rand
// source: that source is guarded by a single shared mutex, which
// would serialize every insert across an otherwise lock-free list.
//
// Sampling is still a shared mutable PRNG across concurrent inserters,
// so access is guarded by a short spin lock rather than left racy.
type levelGenerator struct {
	maxLevel    int32
	probability float64
	mu          spinMutex
	id          monotonicNonZeroID
	src         *mathrand.Rand
}

func newLevelGenerator(maxLevel int32, probability float64) *levelGenerator {
	return &levelGenerator{
		maxLevel:    maxLevel,
		probability: probability,
		src:         mathrand.New(mathrand.NewPCG(seedUint64(), seedUint64())),
	}
}

func seedUint64() uint64 {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform has no entropy
		// source at all; fall back to a fixed seed rather than
		// panicking a library call.
		return 0x9e3779b97f4a7c15
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (g *levelGenerator) randomLevel() int32 {
	v := g.id.next()
	g.mu.lock(v)
	defer g.mu.unlock(v)

	level := int32(0)
	for level < g.maxLevel && g.src.Float64() < g.probability {
		level++
	}
	return level
}
