package xorfuse

import "math/rand/v2"

// Constants for the murmur3 finalizer used to mix a key with a filter's
// seed before it is split into block/segment indices.
const (
	mixC1 = 0xff51afd7ed558ccd
	mixC2 = 0xc4ceb9fe1a85ec53
)

// mix combines key and seed into a single well-avalanched 64-bit value
// using the murmur3 finalizer. Every bit of the output depends on every
// bit of both inputs, which is what lets a single 64-bit hash be sliced
// into several independent-looking indices below.
func mix(key, seed uint64) uint64 {
	h := key + seed
	h ^= h >> 33
	h *= mixC1
	h ^= h >> 33
	h *= mixC2
	h ^= h >> 33
	return h
}

// fingerprint compresses a mixed hash down to the bits actually stored
// per key. Folding the upper half into the lower half (rather than
// simply truncating) keeps the low bits sensitive to the whole 64-bit
// hash.
func fingerprint(hash uint64) uint64 {
	return hash ^ (hash >> 32)
}

// rotl64 rotates x left by c bits.
func rotl64(x uint64, c uint) uint64 {
	return (x << (c & 63)) | (x >> ((64 - c) & 63))
}

// reduce maps hash into the range [0, n) without a division, using the
// fact that (hash * n) >> 32 is uniform over [0, n) when hash is
// uniform over [0, 2^32). This is Lemire's alternative to hash % n.
func reduce(hash uint32, n uint32) uint32 {
	return uint32((uint64(hash) * uint64(n)) >> 32)
}

// seedSequence produces the deterministic sequence of seeds a build
// attempts in turn when a peeling attempt fails. Builds of the same key
// set always retry with the same seeds, which is what makes filter
// construction reproducible.
type seedSequence struct {
	state uint64
}

// newSeedSequence starts the sequence at SplitMix64's conventional
// initial state.
func newSeedSequence() *seedSequence {
	return &seedSequence{state: 1}
}

// next returns the next seed in the sequence.
func (s *seedSequence) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// fillUntouched overwrites every fingerprint cell for which touched[i]
// is false with a uniformly random value of T's width. Builds call it
// before back-assignment, with touched marking the cells back-assignment
// will write; those cells are left alone.
func fillUntouched[T fpWidth](fingerprints []T, touched []bool) {
	for i, t := range touched {
		if !t {
			fingerprints[i] = T(rand.Uint64())
		}
	}
}
