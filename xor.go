package xorfuse

import "fmt"

// Xor is a filter built with the 3-hash xor-filter construction from
// Graf & Lemire (2019). T is the fingerprint width; see Xor8, Xor16,
// and Xor32 for the concrete instantiations this package exports.
type Xor[T fpWidth] struct {
	seed         uint64
	blockLength  uint32
	fingerprints []T
	size         int
}

// Xor8, Xor16, and Xor32 are the fingerprint-width instantiations of
// Xor. Larger fingerprints give a lower false-positive rate at the cost
// of more memory per key.
type (
	Xor8  = Xor[uint8]
	Xor16 = Xor[uint16]
	Xor32 = Xor[uint32]
)

// NewXor8 builds an 8-bit xor filter over keys.
func NewXor8(keys []uint64, opts ...BuildOption) (*Xor8, error) { return buildXor[uint8](keys, opts) }

// NewXor16 builds a 16-bit xor filter over keys.
func NewXor16(keys []uint64, opts ...BuildOption) (*Xor16, error) {
	return buildXor[uint16](keys, opts)
}

// NewXor32 builds a 32-bit xor filter over keys.
func NewXor32(keys []uint64, opts ...BuildOption) (*Xor32, error) {
	return buildXor[uint32](keys, opts)
}

// Contains reports whether key might be a member of the set the filter
// was built from. It never false-negatives.
func (f *Xor[T]) Contains(key uint64) bool {
	if f.size == 0 {
		return false
	}

	hash := mix(key, f.seed)
	h0, h1, h2 := xorBlockIndices(hash, f.blockLength)

	fp := T(fingerprint(hash))
	got := f.fingerprints[h0] ^ f.fingerprints[h1+f.blockLength] ^ f.fingerprints[h2+2*f.blockLength]
	return fp == got
}

// Len returns the number of keys the filter was built from.
func (f *Xor[T]) Len() int { return f.size }

// ZeroFraction reports the fraction of fingerprint-array cells holding
// the zero value, a proxy for how much of the array back-assignment
// left untouched.
func (f *Xor[T]) ZeroFraction() float64 { return zeroFraction(f.fingerprints) }

// xorBlockIndices splits a mixed hash into three block-relative indices
// in [0, blockLength), one per of the filter's three equal-sized blocks.
func xorBlockIndices(hash uint64, blockLength uint32) (h0, h1, h2 uint32) {
	h0 = reduce(uint32(hash), blockLength)
	h1 = reduce(uint32(rotl64(hash, 21)), blockLength)
	h2 = reduce(uint32(rotl64(hash, 42)), blockLength)
	return
}

// xorCapacity returns the total fingerprint-array size and per-block
// length for n keys: enough overhead (23%, plus 32 slack cells) that a
// peelable assignment is overwhelmingly likely on the first attempt,
// rounded down to a multiple of 3 so the array splits evenly into three
// equal blocks.
func xorCapacity(n int) (capacity, blockLength uint32) {
	c := uint32(1.23*float64(n)) + 32
	c -= c % 3
	return c, c / 3
}

func buildXor[T fpWidth](keys []uint64, opts []BuildOption) (*Xor[T], error) {
	n := len(keys)
	if err := checkKeyCount(n, "xor"); err != nil {
		return nil, err
	}

	cfg := newBuildConfig(opts)
	capacity, blockLength := xorCapacity(n)

	blocks := [3][]peelSlot{
		make([]peelSlot, blockLength),
		make([]peelSlot, blockLength),
		make([]peelSlot, blockLength),
	}
	queues := [3][]uint32{}

	seeds := newSeedSequence()

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		seed := seeds.next()

		for b := range blocks {
			clear(blocks[b])
			queues[b] = queues[b][:0]
		}

		for _, key := range keys {
			hash := mix(key, seed)
			h0, h1, h2 := xorBlockIndices(hash, blockLength)
			idx := [3]uint32{h0, h1, h2}
			for b := range blocks {
				s := &blocks[b][idx[b]]
				s.count++
				s.mask ^= hash
			}
		}

		for b := range blocks {
			for i := uint32(0); i < blockLength; i++ {
				if blocks[b][i].count == 1 {
					queues[b] = append(queues[b], i)
				}
			}
		}

		stack := make([]peeledKey, 0, n)
		for len(queues[0]) > 0 || len(queues[1]) > 0 || len(queues[2]) > 0 {
			for b := range blocks {
				for len(queues[b]) > 0 {
					i := queues[b][len(queues[b])-1]
					queues[b] = queues[b][:len(queues[b])-1]

					if blocks[b][i].count != 1 {
						continue
					}

					hash := blocks[b][i].mask
					blocks[b][i].count = 0

					h0, h1, h2 := xorBlockIndices(hash, blockLength)
					idx := [3]uint32{h0, h1, h2}
					global := [3]uint32{idx[0], idx[1] + blockLength, idx[2] + 2*blockLength}
					stack = append(stack, peeledKey{hash: hash, index: global[b]})

					for ob := range blocks {
						if ob == b {
							continue
						}
						s := &blocks[ob][idx[ob]]
						s.count--
						s.mask ^= hash
						if s.count == 1 {
							queues[ob] = append(queues[ob], idx[ob])
						}
					}
				}
			}
		}

		if len(stack) != n {
			continue
		}

		fingerprints := make([]T, capacity)
		touched := make([]bool, capacity)
		for _, ki := range stack {
			touched[ki.index] = true
		}

		if cfg.randomFill {
			fillUntouched(fingerprints, touched)
		}

		for i := len(stack) - 1; i >= 0; i-- {
			ki := stack[i]
			h0, h1, h2 := xorBlockIndices(ki.hash, blockLength)
			global := [3]uint32{h0, h1 + blockLength, h2 + 2*blockLength}

			var sum T
			for _, g := range global {
				if g != ki.index {
					sum ^= fingerprints[g]
				}
			}
			fingerprints[ki.index] = T(fingerprint(ki.hash)) ^ sum
		}

		return &Xor[T]{seed: seed, blockLength: blockLength, fingerprints: fingerprints, size: n}, nil
	}

	return nil, fmt.Errorf("%w: xor filter (n=%d) after %d attempts", ErrBuildFailed, n, cfg.maxAttempts)
}
