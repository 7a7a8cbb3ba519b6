package xorfuse

import (
	"fmt"
	"math"
	"math/bits"
)

const binaryFuseArity = 3

// BinaryFuse is a filter built with the binary fuse construction, the
// successor to Fuse: a segment-aligned two-phase hashing scheme that
// gets closer to the information-theoretic lower bound on space while
// peeling faster than either Xor or Fuse. T is the fingerprint width;
// see BinaryFuse8, BinaryFuse16, and BinaryFuse32 for the concrete
// instantiations this package exports.
type BinaryFuse[T fpWidth] struct {
	seed               uint64
	segmentLength      uint32
	segmentLengthMask  uint32
	segmentCount       uint32
	segmentCountLength uint32
	fingerprints       []T
	size               int
}

// BinaryFuse8, BinaryFuse16, and BinaryFuse32 are the fingerprint-width
// instantiations of BinaryFuse.
type (
	BinaryFuse8  = BinaryFuse[uint8]
	BinaryFuse16 = BinaryFuse[uint16]
	BinaryFuse32 = BinaryFuse[uint32]
)

// NewBinaryFuse8 builds an 8-bit binary fuse filter over keys. keys
// must contain at least 2 distinct values.
func NewBinaryFuse8(keys []uint64, opts ...BuildOption) (*BinaryFuse8, error) {
	return buildBinaryFuse[uint8](keys, opts)
}

// NewBinaryFuse16 builds a 16-bit binary fuse filter over keys. keys
// must contain at least 2 distinct values.
func NewBinaryFuse16(keys []uint64, opts ...BuildOption) (*BinaryFuse16, error) {
	return buildBinaryFuse[uint16](keys, opts)
}

// NewBinaryFuse32 builds a 32-bit binary fuse filter over keys. keys
// must contain at least 2 distinct values.
func NewBinaryFuse32(keys []uint64, opts ...BuildOption) (*BinaryFuse32, error) {
	return buildBinaryFuse[uint32](keys, opts)
}

// Contains reports whether key might be a member of the set the filter
// was built from. It never false-negatives.
func (f *BinaryFuse[T]) Contains(key uint64) bool {
	if f.size == 0 {
		return false
	}

	hash := mix(key, f.seed)
	fp := T(fingerprint(hash))
	h0, h1, h2 := binaryFuseIndices(hash, f.segmentLength, f.segmentLengthMask, f.segmentCountLength)
	fp ^= f.fingerprints[h0] ^ f.fingerprints[h1] ^ f.fingerprints[h2]
	return fp == 0
}

// Len returns the number of keys the filter was built from.
func (f *BinaryFuse[T]) Len() int { return f.size }

// ZeroFraction reports the fraction of fingerprint-array cells holding
// the zero value, a proxy for how much of the array back-assignment
// left untouched.
func (f *BinaryFuse[T]) ZeroFraction() float64 { return zeroFraction(f.fingerprints) }

// binaryFuseIndices computes the three fingerprint-array positions a
// hash maps to, using a single 128-bit multiply (the upper 64 bits of
// hash*segmentCountLength) to pick the first position, then XORing in
// hash bits to spread the other two across their segments.
func binaryFuseIndices(hash uint64, segmentLength, segmentLengthMask, segmentCountLength uint32) (h0, h1, h2 uint32) {
	hi, _ := bits.Mul64(hash, uint64(segmentCountLength))
	h0 = uint32(hi)
	h1 = h0 + segmentLength
	h2 = h1 + segmentLength
	h1 ^= uint32(hash>>18) & segmentLengthMask
	h2 ^= uint32(hash) & segmentLengthMask
	return
}

func mod3[T fpWidth](x T) T {
	if x > 2 {
		x -= 3
	}
	return x
}

// binaryFuseSegmentLength returns the per-segment length for n keys
// under 3-way hashing. The floor (not round) and the specific log base
// are load-bearing: they come directly from the construction's proof of
// convergence, not a tunable aesthetic choice.
func binaryFuseSegmentLength(n uint32) uint32 {
	if n == 0 {
		return 4
	}
	return uint32(1) << int(math.Floor(math.Log(float64(n))/math.Log(3.33)+2.25))
}

// binaryFuseSizeFactor returns the fingerprint-array overhead factor
// for n keys under 3-way hashing.
func binaryFuseSizeFactor(n uint32) float64 {
	return math.Max(1.125, 0.875+0.25*math.Log(1_000_000)/math.Log(float64(n)))
}

// initBinaryFuseGeometry derives segment/array sizing for n keys,
// following the same successive-rounding steps the reference
// construction uses to land on a segmentCountLength and array length
// that are both multiples of segmentLength.
func initBinaryFuseGeometry(n uint32) (segmentLength, segmentLengthMask, segmentCount, segmentCountLength, arrayLength uint32) {
	const arity = binaryFuseArity

	segmentLength = binaryFuseSegmentLength(n)
	if segmentLength > 262144 {
		segmentLength = 262144
	}
	segmentLengthMask = segmentLength - 1

	var capacity uint32
	if n > 1 {
		capacity = uint32(math.Round(float64(n) * binaryFuseSizeFactor(n)))
	}

	initSegmentCount := (capacity+segmentLength-1)/segmentLength - (arity - 1)
	arrayLength = (initSegmentCount + arity - 1) * segmentLength
	segmentCount = (arrayLength + segmentLength - 1) / segmentLength
	if segmentCount <= arity-1 {
		segmentCount = 1
	} else {
		segmentCount -= arity - 1
	}
	arrayLength = (segmentCount + arity - 1) * segmentLength
	segmentCountLength = segmentCount * segmentLength
	return
}

func buildBinaryFuse[T fpWidth](keys []uint64, opts []BuildOption) (*BinaryFuse[T], error) {
	n := len(keys)
	if err := checkKeyCount(n, "binary fuse"); err != nil {
		return nil, err
	}
	if n == 0 {
		return &BinaryFuse[T]{
			segmentLength:      1,
			segmentLengthMask:  0,
			segmentCount:       1,
			segmentCountLength: 1,
			fingerprints:       make([]T, binaryFuseArity),
			size:               0,
		}, nil
	}
	if n == 1 {
		return nil, fmt.Errorf("%w: binary fuse filter requires at least 2 distinct keys", ErrTooFewKeys)
	}

	cfg := newBuildConfig(opts)
	size := uint32(n)

	segmentLength, segmentLengthMask, segmentCount, segmentCountLength, capacity := initBinaryFuseGeometry(size)

	alone := make([]uint32, capacity)
	t2count := make([]T, capacity)
	t2hash := make([]uint64, capacity)
	reverseOrder := make([]uint64, size+1)
	reverseOrder[size] = 1
	reverseH := make([]T, size)

	blockBits := 1
	for (uint32(1) << blockBits) < segmentCount {
		blockBits++
	}
	startPos := make([]uint, 1<<blockBits)

	seeds := newSeedSequence()

	var h012 [6]uint32
	var seed uint64
	var resolved uint32
	success := false

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		seed = seeds.next()

		for i := range startPos {
			startPos[i] = uint((uint64(i) * uint64(size)) >> blockBits)
		}
		for _, key := range keys {
			hash := mix(key, seed)
			segIdx := hash >> (64 - blockBits)
			for reverseOrder[startPos[segIdx]] != 0 {
				segIdx++
				segIdx &= (uint64(1) << blockBits) - 1
			}
			reverseOrder[startPos[segIdx]] = hash
			startPos[segIdx]++
		}

		hasError := false
		duplicates := uint32(0)

		for i := uint32(0); i < size; i++ {
			hash := reverseOrder[i]
			idx1, idx2, idx3 := binaryFuseIndices(hash, segmentLength, segmentLengthMask, segmentCountLength)

			t2count[idx1] += 4
			t2hash[idx1] ^= hash
			t2count[idx2] += 4
			t2count[idx2] ^= 1
			t2hash[idx2] ^= hash
			t2count[idx3] += 4
			t2count[idx3] ^= 2
			t2hash[idx3] ^= hash

			if t2hash[idx1]&t2hash[idx2]&t2hash[idx3] == 0 {
				if (t2hash[idx1] == 0 && t2count[idx1] == 8) ||
					(t2hash[idx2] == 0 && t2count[idx2] == 8) ||
					(t2hash[idx3] == 0 && t2count[idx3] == 8) {
					duplicates++
					t2count[idx1] -= 4
					t2hash[idx1] ^= hash
					t2count[idx2] -= 4
					t2count[idx2] ^= 1
					t2hash[idx2] ^= hash
					t2count[idx3] -= 4
					t2count[idx3] ^= 2
					t2hash[idx3] ^= hash
				}
			}

			if t2count[idx1] < 4 || t2count[idx2] < 4 || t2count[idx3] < 4 {
				hasError = true
			}
		}

		if hasError {
			resetBinaryFuseState(reverseOrder, t2count, t2hash, size)
			continue
		}

		qsize := uint32(0)
		for i := uint32(0); i < capacity; i++ {
			alone[qsize] = i
			if (t2count[i] >> 2) == 1 {
				qsize++
			}
		}

		var stacksize uint32
		for qsize > 0 {
			qsize--
			index := alone[qsize]
			if (t2count[index] >> 2) != 1 {
				continue
			}

			hash := t2hash[index]
			found := t2count[index] & 3
			reverseH[stacksize] = found
			reverseOrder[stacksize] = hash
			stacksize++

			idx1, idx2, idx3 := binaryFuseIndices(hash, segmentLength, segmentLengthMask, segmentCountLength)
			h012[1] = idx2
			h012[2] = idx3
			h012[3] = idx1
			h012[4] = h012[1]

			foundI := uint32(found)

			other1 := h012[foundI+1]
			alone[qsize] = other1
			if (t2count[other1] >> 2) == 2 {
				qsize++
			}
			t2count[other1] -= 4
			t2count[other1] ^= mod3(found + 1)
			t2hash[other1] ^= hash

			other2 := h012[foundI+2]
			alone[qsize] = other2
			if (t2count[other2] >> 2) == 2 {
				qsize++
			}
			t2count[other2] -= 4
			t2count[other2] ^= mod3(found + 2)
			t2hash[other2] ^= hash
		}

		if stacksize+duplicates == size {
			resolved = stacksize
			success = true
			break
		}

		resetBinaryFuseState(reverseOrder, t2count, t2hash, size)
	}

	if !success {
		return nil, fmt.Errorf("%w: binary fuse filter (n=%d) after %d attempts", ErrBuildFailed, n, cfg.maxAttempts)
	}

	fingerprints := make([]T, capacity)
	touched := make([]bool, capacity)
	for i := uint32(0); i < resolved; i++ {
		idx1, idx2, idx3 := binaryFuseIndices(reverseOrder[i], segmentLength, segmentLengthMask, segmentCountLength)
		touched[[3]uint32{idx1, idx2, idx3}[reverseH[i]]] = true
	}

	if cfg.randomFill {
		fillUntouched(fingerprints, touched)
	}

	for i := int(resolved) - 1; i >= 0; i-- {
		hash := reverseOrder[i]
		xor2 := T(fingerprint(hash))
		idx1, idx2, idx3 := binaryFuseIndices(hash, segmentLength, segmentLengthMask, segmentCountLength)
		found := uint32(reverseH[i])

		h012[0] = idx1
		h012[1] = idx2
		h012[2] = idx3
		h012[3] = h012[0]
		h012[4] = h012[1]

		target := h012[found]
		other1 := h012[found+1]
		other2 := h012[found+2]

		fingerprints[target] = xor2 ^ fingerprints[other1] ^ fingerprints[other2]
	}

	return &BinaryFuse[T]{
		seed:               seed,
		segmentLength:      segmentLength,
		segmentLengthMask:  segmentLengthMask,
		segmentCount:       segmentCount,
		segmentCountLength: segmentCountLength,
		fingerprints:       fingerprints,
		size:               n,
	}, nil
}

func resetBinaryFuseState[T fpWidth](reverseOrder []uint64, t2count []T, t2hash []uint64, n uint32) {
	clear(reverseOrder[:n])
	clear(t2count)
	clear(t2hash)
}
