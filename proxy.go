package xorfuse

import (
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// HashFunc reduces an arbitrary key type down to the uint64 this
// package's filters operate on.
type HashFunc[K any] func(key K) uint64

// HashProxy adapts any key type K to a Filter[K]-shaped API by hashing
// keys down to uint64 before delegating to an underlying uint64-keyed
// filter. This is the same role the xorf crate's HashProxy plays: the
// filter itself never needs to know about string keys, struct keys, or
// anything else — only the proxy's HashFunc does.
type HashProxy[K any, F Filter] struct {
	hash   HashFunc[K]
	filter F
}

// NewHashProxy hashes keys with hash and passes the result to build,
// then wraps the resulting filter for K-keyed lookups. build is
// typically one of this package's NewXor8, NewFuse16, NewBinaryFuse32,
// and so on. Keys whose hashes collide are passed to build once, so the
// wrapped filter's Len counts distinct hashes.
func NewHashProxy[K any, F Filter](keys []K, hash HashFunc[K], build func([]uint64, ...BuildOption) (F, error), opts ...BuildOption) (*HashProxy[K, F], error) {
	hashed := make([]uint64, 0, len(keys))
	seen := make(map[uint64]struct{}, len(keys))
	for _, k := range keys {
		h := hash(k)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hashed = append(hashed, h)
	}

	filter, err := build(hashed, opts...)
	if err != nil {
		return nil, err
	}

	return &HashProxy[K, F]{hash: hash, filter: filter}, nil
}

// Contains reports whether key might be a member of the set the
// wrapped filter was built from.
func (p *HashProxy[K, F]) Contains(key K) bool {
	return p.filter.Contains(p.hash(key))
}

// Len returns the number of keys the wrapped filter was built from.
func (p *HashProxy[K, F]) Len() int {
	return p.filter.Len()
}

// XXH3Bytes hashes data with XXH3, a fast non-cryptographic hash
// suitable for deriving the uint64 keys HashProxy needs from arbitrary
// byte slices.
func XXH3Bytes(data []byte) uint64 { return xxh3.Hash(data) }

// XXH3String hashes s with xxh3 without allocating a []byte copy.
func XXH3String(s string) uint64 { return xxh3.HashString(s) }

// XXHashBytes hashes data with xxhash, provided as an alternative to
// XXH3Bytes with different speed/collision-resistance tradeoffs.
func XXHashBytes(data []byte) uint64 { return xxhash.Sum64(data) }

// XXHashString hashes s with xxhash without allocating a []byte copy.
func XXHashString(s string) uint64 { return xxhash.Sum64String(s) }
