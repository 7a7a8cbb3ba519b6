// Package xorfuse provides xor, fuse, and binary fuse filters: compact
// probabilistic set-membership data structures with no false negatives
// and a tunable false positive rate.
//
// All three families are built once from a fixed set of keys and never
// modified afterward — there is no Add, Delete, or Merge. In exchange
// for giving up mutability, they use noticeably less memory per key
// than a bloom filter at the same false positive rate, and a query
// touches at most three fingerprint cells.
//
// # Architecture
//
// Construction works by finding a "peeling order" for the keys: an
// order in which each key, in turn, has at least one of its three
// hashed fingerprint-array positions that no other remaining key also
// maps to. Keys are peeled off a degree-1 queue until none remain (the
// "2-core" of the key/position hypergraph is empty), then assigned
// fingerprint values in reverse peeling order so that every key's XOR
// invariant holds by construction. If a particular seed doesn't yield
// a peelable assignment — which happens with low but non-zero
// probability — construction retries with the next seed in a
// deterministic SplitMix64 sequence.
//
// # Implementations
//
// [Xor8], [Xor16], and [Xor32] implement the original 3-hash xor
// filter (Graf & Lemire, 2019): three equal-sized blocks, one hashed
// position per block.
//
// [Fuse8], [Fuse16], and [Fuse32] implement the segmented "fuse"
// construction: a single fingerprint array divided into overlapping
// 3-wide windows, which tolerates a smaller overhead factor but needs
// a larger minimum key count (hundreds of thousands, not tens) to reliably
// find a peelable assignment.
//
// [BinaryFuse8], [BinaryFuse16], and [BinaryFuse32] implement the
// binary fuse construction: the same segmented idea as fuse, but with
// geometry chosen so segment boundaries align to the two hash-derived
// secondary positions via a single 128-bit multiply, giving both lower
// space overhead and faster construction than fuse at any key count
// above 1.
//
// # Choosing a variant and width
//
//	// 8-bit fingerprints: ~0.4% false positive rate, least memory.
//	f, err := xorfuse.NewBinaryFuse8(keys)
//
//	// 16-bit fingerprints: ~0.0015% false positive rate.
//	f, err := xorfuse.NewBinaryFuse16(keys)
//
// BinaryFuse is the best default for most workloads: it has no lower
// bound on key count beyond 2, and converges faster and smaller than
// Fuse or Xor. Use [Xor8]/[Xor16]/[Xor32] when a smaller, simpler
// construction is preferable for very small key counts, or [Fuse8]/
// [Fuse16]/[Fuse32] to match an existing on-disk fuse-filter format.
//
// # Non-uint64 keys
//
// All three families operate on uint64 keys. [HashProxy] adapts an
// arbitrary key type by hashing it down to uint64 before handing it to
// one of the New* constructors; [XXH3Bytes], [XXH3String],
// [XXHashBytes], and [XXHashString] are ready-made [HashFunc]s.
//
//	proxy, err := xorfuse.NewHashProxy(keys, xorfuse.XXH3String, xorfuse.NewBinaryFuse8)
//	proxy.Contains("some-key")
//
// # False Positive Rate
//
// For an f-bit fingerprint, the false positive rate is approximately
// 2^-f, independent of the number of keys (unlike a bloom filter,
// whose false positive rate depends on how full it is). An 8-bit
// fingerprint gives roughly 0.39%, 16-bit roughly 0.0015%, and 32-bit
// is far below anything worth measuring in practice.
//
// # Thread Safety
//
// A constructed filter of any variant is read-only and safe for
// unsynchronized concurrent [Filter.Contains] calls from multiple
// goroutines — there is no mutable state to race on.
//
// # References
//
//   - Xor Filters: Faster and Smaller Than Bloom and Xor Filters:
//     https://arxiv.org/abs/1912.08258
//   - Binary Fuse Filters: Fast and Smaller Than Xor Filters:
//     https://arxiv.org/abs/2201.01174
package xorfuse
