package xorfuse

// peelSlot accumulates, for one fingerprint-array cell, how many keys
// currently hash to it (count) and the XOR of those keys' mixed hashes
// (mask). Once count drops to 1, mask holds exactly the hash of the one
// remaining key, which is what makes cheap degree-1 detection possible:
// no need to re-walk the key list to find out which key it is.
type peelSlot struct {
	count uint32
	mask  uint64
}

// peeledKey records a key's full hash and the cell it was peeled from,
// in the order the peeling loop dequeued it. Back-assignment walks this
// list in reverse so that every cell is assigned only after the cells
// its own keys still depend on have already been assigned.
type peeledKey struct {
	hash  uint64
	index uint32
}
