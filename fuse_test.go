package xorfuse

import "testing"

// fuse's segmented construction needs many more keys than xor or
// binary fuse to reliably find a peelable assignment; spec-sized tests
// use tens of thousands of keys rather than the handful xor_test.go
// exercises.
const fuseTestKeyCount = 50_000

func TestFuse8ContainsAllInsertedKeys(t *testing.T) {
	keys := randomDistinctKeys(fuseTestKeyCount)
	f, err := NewFuse8(keys)
	if err != nil {
		t.Fatalf("NewFuse8: %v", err)
	}
	if f.Len() != len(keys) {
		t.Errorf("Len() = %d, want %d", f.Len(), len(keys))
	}
	for _, k := range keys {
		if !f.Contains(k) {
			t.Errorf("Contains(%d) = false, want true", k)
		}
	}
}

func TestFuseEmptyFilterRejectsEverything(t *testing.T) {
	f, err := NewFuse16(nil)
	if err != nil {
		t.Fatalf("NewFuse16(nil): %v", err)
	}
	for _, k := range []uint64{0, 1, 42} {
		if f.Contains(k) {
			t.Errorf("empty filter Contains(%d) = true, want false", k)
		}
	}
}

func TestFuseFalsePositiveRate(t *testing.T) {
	keys := randomDistinctKeys(fuseTestKeyCount)
	notKeys := randomDistinctKeys(2 * fuseTestKeyCount)[fuseTestKeyCount:]

	f, err := NewFuse8(keys)
	if err != nil {
		t.Fatalf("NewFuse8: %v", err)
	}

	var falsePositives int
	for _, k := range notKeys {
		if f.Contains(k) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(len(notKeys))
	if rate > (1.0/256)*6 {
		t.Errorf("false positive rate %.6f too high for an 8-bit fingerprint", rate)
	}
}

func TestFuseDeterministicConstruction(t *testing.T) {
	keys := randomDistinctKeys(fuseTestKeyCount)

	a, err := NewFuse16(keys)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	b, err := NewFuse16(keys)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	abytes, _ := a.MarshalBinary()
	bbytes, _ := b.MarshalBinary()
	if string(abytes) != string(bbytes) {
		t.Error("two builds over the same keys produced different filters")
	}
}

func TestFuseIndicesSpanThreeAdjacentSegments(t *testing.T) {
	segmentLength := uint32(64)
	for i := uint64(0); i < 10_000; i++ {
		h0, h1, h2 := fuseIndices(mix(i, 0xdef), segmentLength)
		seg0 := h0 / segmentLength
		seg1 := h1 / segmentLength
		seg2 := h2 / segmentLength
		if seg1 != seg0+1 || seg2 != seg0+2 {
			t.Fatalf("segments %d,%d,%d are not three consecutive segments", seg0, seg1, seg2)
		}
	}
}
