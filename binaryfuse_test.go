package xorfuse

import (
	"errors"
	"testing"
)

func TestBinaryFuse8ContainsAllInsertedKeys(t *testing.T) {
	for _, n := range []int{2, 3, 5, 10, 100, 10_000} {
		keys := randomDistinctKeys(n)
		f, err := NewBinaryFuse8(keys)
		if err != nil {
			t.Fatalf("n=%d: NewBinaryFuse8: %v", n, err)
		}
		if f.Len() != n {
			t.Errorf("n=%d: Len() = %d, want %d", n, f.Len(), n)
		}
		for _, k := range keys {
			if !f.Contains(k) {
				t.Errorf("n=%d: Contains(%d) = false, want true", n, k)
			}
		}
	}
}

func TestBinaryFuseEmptyFilterRejectsEverything(t *testing.T) {
	f, err := NewBinaryFuse32(nil)
	if err != nil {
		t.Fatalf("NewBinaryFuse32(nil): %v", err)
	}
	for _, k := range []uint64{0, 1, 42} {
		if f.Contains(k) {
			t.Errorf("empty filter Contains(%d) = true, want false", k)
		}
	}
}

func TestBinaryFuseRejectsSingleKey(t *testing.T) {
	_, err := NewBinaryFuse8([]uint64{123})
	if !errors.Is(err, ErrTooFewKeys) {
		t.Fatalf("NewBinaryFuse8([one key]) error = %v, want ErrTooFewKeys", err)
	}
}

func TestBinaryFuseFalsePositiveRateByWidth(t *testing.T) {
	const n = 50_000
	keys := randomDistinctKeys(n)
	notKeys := randomDistinctKeys(2 * n)[n:]

	cases := []struct {
		name         string
		build        func([]uint64, ...BuildOption) (Filter, error)
		expectedRate float64
	}{
		{"BinaryFuse8", func(k []uint64, o ...BuildOption) (Filter, error) { return NewBinaryFuse8(k, o...) }, 1.0 / 256},
		{"BinaryFuse16", func(k []uint64, o ...BuildOption) (Filter, error) { return NewBinaryFuse16(k, o...) }, 1.0 / 65536},
	}

	const tolerance = 6

	for _, c := range cases {
		f, err := c.build(keys)
		if err != nil {
			t.Fatalf("%s: build: %v", c.name, err)
		}

		var falsePositives int
		for _, k := range notKeys {
			if f.Contains(k) {
				falsePositives++
			}
		}
		rate := float64(falsePositives) / float64(len(notKeys))
		if rate > c.expectedRate*tolerance {
			t.Errorf("%s: false positive rate %.6f exceeds %.6f", c.name, rate, c.expectedRate*tolerance)
		}
	}
}

func TestBinaryFuseDeterministicConstruction(t *testing.T) {
	keys := randomDistinctKeys(5000)

	a, err := NewBinaryFuse16(keys)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	b, err := NewBinaryFuse16(keys)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	abytes, _ := a.MarshalBinary()
	bbytes, _ := b.MarshalBinary()
	if string(abytes) != string(bbytes) {
		t.Error("two builds over the same keys produced different filters")
	}
}

func TestBinaryFuseUniformRandomFillPreservesMembership(t *testing.T) {
	keys := randomDistinctKeys(5000)
	f, err := NewBinaryFuse32(keys, WithUniformRandomFill())
	if err != nil {
		t.Fatalf("NewBinaryFuse32: %v", err)
	}
	for _, k := range keys {
		if !f.Contains(k) {
			t.Errorf("Contains(%d) = false after uniform-random fill, want true", k)
		}
	}
}

func TestBinaryFuseIndicesInRange(t *testing.T) {
	segmentLength, segmentLengthMask, _, segmentCountLength, capacity := initBinaryFuseGeometry(10_000)
	for i := uint64(0); i < 10_000; i++ {
		h0, h1, h2 := binaryFuseIndices(mix(i, 0x123), segmentLength, segmentLengthMask, segmentCountLength)
		for _, h := range []uint32{h0, h1, h2} {
			if h >= capacity {
				t.Fatalf("index %d out of range [0, %d)", h, capacity)
			}
		}
	}
}
