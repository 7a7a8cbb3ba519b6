package benchmarks

import (
	"fmt"
	"testing"

	bab "github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"
	"github.com/jcalabro/xorfuse"
)

const (
	benchItems  = 1_000_000
	benchFPRate = 0.01
)

// Pre-generate test data to avoid measuring key generation.
var testKeys []uint64
var testKeysBytes [][]byte

func init() {
	testKeys = make([]uint64, benchItems)
	testKeysBytes = make([][]byte, benchItems)
	for i := range benchItems {
		testKeys[i] = uint64(i)*0x9e3779b97f4a7c15 + 1
		testKeysBytes[i] = []byte(fmt.Sprintf("key-%d", i))
	}
}

// ============================================================================
// Construction Benchmarks
// ============================================================================

func BenchmarkBuild_Xor8(b *testing.B) {
	for range b.N {
		if _, err := xorfuse.NewXor8(testKeys); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_Fuse8(b *testing.B) {
	for range b.N {
		if _, err := xorfuse.NewFuse8(testKeys); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_BinaryFuse8(b *testing.B) {
	for range b.N {
		if _, err := xorfuse.NewBinaryFuse8(testKeys); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_BitsAndBlooms(b *testing.B) {
	for range b.N {
		f := bab.NewWithEstimates(benchItems, benchFPRate)
		for _, k := range testKeysBytes {
			f.Add(k)
		}
	}
}

// ============================================================================
// Query Benchmarks
// ============================================================================

func BenchmarkQuery_Xor8(b *testing.B) {
	f, err := xorfuse.NewXor8(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkQuery_Xor16(b *testing.B) {
	f, err := xorfuse.NewXor16(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkQuery_Fuse8(b *testing.B) {
	f, err := xorfuse.NewFuse8(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkQuery_BinaryFuse8(b *testing.B) {
	f, err := xorfuse.NewBinaryFuse8(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkQuery_BinaryFuse16(b *testing.B) {
	f, err := xorfuse.NewBinaryFuse16(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkQuery_HashProxy(b *testing.B) {
	p, err := xorfuse.NewHashProxy(testKeysBytes, xorfuse.XXH3Bytes, xorfuse.NewBinaryFuse8)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		p.Contains(testKeysBytes[i%benchItems])
	}
}

func BenchmarkQuery_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	for _, k := range testKeysBytes {
		f.Add(k)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeysBytes[i%benchItems])
	}
}

func BenchmarkQuery_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	for _, k := range testKeysBytes {
		f.Add(k)
	}
	b.ResetTimer()
	for i := range b.N {
		f.Test(testKeysBytes[i%benchItems])
	}
}

func BenchmarkQuery_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	hashes := make([]uint64, benchItems)
	for i, k := range testKeysBytes {
		hashes[i] = xxhash.Sum64(k)
		f.Add(hashes[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.Has(hashes[i%benchItems])
	}
}

// ============================================================================
// Memory Allocation Benchmarks
// ============================================================================

func BenchmarkQueryAlloc_BinaryFuse8(b *testing.B) {
	f, err := xorfuse.NewBinaryFuse8(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		f.Contains(testKeys[i%benchItems])
	}
}

func BenchmarkBuildAlloc_BinaryFuse8(b *testing.B) {
	b.ReportAllocs()
	for range b.N {
		if _, err := xorfuse.NewBinaryFuse8(testKeys); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Space Comparison
// ============================================================================

func BenchmarkSpace_BinaryFuse8(b *testing.B) {
	f, err := xorfuse.NewBinaryFuse8(testKeys)
	if err != nil {
		b.Fatal(err)
	}
	data, err := f.MarshalBinary()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportMetric(float64(len(data)*8)/float64(f.Len()), "bits/entry")
}
