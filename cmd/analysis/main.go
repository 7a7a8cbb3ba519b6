// Command analysis reports construction and space statistics for the
// xorfuse filter variants: bits per entry, measured false positive
// rate, and the fraction of fingerprint cells that construction left
// untouched (and which uniform-random fill, if enabled, would
// otherwise have randomized).
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/jcalabro/xorfuse"
)

func main() {
	variant := flag.String("variant", "binaryfuse8", "filter variant: xor8, xor16, xor32, fuse8, fuse16, fuse32, binaryfuse8, binaryfuse16, binaryfuse32")
	n := flag.Int("n", 1_000_000, "number of keys to build the filter from")
	trials := flag.Int("trials", 1_000_000, "number of non-member lookups used to measure the false positive rate")
	flag.Parse()

	if err := run(*variant, *n, *trials); err != nil {
		fmt.Fprintln(os.Stderr, "analysis:", err)
		os.Exit(1)
	}
}

func run(variant string, n, trials int) error {
	keys := randomKeys(n)

	f, bitsPerEntry, err := build(variant, keys)
	if err != nil {
		return fmt.Errorf("building %s over %d keys: %w", variant, n, err)
	}

	fpRate := measureFalsePositiveRate(f, keys, trials)
	zeroFraction := measuredZeroFraction(f)

	fmt.Printf("variant:            %s\n", variant)
	fmt.Printf("keys:               %d\n", n)
	fmt.Printf("bits per entry:     %.3f\n", bitsPerEntry)
	fmt.Printf("false positive rate: %.6f\n", fpRate)
	fmt.Printf("zero-cell fraction:  %.4f\n", zeroFraction)
	return nil
}

// measuredZeroFraction reports the fraction of f's fingerprint-array
// cells holding zero (a proxy for the cells construction left
// untouched), via the ZeroFraction method every filter type in this
// package implements.
func measuredZeroFraction(f xorfuse.Filter) float64 {
	reporter, ok := any(f).(interface{ ZeroFraction() float64 })
	if !ok {
		return 0
	}
	return reporter.ZeroFraction()
}

// build constructs the named variant and reports the resulting bits
// per entry (serialized filter size, header included, divided by key
// count).
func build(variant string, keys []uint64) (xorfuse.Filter, float64, error) {
	switch variant {
	case "xor8":
		f, err := xorfuse.NewXor8(keys)
		return measuredFilter(f, err)
	case "xor16":
		f, err := xorfuse.NewXor16(keys)
		return measuredFilter(f, err)
	case "xor32":
		f, err := xorfuse.NewXor32(keys)
		return measuredFilter(f, err)
	case "fuse8":
		f, err := xorfuse.NewFuse8(keys)
		return measuredFilter(f, err)
	case "fuse16":
		f, err := xorfuse.NewFuse16(keys)
		return measuredFilter(f, err)
	case "fuse32":
		f, err := xorfuse.NewFuse32(keys)
		return measuredFilter(f, err)
	case "binaryfuse8":
		f, err := xorfuse.NewBinaryFuse8(keys)
		return measuredFilter(f, err)
	case "binaryfuse16":
		f, err := xorfuse.NewBinaryFuse16(keys)
		return measuredFilter(f, err)
	case "binaryfuse32":
		f, err := xorfuse.NewBinaryFuse32(keys)
		return measuredFilter(f, err)
	default:
		return nil, 0, fmt.Errorf("unknown variant %q", variant)
	}
}

// measuredFilter wraps a build result, reporting the serialized size
// of the filter as bits per entry.
func measuredFilter[F xorfuse.Filter](f F, err error) (xorfuse.Filter, float64, error) {
	if err != nil {
		return nil, 0, err
	}
	marshaler, ok := any(f).(interface{ MarshalBinary() ([]byte, error) })
	if !ok || f.Len() == 0 {
		return f, 0, nil
	}
	data, err := marshaler.MarshalBinary()
	if err != nil {
		return nil, 0, err
	}
	return f, float64(len(data)*8) / float64(f.Len()), nil
}

func randomKeys(n int) []uint64 {
	r := rand.New(rand.NewPCG(1, 2))
	seen := make(map[uint64]bool, n)
	keys := make([]uint64, 0, n)
	for len(keys) < n {
		k := r.Uint64()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func measureFalsePositiveRate(f xorfuse.Filter, keys []uint64, trials int) float64 {
	present := make(map[uint64]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	r := rand.New(rand.NewPCG(3, 4))
	var falsePositives, tested int
	for tested < trials {
		k := r.Uint64()
		if present[k] {
			continue
		}
		tested++
		if f.Contains(k) {
			falsePositives++
		}
	}
	if tested == 0 {
		return 0
	}
	return float64(falsePositives) / float64(tested)
}
