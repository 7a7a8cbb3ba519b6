package xorfuse

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// serializeVersion is the current serialization format version for all
// three filter families.
const serializeVersion byte = 1

// fingerprintWidth returns the byte width of T (1, 2, or 4).
func fingerprintWidth[T fpWidth]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// marshalFingerprints encodes fp as a little-endian byte slice, one
// T-sized element at a time.
func marshalFingerprints[T fpWidth](fp []T) []byte {
	width := fingerprintWidth[T]()
	buf := make([]byte, len(fp)*width)
	switch width {
	case 1:
		for i, v := range fp {
			buf[i] = byte(v)
		}
	case 2:
		for i, v := range fp {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		}
	case 4:
		for i, v := range fp {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		}
	}
	return buf
}

// unmarshalFingerprints decodes a little-endian byte slice produced by
// marshalFingerprints back into a []T.
func unmarshalFingerprints[T fpWidth](data []byte) ([]T, error) {
	width := fingerprintWidth[T]()
	if len(data)%width != 0 {
		return nil, fmt.Errorf("%w: fingerprint payload length %d is not a multiple of width %d", ErrInvalidData, len(data), width)
	}

	fp := make([]T, len(data)/width)
	switch width {
	case 1:
		for i := range fp {
			fp[i] = T(data[i])
		}
	case 2:
		for i := range fp {
			fp[i] = T(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case 4:
		for i := range fp {
			fp[i] = T(binary.LittleEndian.Uint32(data[i*4:]))
		}
	}
	return fp, nil
}

// xorFuseHeaderSize is the header layout shared by Xor and Fuse:
// version(1) + fpWidth(1) + seed(8) + blockOrSegmentLength(4) + size(4).
const xorFuseHeaderSize = 18

// MarshalBinary serializes the filter as version + fingerprint width +
// seed + block length + key count, followed by the raw fingerprint
// array.
func (f *Xor[T]) MarshalBinary() ([]byte, error) {
	header := make([]byte, xorFuseHeaderSize)
	header[0] = serializeVersion
	header[1] = byte(fingerprintWidth[T]())
	binary.LittleEndian.PutUint64(header[2:10], f.seed)
	binary.LittleEndian.PutUint32(header[10:14], f.blockLength)
	binary.LittleEndian.PutUint32(header[14:18], uint32(f.size))
	return append(header, marshalFingerprints(f.fingerprints)...), nil
}

func unmarshalXor[T fpWidth](data []byte) (*Xor[T], error) {
	if len(data) < xorFuseHeaderSize {
		return nil, fmt.Errorf("%w: xor data shorter than header (%d bytes)", ErrInvalidData, len(data))
	}
	if data[0] != serializeVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, data[0], serializeVersion)
	}
	if width := fingerprintWidth[T](); int(data[1]) != width {
		return nil, fmt.Errorf("%w: data was written with width %d, expected %d", ErrFingerprintWidthMismatch, data[1], width)
	}

	seed := binary.LittleEndian.Uint64(data[2:10])
	blockLength := binary.LittleEndian.Uint32(data[10:14])
	size := binary.LittleEndian.Uint32(data[14:18])

	fp, err := unmarshalFingerprints[T](data[xorFuseHeaderSize:])
	if err != nil {
		return nil, err
	}
	if want := int(blockLength) * 3; len(fp) != want {
		return nil, fmt.Errorf("%w: got %d fingerprints, want %d for blockLength %d", ErrInvalidData, len(fp), want, blockLength)
	}

	return &Xor[T]{seed: seed, blockLength: blockLength, fingerprints: fp, size: int(size)}, nil
}

// UnmarshalXor8 deserializes an 8-bit xor filter produced by
// (*Xor8).MarshalBinary.
func UnmarshalXor8(data []byte) (*Xor8, error) { return unmarshalXor[uint8](data) }

// UnmarshalXor16 deserializes a 16-bit xor filter produced by
// (*Xor16).MarshalBinary.
func UnmarshalXor16(data []byte) (*Xor16, error) { return unmarshalXor[uint16](data) }

// UnmarshalXor32 deserializes a 32-bit xor filter produced by
// (*Xor32).MarshalBinary.
func UnmarshalXor32(data []byte) (*Xor32, error) { return unmarshalXor[uint32](data) }

// MarshalBinary serializes the filter as version + fingerprint width +
// seed + segment length + key count, followed by the raw fingerprint
// array.
func (f *Fuse[T]) MarshalBinary() ([]byte, error) {
	header := make([]byte, xorFuseHeaderSize)
	header[0] = serializeVersion
	header[1] = byte(fingerprintWidth[T]())
	binary.LittleEndian.PutUint64(header[2:10], f.seed)
	binary.LittleEndian.PutUint32(header[10:14], f.segmentLength)
	binary.LittleEndian.PutUint32(header[14:18], uint32(f.size))
	return append(header, marshalFingerprints(f.fingerprints)...), nil
}

func unmarshalFuse[T fpWidth](data []byte) (*Fuse[T], error) {
	if len(data) < xorFuseHeaderSize {
		return nil, fmt.Errorf("%w: fuse data shorter than header (%d bytes)", ErrInvalidData, len(data))
	}
	if data[0] != serializeVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, data[0], serializeVersion)
	}
	if width := fingerprintWidth[T](); int(data[1]) != width {
		return nil, fmt.Errorf("%w: data was written with width %d, expected %d", ErrFingerprintWidthMismatch, data[1], width)
	}

	seed := binary.LittleEndian.Uint64(data[2:10])
	segmentLength := binary.LittleEndian.Uint32(data[10:14])
	size := binary.LittleEndian.Uint32(data[14:18])

	fp, err := unmarshalFingerprints[T](data[xorFuseHeaderSize:])
	if err != nil {
		return nil, err
	}
	if want := int(segmentLength) * fuseSlots; len(fp) != want {
		return nil, fmt.Errorf("%w: got %d fingerprints, want %d for segmentLength %d", ErrInvalidData, len(fp), want, segmentLength)
	}

	return &Fuse[T]{seed: seed, segmentLength: segmentLength, fingerprints: fp, size: int(size)}, nil
}

// UnmarshalFuse8 deserializes an 8-bit fuse filter produced by
// (*Fuse8).MarshalBinary.
func UnmarshalFuse8(data []byte) (*Fuse8, error) { return unmarshalFuse[uint8](data) }

// UnmarshalFuse16 deserializes a 16-bit fuse filter produced by
// (*Fuse16).MarshalBinary.
func UnmarshalFuse16(data []byte) (*Fuse16, error) { return unmarshalFuse[uint16](data) }

// UnmarshalFuse32 deserializes a 32-bit fuse filter produced by
// (*Fuse32).MarshalBinary.
func UnmarshalFuse32(data []byte) (*Fuse32, error) { return unmarshalFuse[uint32](data) }

// binaryFuseHeaderSize is BinaryFuse's header layout: version(1) +
// fpWidth(1) + seed(8) + segmentLength(4) + segmentLengthMask(4) +
// segmentCount(4) + segmentCountLength(4) + size(4).
const binaryFuseHeaderSize = 30

// MarshalBinary serializes the filter as version + fingerprint width +
// seed + segment geometry + key count, followed by the raw fingerprint
// array.
func (f *BinaryFuse[T]) MarshalBinary() ([]byte, error) {
	header := make([]byte, binaryFuseHeaderSize)
	header[0] = serializeVersion
	header[1] = byte(fingerprintWidth[T]())
	binary.LittleEndian.PutUint64(header[2:10], f.seed)
	binary.LittleEndian.PutUint32(header[10:14], f.segmentLength)
	binary.LittleEndian.PutUint32(header[14:18], f.segmentLengthMask)
	binary.LittleEndian.PutUint32(header[18:22], f.segmentCount)
	binary.LittleEndian.PutUint32(header[22:26], f.segmentCountLength)
	binary.LittleEndian.PutUint32(header[26:30], uint32(f.size))
	return append(header, marshalFingerprints(f.fingerprints)...), nil
}

func unmarshalBinaryFuse[T fpWidth](data []byte) (*BinaryFuse[T], error) {
	if len(data) < binaryFuseHeaderSize {
		return nil, fmt.Errorf("%w: binary fuse data shorter than header (%d bytes)", ErrInvalidData, len(data))
	}
	if data[0] != serializeVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, data[0], serializeVersion)
	}
	if width := fingerprintWidth[T](); int(data[1]) != width {
		return nil, fmt.Errorf("%w: data was written with width %d, expected %d", ErrFingerprintWidthMismatch, data[1], width)
	}

	seed := binary.LittleEndian.Uint64(data[2:10])
	segmentLength := binary.LittleEndian.Uint32(data[10:14])
	segmentLengthMask := binary.LittleEndian.Uint32(data[14:18])
	segmentCount := binary.LittleEndian.Uint32(data[18:22])
	segmentCountLength := binary.LittleEndian.Uint32(data[22:26])
	size := binary.LittleEndian.Uint32(data[26:30])

	fp, err := unmarshalFingerprints[T](data[binaryFuseHeaderSize:])
	if err != nil {
		return nil, err
	}
	if want := int(segmentCount+binaryFuseArity-1) * int(segmentLength); len(fp) != want {
		return nil, fmt.Errorf("%w: got %d fingerprints, want %d for this segment geometry", ErrInvalidData, len(fp), want)
	}

	return &BinaryFuse[T]{
		seed:               seed,
		segmentLength:      segmentLength,
		segmentLengthMask:  segmentLengthMask,
		segmentCount:       segmentCount,
		segmentCountLength: segmentCountLength,
		fingerprints:       fp,
		size:               int(size),
	}, nil
}

// UnmarshalBinaryFuse8 deserializes an 8-bit binary fuse filter
// produced by (*BinaryFuse8).MarshalBinary.
func UnmarshalBinaryFuse8(data []byte) (*BinaryFuse8, error) { return unmarshalBinaryFuse[uint8](data) }

// UnmarshalBinaryFuse16 deserializes a 16-bit binary fuse filter
// produced by (*BinaryFuse16).MarshalBinary.
func UnmarshalBinaryFuse16(data []byte) (*BinaryFuse16, error) {
	return unmarshalBinaryFuse[uint16](data)
}

// UnmarshalBinaryFuse32 deserializes a 32-bit binary fuse filter
// produced by (*BinaryFuse32).MarshalBinary.
func UnmarshalBinaryFuse32(data []byte) (*BinaryFuse32, error) {
	return unmarshalBinaryFuse[uint32](data)
}
