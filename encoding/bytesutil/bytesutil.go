// Package bytesutil provides small, allocation-conscious byte slice helpers
// used pervasively by SSZ encoding and consensus math (padding fixed-size
// fields, converting to/from uint64 in little-endian).
package bytesutil

import "encoding/binary"

// PadTo returns a copy of b padded with trailing zero bytes up to length l.
// If b is already >= l bytes, it is returned unmodified.
func PadTo(b []byte, l int) []byte {
	if len(b) >= l {
		return b
	}
	padded := make([]byte, l)
	copy(padded, b)
	return padded
}

// ToBytes32 copies b (truncated or zero-padded) into a fixed 32-byte array.
func ToBytes32(b []byte) [32]byte {
	var a [32]byte
	copy(a[:], b)
	return a
}

// ToBytes4 copies b (truncated or zero-padded) into a fixed 4-byte array.
func ToBytes4(b []byte) [4]byte {
	var a [4]byte
	copy(a[:], b)
	return a
}

// ToBytes48 copies b (truncated or zero-padded) into a fixed 48-byte array,
// the shape a BLS pubkey is keyed by in the state's pubkey->index cache.
func ToBytes48(b []byte) [48]byte {
	var a [48]byte
	copy(a[:], b)
	return a
}

// Bytes8 returns the little-endian 8-byte encoding of x.
func Bytes8(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}

// FromBytes8 decodes a little-endian 8-byte slice into a uint64. Shorter
// slices are treated as zero-padded.
func FromBytes8(b []byte) uint64 {
	padded := PadTo(b, 8)
	return binary.LittleEndian.Uint64(padded)
}

// SafeCopy2D returns a deep copy of a slice of byte slices, so mutating the
// result never aliases the source (used when cloning ring buffers and
// growable byte-slice fields for the CBS transient mode).
func SafeCopy2D(in [][]byte) [][]byte {
	if in == nil {
		return nil
	}
	out := make([][]byte, len(in))
	for i, b := range in {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

// Trunc32 returns the first 32 bytes of b, zero-padding if shorter.
func Trunc32(b []byte) []byte {
	return PadTo(b, 32)[:32]
}
