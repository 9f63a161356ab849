// Package hypervector provides the fixed-width binary vectors used to represent
// symbols, roles, and composite triple fingerprints.
//
// A Vector is Width bits packed into Words uint64 words, little-endian bit order
// within each word. Distance is computed using Hamming distance (popcount of XOR),
// which maps to the POPCNT instruction on modern CPUs.
//
// Vectors are values: assigning or passing a Vector copies it, so a Vector handed
// out by the codebook can never be mutated by the caller.
package hypervector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
)

const (
	// Width is the number of meaningful bits in every Vector.
	Width = 10000

	// Words is the number of uint64 words backing a Vector.
	Words = (Width + 63) / 64

	// Bytes is the serialized size of a Vector.
	Bytes = Words * 8

	// lastWordMask keeps the Width%64 meaningful bits of the final word.
	lastWordMask = (uint64(1) << (Width % 64)) - 1
)

// ErrSize is returned when decoding a byte slice of the wrong length.
var ErrSize = errors.New("hypervector: invalid encoded size")

// Vector is a fixed-width binary hypervector.
// Padding bits in the final word are always zero.
type Vector [Words]uint64

// Zero returns the all-zero vector.
func Zero() Vector {
	return Vector{}
}

// Random fills a vector from the given PRNG. The same generator state always
// yields the same vector.
func Random(r *rand.Rand) Vector {
	var v Vector
	for i := range v {
		v[i] = r.Uint64()
	}
	v.clearPadding()
	return v
}

// FromWords builds a vector from raw words. Padding bits are zeroed.
func FromWords(words []uint64) (Vector, error) {
	if len(words) != Words {
		return Vector{}, fmt.Errorf("%w: got %d words, want %d", ErrSize, len(words), Words)
	}
	var v Vector
	copy(v[:], words)
	v.clearPadding()
	return v, nil
}

// Bit reports whether bit i is set.
func (v *Vector) Bit(i int) bool {
	return v[i/64]&(1<<(uint(i)%64)) != 0
}

// SetBit sets bit i to b.
func (v *Vector) SetBit(i int, b bool) {
	if b {
		v[i/64] |= 1 << (uint(i) % 64)
	} else {
		v[i/64] &^= 1 << (uint(i) % 64)
	}
}

// FlipBit inverts bit i.
func (v *Vector) FlipBit(i int) {
	v[i/64] ^= 1 << (uint(i) % 64)
}

// PopCount returns the number of set bits.
func (v *Vector) PopCount() int {
	var n int
	for _, w := range v {
		n += bits.OnesCount64(w)
	}
	return n
}

// PopCountRange returns the number of set bits in words [from, to).
func (v *Vector) PopCountRange(from, to int) int {
	var n int
	for _, w := range v[from:to] {
		n += bits.OnesCount64(w)
	}
	return n
}

// MarshalBinary encodes the vector as Bytes little-endian bytes.
func (v Vector) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(make([]byte, 0, Bytes))
}

// AppendBinary appends the little-endian encoding of v to b.
func (v Vector) AppendBinary(b []byte) ([]byte, error) {
	for _, w := range v {
		b = binary.LittleEndian.AppendUint64(b, w)
	}
	return b, nil
}

// UnmarshalBinary decodes a vector produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) != Bytes {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSize, len(data), Bytes)
	}
	for i := range v {
		v[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	if v[Words-1]&^lastWordMask != 0 {
		return fmt.Errorf("%w: padding bits set", ErrSize)
	}
	return nil
}

func (v *Vector) clearPadding() {
	v[Words-1] &= lastWordMask
}

// HammingDistance counts the bit positions where a and b differ.
func HammingDistance(a, b *Vector) int {
	var dist int
	for i := range a {
		dist += bits.OnesCount64(a[i] ^ b[i])
	}
	return dist
}

// NormalizedHammingDistance returns the Hamming distance divided by Width.
func NormalizedHammingDistance(a, b *Vector) float64 {
	return float64(HammingDistance(a, b)) / Width
}

// Similarity returns 1 - hamming(a,b)/Width, in [0, 1].
// 1.0 = identical, ~0.5 = unrelated random vectors, 0.0 = complementary.
func Similarity(a, b *Vector) float64 {
	return 1 - NormalizedHammingDistance(a, b)
}
