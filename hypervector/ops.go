package hypervector

import (
	"math/bits"
	"math/rand/v2"
)

// Bind associates two vectors via XOR. The operation is its own inverse,
// commutative, and associative: Bind(Bind(a, b), b) == a.
func Bind(a, b Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Bundle returns the per-bit majority vote of the given vectors.
// Ties (possible with an even count) resolve to 1. Bundling a single vector
// returns it unchanged; bundling nothing returns the zero vector.
func Bundle(vs ...Vector) Vector {
	switch len(vs) {
	case 0:
		return Vector{}
	case 1:
		return vs[0]
	}

	var counts [Width]uint16
	for vi := range vs {
		v := &vs[vi]
		for w, word := range v {
			base := w * 64
			for word != 0 {
				tz := bits.TrailingZeros64(word)
				counts[base+tz]++
				word &= word - 1
			}
		}
	}

	// A bit wins when its count reaches half of the inputs (rounded up),
	// which makes exact ties resolve to 1.
	need := uint16((len(vs) + 1) / 2)
	var out Vector
	for i, c := range counts {
		if c >= need {
			out[i/64] |= 1 << (uint(i) % 64)
		}
	}
	return out
}

// Balance flips bits of v, chosen by r, until exactly Width/2 bits are set.
// The result is a pure function of v and the generator state.
func Balance(v Vector, r *rand.Rand) Vector {
	ones := v.PopCount()
	target := Width / 2
	for ones != target {
		i := r.IntN(Width)
		bit := v.Bit(i)
		if ones > target && bit {
			v.SetBit(i, false)
			ones--
		} else if ones < target && !bit {
			v.SetBit(i, true)
			ones++
		}
	}
	return v
}
