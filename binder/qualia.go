package binder

import (
	"math/rand/v2"

	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/internal/hash"
	"github.com/hupe1980/holograph/model"
)

// quadrantBits is the number of bits each qualia axis owns.
const quadrantBits = hypervector.Width / 4

// qualiaThresholds holds one fixed random threshold per bit. Bit i is set
// when the value of its axis exceeds qualiaThresholds[i], so the expected
// distance between two encodings grows linearly with the axis difference.
var qualiaThresholds = func() [hypervector.Width]float32 {
	var out [hypervector.Width]float32
	rng := rand.New(rand.NewPCG(hash.FNV64a("qualia"), roleStream))
	for i := range out {
		out[i] = rng.Float32()
	}
	return out
}()

// EncodeQualia maps four values in [0,1] to a hypervector by thresholded
// random projection, one quadrant of the vector per axis.
// Values are clamped to [0,1].
func EncodeQualia(q model.Qualia) hypervector.Vector {
	var v hypervector.Vector
	for axis, val := range q.Axes() {
		x := float32(min(max(val, 0), 1))
		base := axis * quadrantBits
		for i := base; i < base+quadrantBits; i++ {
			if x > qualiaThresholds[i] {
				v.SetBit(i, true)
			}
		}
	}
	return v
}
