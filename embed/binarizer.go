package embed

import (
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/holograph/hypervector"
)

const (
	// DefaultFanIn is the number of input dimensions feeding each output bit.
	DefaultFanIn = 64

	binarizerStream = 0x62696e6172697a65 // "binarize"
	defaultSeed     = 0x686f6c6f         // "holo"
)

// Binarizer maps dense embeddings to hypervectors with a sparse random
// projection. Output bit i is the sign of a fixed signed sum over FanIn
// input dimensions; a zero sum falls back to a fixed seeded bit, so inputs
// that leave a bit untouched still produce balanced vectors.
type Binarizer struct {
	dims     int
	fanIn    int
	taps     []uint16
	signs    []bool
	fallback hypervector.Vector
}

// BinarizerOptions configures a Binarizer.
type BinarizerOptions struct {
	FanIn int
	Seed  uint64
}

// NewBinarizer creates a binarizer for dims-dimensional embeddings.
// The projection is a pure function of dims and the seed.
func NewBinarizer(dims int, optFns ...func(*BinarizerOptions)) *Binarizer {
	opts := BinarizerOptions{FanIn: DefaultFanIn, Seed: defaultSeed}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FanIn < 1 {
		opts.FanIn = 1
	}
	if dims < 1 || dims > 1<<16 {
		panic(fmt.Sprintf("embed: invalid binarizer dimensions %d", dims))
	}

	r := rand.New(rand.NewPCG(opts.Seed, binarizerStream))
	n := hypervector.Width * opts.FanIn
	b := &Binarizer{
		dims:  dims,
		fanIn: opts.FanIn,
		taps:  make([]uint16, n),
		signs: make([]bool, n),
	}
	for i := range n {
		b.taps[i] = uint16(r.IntN(dims))
		b.signs[i] = r.Uint64()&1 == 1
	}
	b.fallback = hypervector.Random(r)
	return b
}

// Dimensions returns the expected embedding size.
func (b *Binarizer) Dimensions() int {
	return b.dims
}

// Binarize projects emb onto a hypervector.
func (b *Binarizer) Binarize(emb []float32) (hypervector.Vector, error) {
	if len(emb) != b.dims {
		return hypervector.Vector{}, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), b.dims)
	}

	var v hypervector.Vector
	for i := range hypervector.Width {
		var sum float32
		base := i * b.fanIn
		for k := range b.fanIn {
			x := emb[b.taps[base+k]]
			if b.signs[base+k] {
				sum -= x
			} else {
				sum += x
			}
		}
		switch {
		case sum > 0:
			v.SetBit(i, true)
		case sum == 0:
			v.SetBit(i, b.fallback.Bit(i))
		}
	}
	return v, nil
}
