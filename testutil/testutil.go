package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Vector returns a uniformly random hypervector.
func (r *RNG) Vector() hypervector.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	var words [hypervector.Words]uint64
	for i := range words {
		words[i] = r.rand.Uint64()
	}
	v, _ := hypervector.FromWords(words[:])
	return v
}

// Flip returns a copy of v with exactly n distinct bits inverted.
// n is clamped to hypervector.Width.
func (r *RNG) Flip(v hypervector.Vector, n int) hypervector.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, hypervector.Width)
	for _, i := range r.rand.Perm(hypervector.Width)[:n] {
		v.FlipBit(i)
	}
	return v
}

// FillUniform fills dst with random values in range [0, 1).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// Triples generates n distinct facts over the given number of entities and
// predicates. Symbols are named "e<i>" and "p<j>". It panics if the requested
// count exceeds the number of distinct combinations.
func (r *RNG) Triples(n, entities, predicates int) []model.Triple {
	if n > entities*entities*predicates {
		panic("testutil: not enough distinct triples")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[[3]int]struct{}, n)
	out := make([]model.Triple, 0, n)
	for len(out) < n {
		k := [3]int{r.rand.Intn(entities), r.rand.Intn(predicates), r.rand.Intn(entities)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, model.Triple{
			Subject:   fmt.Sprintf("e%d", k[0]),
			Predicate: fmt.Sprintf("p%d", k[1]),
			Object:    fmt.Sprintf("e%d", k[2]),
		})
	}
	return out
}
