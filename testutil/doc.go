// Package testutil provides testing utilities for holograph.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random hypervectors, adding bounded
// bit noise, and generating synthetic triples.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	v := rng.Vector()             // uniform random hypervector
//	noisy := rng.Flip(v, 1000)    // exactly 1000 distinct bits inverted
//
// # Synthetic Facts
//
//	triples := rng.Triples(100, 20, 5)  // 100 facts over 20 entities, 5 predicates
package testutil
