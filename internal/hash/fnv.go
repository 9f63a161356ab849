package hash

import "hash/fnv"

// FNV64a returns the 64-bit FNV-1a hash of s.
// The value is stable across processes and platforms, so it is safe to use
// as a seed for persisted, deterministic generation.
func FNV64a(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
