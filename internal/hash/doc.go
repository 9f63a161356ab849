// Package hash holds the two hash functions whose output is persisted.
//
// CRC32C (Castagnoli) checksums snapshot bodies and blob uploads. The
// standard library picks the hardware instruction when the CPU has one.
//
//	sum := hash.CRC32C(body)
//
// FNV64a seeds symbol, role, and qualia vector generation. It must never
// change: snapshots and independently built stores rely on every process
// deriving the same vector for the same symbol.
package hash
