// Package persistence implements the binary snapshot format of a triple store.
//
// A snapshot is a fixed-size FileHeader followed by a payload. The payload is
// the body, optionally compressed with LZ4 or Zstd. The body holds four
// sections in order:
//
//	manifest   u32 length, codec-encoded store configuration
//	symbols    per symbol: u32 length, UTF-8 name, W-bit vector
//	triples    per triple: seq, field IDs, cell, truth, qualia, fingerprint
//	index      u64 length, serialized exact index
//
// The header carries the CRC32C of the uncompressed body. Decode verifies the
// header, the checksum, and every length before returning; any violation is
// reported as ErrCorrupt. All integers are little-endian.
package persistence
