package hash

import (
	"hash"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the Castagnoli checksum of data, as stored in snapshot
// headers and sent as the S3 object checksum.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// NewCRC32C returns a streaming Castagnoli hash whose Sum32 equals CRC32C
// over everything written to it.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}
