package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies snapshot files (ASCII: "HOLO").
	MagicNumber = 0x484F4C4F
	// Version is the current file format version.
	Version = 0x00010000
)

var (
	// ErrCorrupt is returned for truncated or malformed snapshots.
	ErrCorrupt = errors.New("persistence: corrupt snapshot")

	ErrInvalidMagic       = fmt.Errorf("%w: invalid magic number", ErrCorrupt)
	ErrInvalidVersion     = fmt.Errorf("%w: unsupported version", ErrCorrupt)
	ErrInvalidWidth       = fmt.Errorf("%w: vector width mismatch", ErrCorrupt)
	ErrInvalidCompression = errors.New("persistence: unknown compression")
)

// Compression selects the payload compression.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = iota
	// CompressionLZ4 favors speed.
	CompressionLZ4
	// CompressionZstd favors ratio.
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCompression, s)
	}
}

// FileHeader is the 64-byte header at the start of every snapshot.
type FileHeader struct {
	Magic       uint32 // 0x484F4C4F ("HOLO")
	Version     uint32 // File format version
	Width       uint32 // Vector width in bits
	Compression Compression
	Padding1    [3]byte
	SymbolCount uint64 // Codebook entries
	TripleCount uint64 // Stored triples
	PayloadSize uint64 // Bytes following the header
	BodySize    uint64 // Uncompressed body size
	Checksum    uint32 // CRC32C of the uncompressed body
	Reserved    [12]byte
}

// HeaderSize is the encoded size of FileHeader.
const HeaderSize = 64
