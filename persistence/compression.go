package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Zstd encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// A compressed payload is a block:
// [UncompressedSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 means the data is stored raw because compression did
// not help.
const blockHeaderSize = 8

// maxLZ4Ratio bounds how far an LZ4 block can expand. A block claiming more
// output per input byte is corrupt.
const maxLZ4Ratio = 255

// compress encodes body for the given algorithm. CompressionNone returns
// body unchanged.
func compress(body []byte, c Compression) ([]byte, error) {
	if c == CompressionNone {
		return body, nil
	}
	if len(body) > math.MaxUint32 {
		return nil, fmt.Errorf("persistence: body of %d bytes exceeds compressed block limit", len(body))
	}

	var packed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(body)))
		n, err := lz4.CompressBlock(body, buf, nil)
		if err != nil {
			return nil, err
		}
		packed = buf[:n]
	case CompressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		packed = enc.EncodeAll(body, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCompression, c)
	}

	// Incompressible (n == 0 for LZ4) or not worth it: store raw.
	if len(packed) == 0 || float64(len(packed)) > float64(len(body))*0.9 {
		out := make([]byte, blockHeaderSize+len(body))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(body)))
		copy(out[blockHeaderSize:], body)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(packed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(packed)))
	copy(out[blockHeaderSize:], packed)
	return out, nil
}

// decompress reverses compress. bodySize is the size recorded in the header.
func decompress(payload []byte, c Compression, bodySize uint64) ([]byte, error) {
	if c == CompressionNone {
		return payload, nil
	}
	if len(payload) < blockHeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}

	rawSize := binary.LittleEndian.Uint32(payload[0:])
	packedSize := binary.LittleEndian.Uint32(payload[4:])
	if uint64(rawSize) != bodySize {
		return nil, fmt.Errorf("%w: block size %d, header says %d", ErrCorrupt, rawSize, bodySize)
	}

	data := payload[blockHeaderSize:]
	if packedSize == 0 {
		if uint64(len(data)) != bodySize {
			return nil, fmt.Errorf("%w: raw block data size mismatch", ErrCorrupt)
		}
		return data, nil
	}
	if uint64(len(data)) != uint64(packedSize) {
		return nil, fmt.Errorf("%w: compressed block data size mismatch", ErrCorrupt)
	}

	switch c {
	case CompressionLZ4:
		if uint64(rawSize) > uint64(packedSize)*maxLZ4Ratio {
			return nil, fmt.Errorf("%w: lz4 block claims %d bytes from %d", ErrCorrupt, rawSize, packedSize)
		}
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if uint32(n) != rawSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer putZstdDecoder(dec)
		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		// Stream into a buffer that only grows with real output, so the
		// claimed size alone cannot force the allocation.
		out, err := readN(dec, uint64(rawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if n, _ := dec.Read(make([]byte, 1)); n != 0 {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCompression, c)
	}
}
