package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/testutil"
)

func sampleSnapshot() *Snapshot {
	rng := testutil.NewRNG(7)
	s := &Snapshot{Manifest: []byte(`{"codec":"json"}`)}
	for _, name := range []string{"Ada", "loves", "Jan", "first_kiss"} {
		s.Symbols = append(s.Symbols, Symbol{Name: name, Vector: rng.Vector()})
	}
	for i := range 10 {
		s.Triples = append(s.Triples, Triple{
			Seq:         uint64(i),
			Subject:     0,
			Predicate:   1,
			Object:      uint32(2 + i%2),
			Cell:        [3]uint8{1, 2, uint8(i % 5)},
			Truth:       model.TruthValue{Frequency: 0.25 * float64(i%4), Confidence: 0.9},
			Qualia:      model.Qualia{Arousal: 0.8, Valence: 0.9, Tension: 0.2, Depth: 0.9},
			Fingerprint: rng.Vector(),
		})
	}
	s.Index = []byte{1, 2, 3, 4, 5}
	return s
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			want := sampleSnapshot()
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, c))

			got, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Snapshot{}, CompressionZstd))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, got.Symbols)
	assert.Empty(t, got.Triples)
}

func TestReadHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot(), CompressionNone))
	data := buf.Bytes()

	h, err := ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), h.SymbolCount)
	assert.Equal(t, uint64(10), h.TripleCount)
	assert.Equal(t, uint64(len(data)-HeaderSize), h.PayloadSize)
	assert.Equal(t, HeaderSize, binary.Size(FileHeader{}))
}

func TestDecode_Corrupt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot(), CompressionNone))
	good := buf.Bytes()

	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(bytes.Clone(good))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"Empty", nil, ErrCorrupt},
		{"BadMagic", mutate(func(b []byte) []byte { b[0] ^= 0xFF; return b }), ErrInvalidMagic},
		{"BadVersion", mutate(func(b []byte) []byte { b[4] ^= 0xFF; return b }), ErrInvalidVersion},
		{"BadWidth", mutate(func(b []byte) []byte { b[8] ^= 0xFF; return b }), ErrInvalidWidth},
		{"Truncated", good[:len(good)-10], ErrCorrupt},
		{"FlippedBodyByte", mutate(func(b []byte) []byte { b[HeaderSize+100] ^= 0x01; return b }), ErrCorrupt},
		{"HeaderOnly", good[:HeaderSize], ErrCorrupt},
		{"InflatedBodySize", mutate(func(b []byte) []byte {
			b = b[:HeaderSize]
			b[12] = byte(CompressionLZ4)
			binary.LittleEndian.PutUint64(b[32:], blockHeaderSize+4)
			binary.LittleEndian.PutUint64(b[40:], math.MaxUint32)
			block := binary.LittleEndian.AppendUint32(nil, math.MaxUint32)
			block = binary.LittleEndian.AppendUint32(block, 4)
			return append(append(b, block...), 0x10, 0x41, 0x41, 0x41)
		}), ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsCorrupt(err))
		})
	}
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot(), CompressionNone))
	data := buf.Bytes()
	data[len(data)-1] ^= 0x80

	_, err := Decode(bytes.NewReader(data))
	var cm *ChecksumMismatchError
	require.True(t, errors.As(err, &cm))
	assert.NotEqual(t, cm.Expected, cm.Actual)
}

func TestDecompress_InflatedSize(t *testing.T) {
	block := func(raw, packed uint32, data []byte) []byte {
		b := binary.LittleEndian.AppendUint32(nil, raw)
		b = binary.LittleEndian.AppendUint32(b, packed)
		return append(b, data...)
	}

	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			_, err := decompress(block(math.MaxUint32, 4, []byte{1, 2, 3, 4}), c, math.MaxUint32)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}

	body := bytes.Repeat([]byte("Ada loves Jan. "), 1000)
	payload, err := compress(body, CompressionZstd)
	require.NoError(t, err)
	packed := payload[blockHeaderSize:]
	require.NotZero(t, binary.LittleEndian.Uint32(payload[4:]), "compressible body is packed")

	t.Run("ZstdClaimsMore", func(t *testing.T) {
		claim := uint32(len(body) * 1000)
		_, err := decompress(block(claim, uint32(len(packed)), packed), CompressionZstd, uint64(claim))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("ZstdClaimsLess", func(t *testing.T) {
		claim := uint32(len(body) - 1)
		_, err := decompress(block(claim, uint32(len(packed)), packed), CompressionZstd, uint64(claim))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("ZstdExact", func(t *testing.T) {
		got, err := decompress(payload, CompressionZstd, uint64(len(body)))
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})
}

func TestCompress_Incompressible(t *testing.T) {
	rng := testutil.NewRNG(3)
	v := rng.Vector()
	body, _ := v.MarshalBinary()

	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		payload, err := compress(body, c)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(payload[4:]), "stored raw")

		got, err := decompress(payload, c, uint64(len(body)))
		require.NoError(t, err)
		assert.Equal(t, body, got)
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrInvalidCompression)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.holo")
	want := sampleSnapshot()

	require.NoError(t, SaveToFile(path, func(w io.Writer) error {
		return Encode(w, want, CompressionLZ4)
	}))

	var got *Snapshot
	require.NoError(t, LoadFromFile(path, func(r io.Reader) error {
		var err error
		got, err = Decode(r)
		return err
	}))
	assert.Equal(t, want, got)

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveToFile_ErrorKeepsTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.holo")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := SaveToFile(path, func(io.Writer) error { return errors.New("boom") })
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
