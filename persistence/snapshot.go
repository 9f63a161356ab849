package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/model"
)

// Symbol is a codebook entry. Its ID is its position in Snapshot.Symbols.
type Symbol struct {
	Name   string
	Vector hypervector.Vector
}

// Triple is a stored grid entry. Field IDs index Snapshot.Symbols.
type Triple struct {
	Seq                        uint64
	Subject, Predicate, Object uint32
	Cell                       [3]uint8
	Truth                      model.TruthValue
	Qualia                     model.Qualia
	Fingerprint                hypervector.Vector
}

// Snapshot is the decoded content of a snapshot file.
type Snapshot struct {
	// Manifest is the codec-encoded store configuration.
	Manifest []byte
	Symbols  []Symbol
	Triples  []Triple
	// Index is the serialized exact index.
	Index []byte
}

// Encode writes s to w.
func Encode(w io.Writer, s *Snapshot, c Compression) error {
	bw := newBodyWriter()

	bw.bytes32(s.Manifest)

	for i := range s.Symbols {
		bw.bytes32([]byte(s.Symbols[i].Name))
		bw.vector(&s.Symbols[i].Vector)
	}

	for i := range s.Triples {
		t := &s.Triples[i]
		bw.u64(t.Seq)
		bw.u32(t.Subject)
		bw.u32(t.Predicate)
		bw.u32(t.Object)
		bw.u8(t.Cell[0])
		bw.u8(t.Cell[1])
		bw.u8(t.Cell[2])
		bw.f64(t.Truth.Frequency)
		bw.f64(t.Truth.Confidence)
		for _, a := range t.Qualia.Axes() {
			bw.f64(a)
		}
		bw.vector(&t.Fingerprint)
	}

	bw.u64(uint64(len(s.Index)))
	bw.write(s.Index)

	body := bw.buf.Bytes()
	payload, err := compress(body, c)
	if err != nil {
		return err
	}

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Width:       hypervector.Width,
		Compression: c,
		SymbolCount: uint64(len(s.Symbols)),
		TripleCount: uint64(len(s.Triples)),
		PayloadSize: uint64(len(payload)),
		BodySize:    uint64(len(body)),
		Checksum:    bw.w.Sum(),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadHeader reads and validates the file header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	if header.Width != hypervector.Width {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, header.Width)
	}
	if header.Compression > CompressionZstd {
		return nil, fmt.Errorf("%w: %w: %s", ErrCorrupt, ErrInvalidCompression, header.Compression)
	}
	return &header, nil
}

// Decode reads a snapshot from r. Nothing is returned unless the whole input
// is well formed.
func Decode(r io.Reader) (*Snapshot, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	payload, err := readN(r, header.PayloadSize)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrCorrupt, err)
	}
	body, err := decompress(payload, header.Compression, header.BodySize)
	if err != nil {
		return nil, err
	}
	if uint64(len(body)) != header.BodySize {
		return nil, fmt.Errorf("%w: body size %d, header says %d", ErrCorrupt, len(body), header.BodySize)
	}
	if err := VerifyChecksum(body, header.Checksum); err != nil {
		return nil, err
	}

	br := &bodyReader{data: body}
	s := &Snapshot{Manifest: bytes.Clone(br.bytes32("manifest"))}

	// Every symbol needs at least its length prefix and vector.
	if header.SymbolCount > uint64(br.remaining())/(4+hypervector.Bytes) {
		return nil, fmt.Errorf("%w: symbol count %d exceeds body", ErrCorrupt, header.SymbolCount)
	}
	s.Symbols = make([]Symbol, header.SymbolCount)
	for i := range s.Symbols {
		name := br.bytes32("symbol name")
		if br.err == nil && (len(name) == 0 || !utf8.Valid(name)) {
			return nil, fmt.Errorf("%w: invalid symbol %d", ErrCorrupt, i)
		}
		s.Symbols[i] = Symbol{Name: string(name), Vector: br.vector("symbol vector")}
	}

	const tripleSize = 8 + 3*4 + 3 + 6*8 + hypervector.Bytes
	if header.TripleCount > uint64(br.remaining())/tripleSize {
		return nil, fmt.Errorf("%w: triple count %d exceeds body", ErrCorrupt, header.TripleCount)
	}
	s.Triples = make([]Triple, header.TripleCount)
	for i := range s.Triples {
		t := &s.Triples[i]
		t.Seq = br.u64("triple seq")
		t.Subject = br.u32("triple subject")
		t.Predicate = br.u32("triple predicate")
		t.Object = br.u32("triple object")
		t.Cell = [3]uint8{br.u8("cell"), br.u8("cell"), br.u8("cell")}
		t.Truth = model.TruthValue{Frequency: br.f64("truth"), Confidence: br.f64("truth")}
		t.Qualia = model.Qualia{
			Arousal: br.f64("qualia"),
			Valence: br.f64("qualia"),
			Tension: br.f64("qualia"),
			Depth:   br.f64("qualia"),
		}
		t.Fingerprint = br.vector("fingerprint")
	}

	n := br.u64("index length")
	if br.err == nil && n > uint64(br.remaining()) {
		return nil, fmt.Errorf("%w: index length %d exceeds body", ErrCorrupt, n)
	}
	s.Index = bytes.Clone(br.take(int(n), "index"))

	if br.err != nil {
		return nil, br.err
	}
	if br.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, br.remaining())
	}
	return s, nil
}

// IsCorrupt reports whether err describes malformed snapshot input.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
