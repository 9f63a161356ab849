package holograph

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hupe1980/holograph/binder"
	"github.com/hupe1980/holograph/blobstore"
	"github.com/hupe1980/holograph/codec"
	"github.com/hupe1980/holograph/grid"
	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/index"
	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/persistence"
)

// manifestData is the codec-encoded header section of a snapshot.
type manifestData struct {
	CleanupStrength int `json:"cleanup_strength"`
	Width           int `json:"width"`
	Symbols         int `json:"symbols"`
	Triples         int `json:"triples"`
}

// encodeManifest prefixes the codec payload with the codec name so Load can
// pick the matching codec.
func encodeManifest(c codec.Codec, m manifestData) ([]byte, error) {
	payload, err := c.Marshal(m)
	if err != nil {
		return nil, err
	}
	name := c.Name()
	out := make([]byte, 0, 1+len(name)+len(payload))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	return append(out, payload...), nil
}

func decodeManifest(data []byte) (manifestData, error) {
	var m manifestData
	if len(data) == 0 || len(data) < 1+int(data[0]) {
		return m, corruptf("manifest truncated")
	}
	name := string(data[1 : 1+int(data[0])])
	c, ok := codec.ByName(name)
	if !ok {
		return m, corruptf("unknown manifest codec %q", name)
	}
	if err := c.Unmarshal(data[1+int(data[0]):], &m); err != nil {
		return m, corrupt("manifest", err)
	}
	return m, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Save writes a snapshot of the store to w. The snapshot holds the codebook
// vectors verbatim, so a loaded store answers every query identically.
func (s *Store) Save(ctx context.Context, w io.Writer) (err error) {
	start := time.Now()
	cw := &countingWriter{w: w}
	triples := 0
	ctx, span := s.startSpan(ctx, "holograph.Save", attribute.String("compression", s.opts.compression.String()))
	defer func() {
		span.SetAttributes(attribute.Int64("bytes", cw.n))
		endSpan(span, err)
		s.opts.metricsCollector.RecordSave(cw.n, time.Since(start), err)
		s.log.LogSave(ctx, cw.n, triples, err)
	}()

	if err := ctx.Err(); err != nil {
		return &PersistError{Op: "save", cause: err}
	}

	snap, err := s.snapshot()
	if err != nil {
		return &PersistError{Op: "save", cause: err}
	}
	triples = len(snap.Triples)

	if err := persistence.Encode(cw, snap, s.opts.compression); err != nil {
		return &PersistError{Op: "save", cause: err}
	}
	return nil
}

// snapshot copies the live state under the read lock. Encoding happens
// after the lock is released.
func (s *Store) snapshot() (*persistence.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	st := s.st

	symbols := make([]persistence.Symbol, 0, st.cb.Len())
	for name, v := range st.cb.All() {
		symbols = append(symbols, persistence.Symbol{Name: name, Vector: v})
	}

	triples := make([]persistence.Triple, 0, st.grid.Len())
	for e := range st.grid.All() {
		triples = append(triples, persistence.Triple{
			Seq:         e.Seq,
			Subject:     e.IDs.Subject,
			Predicate:   e.IDs.Predicate,
			Object:      e.IDs.Object,
			Cell:        [3]uint8{e.Cell.X, e.Cell.Y, e.Cell.Z},
			Truth:       e.Truth,
			Qualia:      e.Qualia,
			Fingerprint: e.Fingerprint,
		})
	}
	slices.SortFunc(triples, func(a, b persistence.Triple) int { return cmp.Compare(a.Seq, b.Seq) })

	var idx bytes.Buffer
	if _, err := st.index.WriteTo(&idx); err != nil {
		return nil, err
	}

	manifest, err := encodeManifest(s.opts.codec, manifestData{
		CleanupStrength: st.cb.CleanupStrength(),
		Width:           hypervector.Width,
		Symbols:         len(symbols),
		Triples:         len(triples),
	})
	if err != nil {
		return nil, err
	}

	return &persistence.Snapshot{
		Manifest: manifest,
		Symbols:  symbols,
		Triples:  triples,
		Index:    idx.Bytes(),
	}, nil
}

// Load replaces the store contents with the snapshot read from r. The input
// is decoded and validated in full before the swap; on any error the store
// is left untouched. Malformed input yields an error matching
// ErrCorruptState.
func (s *Store) Load(ctx context.Context, r io.Reader) (err error) {
	start := time.Now()
	triples := 0
	ctx, span := s.startSpan(ctx, "holograph.Load")
	defer func() {
		span.SetAttributes(attribute.Int("triples", triples))
		endSpan(span, err)
		s.opts.metricsCollector.RecordLoad(triples, time.Since(start), err)
		s.log.LogLoad(ctx, triples, err)
	}()

	if err := ctx.Err(); err != nil {
		return &PersistError{Op: "load", cause: err}
	}

	snap, err := persistence.Decode(r)
	if err != nil {
		return &PersistError{Op: "load", cause: translateError(err)}
	}

	st, err := restore(snap, s.opts.parallelism)
	if err != nil {
		return &PersistError{Op: "load", cause: translateError(err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &PersistError{Op: "load", cause: ErrClosed}
	}
	s.st = st
	s.opts.cleanupStrength = st.cb.CleanupStrength()
	triples = st.grid.Len()
	return nil
}

// restore rebuilds and cross-checks a state from a decoded snapshot.
func restore(snap *persistence.Snapshot, parallelism int) (*state, error) {
	m, err := decodeManifest(snap.Manifest)
	if err != nil {
		return nil, err
	}
	if m.Width != hypervector.Width {
		return nil, corruptf("manifest width %d, want %d", m.Width, hypervector.Width)
	}
	if m.CleanupStrength < 0 {
		return nil, corruptf("negative cleanup strength %d", m.CleanupStrength)
	}
	if m.Symbols != len(snap.Symbols) || m.Triples != len(snap.Triples) {
		return nil, corruptf("manifest counts %d/%d, sections hold %d/%d",
			m.Symbols, m.Triples, len(snap.Symbols), len(snap.Triples))
	}

	st := newState(m.CleanupStrength, parallelism)

	for i, sym := range snap.Symbols {
		id, err := st.cb.Define(sym.Name, sym.Vector)
		if err != nil {
			return nil, corrupt(fmt.Sprintf("symbol %d", i), err)
		}
		if id != uint32(i) {
			return nil, corruptf("duplicate symbol %q", sym.Name)
		}
	}

	n := uint32(len(snap.Symbols))
	for i := range snap.Triples {
		t := &snap.Triples[i]
		if t.Subject >= n || t.Predicate >= n || t.Object >= n {
			return nil, corruptf("triple %d references unknown symbol", i)
		}
		if !t.Truth.Valid() {
			return nil, corruptf("triple %d has invalid truth %v", i, t.Truth)
		}
		if !t.Qualia.Valid() {
			return nil, corruptf("triple %d has invalid qualia %v", i, t.Qualia)
		}
		if i > 0 && t.Seq <= snap.Triples[i-1].Seq {
			return nil, corruptf("triple %d out of sequence", i)
		}

		sv, pv, ov := st.cb.Ref(t.Subject), st.cb.Ref(t.Predicate), st.cb.Ref(t.Object)
		cell := grid.Coord{X: t.Cell[0], Y: t.Cell[1], Z: t.Cell[2]}
		if cell != grid.Address(sv, pv, ov) {
			return nil, corruptf("triple %d stored in cell %s", i, cell)
		}
		if t.Fingerprint != binder.EncodeTriple(*sv, *pv, *ov, binder.EncodeQualia(t.Qualia)) {
			return nil, corruptf("triple %d fingerprint mismatch", i)
		}

		subject, _ := st.cb.Symbol(t.Subject)
		predicate, _ := st.cb.Symbol(t.Predicate)
		object, _ := st.cb.Symbol(t.Object)
		e := &grid.Entry{
			Seq:         t.Seq,
			IDs:         grid.IDKey{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object},
			Key:         model.Key{Subject: subject, Predicate: predicate, Object: object},
			Fingerprint: t.Fingerprint,
			Truth:       t.Truth,
			Qualia:      t.Qualia,
			Cell:        cell,
		}
		if err := st.grid.Restore(e); err != nil {
			return nil, corrupt(fmt.Sprintf("triple %d", i), err)
		}
	}

	idx, err := index.Read(bytes.NewReader(snap.Index))
	if err != nil {
		return nil, err
	}
	if idx.Len() != st.grid.Len() {
		return nil, corruptf("index holds %d triples, grid %d", idx.Len(), st.grid.Len())
	}
	for e := range st.grid.All() {
		if !idx.Contains(e.IDs.Subject, e.IDs.Predicate, e.IDs.Object) {
			return nil, corruptf("triple %s missing from index", e.Key)
		}
	}
	st.index = idx
	return st, nil
}

// SaveToFile writes a snapshot to filename. The file is replaced
// atomically.
func (s *Store) SaveToFile(ctx context.Context, filename string) error {
	return persistence.SaveToFile(filename, func(w io.Writer) error {
		return s.Save(ctx, w)
	})
}

// LoadFromFile loads a snapshot written by SaveToFile.
func (s *Store) LoadFromFile(ctx context.Context, filename string) error {
	err := persistence.LoadFromFile(filename, func(r io.Reader) error {
		return s.Load(ctx, r)
	})
	var perr *PersistError
	if err != nil && !errors.As(err, &perr) {
		return &PersistError{Op: "load", cause: err}
	}
	return err
}

// SaveBlob writes a snapshot to the blob store under name.
func (s *Store) SaveBlob(ctx context.Context, store blobstore.BlobStore, name string) error {
	var buf bytes.Buffer
	if err := s.Save(ctx, &buf); err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return &PersistError{Op: "save", cause: err}
	}
	return nil
}

// LoadBlob loads the snapshot stored under name.
func (s *Store) LoadBlob(ctx context.Context, store blobstore.BlobStore, name string) error {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return &PersistError{Op: "load", cause: err}
	}
	return s.Load(ctx, bytes.NewReader(data))
}
