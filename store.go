package holograph

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/holograph/binder"
	"github.com/hupe1980/holograph/codebook"
	"github.com/hupe1980/holograph/grid"
	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/index"
	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/resonance"
)

// state is everything Load replaces at once.
type state struct {
	cb     *codebook.Codebook
	grid   *grid.Grid
	index  *index.Index
	engine *resonance.Engine
}

func newState(cleanupStrength, parallelism int) *state {
	cb := codebook.New(func(o *codebook.Options) {
		o.CleanupStrength = cleanupStrength
	})
	return &state{
		cb:    cb,
		grid:  grid.New(),
		index: index.New(),
		engine: resonance.New(cb, func(o *resonance.Options) {
			o.Parallelism = parallelism
		}),
	}
}

// Store is an in-memory knowledge store of subject-predicate-object facts.
//
// Store is safe for concurrent use: queries share a read lock, while Insert
// and Load hold the write lock, so a reader never observes a triple in the
// grid without its exact index entries.
type Store struct {
	opts   options
	log    *Logger
	tracer trace.Tracer

	mu     sync.RWMutex
	st     *state
	closed bool
}

// New creates an empty Store.
func New(optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)
	return &Store{
		opts:   o,
		log:    o.logger.WithComponent("holograph"),
		tracer: newTracer(o.tracerProvider),
		st:     newState(o.cleanupStrength, o.parallelism),
	}, nil
}

// Insert stores t. Truth defaults to model.DefaultTruth and Qualia to
// model.NeutralQualia. Re-inserting a stored triple follows the configured
// DuplicatePolicy.
func (s *Store) Insert(ctx context.Context, t model.Triple) (err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "holograph.Insert", attribute.String("triple", t.String()))
	defer func() {
		endSpan(span, err)
		s.opts.metricsCollector.RecordInsert(time.Since(start), err)
		s.log.LogInsert(ctx, t.Key(), err)
	}()

	truth, qualia, err := validateTriple(t)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ext, err := s.embedUnknown(ctx, t.Subject, t.Object)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.st.insert(t.Key(), truth, qualia, ext, s.opts.duplicatePolicy)
}

func validateTriple(t model.Triple) (model.TruthValue, model.Qualia, error) {
	for _, f := range []struct{ name, value string }{
		{"subject", t.Subject},
		{"predicate", t.Predicate},
		{"object", t.Object},
	} {
		if f.value == "" {
			return model.TruthValue{}, model.Qualia{}, &InvalidTripleError{Field: f.name}
		}
		if err := validateSymbol(f.value); err != nil {
			return model.TruthValue{}, model.Qualia{}, err
		}
	}

	truth := model.DefaultTruth
	if t.Truth != nil {
		if !t.Truth.Valid() {
			return model.TruthValue{}, model.Qualia{}, &InvalidTruthValueError{Frequency: t.Truth.Frequency, Confidence: t.Truth.Confidence}
		}
		truth = *t.Truth
	}

	qualia := model.NeutralQualia
	if t.Qualia != nil {
		if !t.Qualia.Valid() {
			return model.TruthValue{}, model.Qualia{}, &InvalidQualiaError{Qualia: *t.Qualia}
		}
		qualia = *t.Qualia
	}
	return truth, qualia, nil
}

func validateSymbol(symbol string) error {
	if err := codebook.Validate(symbol); err != nil {
		return &InvalidSymbolError{Symbol: symbol, cause: err}
	}
	return nil
}

// embedUnknown asks the fingerprint provider for every symbol not yet in the
// codebook. It runs without the store lock held.
func (s *Store) embedUnknown(ctx context.Context, symbols ...string) (map[string]hypervector.Vector, error) {
	if s.opts.provider == nil {
		return nil, nil
	}

	s.mu.RLock()
	cb := s.st.cb
	s.mu.RUnlock()

	var ext map[string]hypervector.Vector
	for _, sym := range symbols {
		if sym == "" || cb.Contains(sym) {
			continue
		}
		if _, ok := ext[sym]; ok {
			continue
		}
		v, err := s.opts.provider.Embed(ctx, sym)
		if err != nil {
			return nil, fmt.Errorf("fingerprint provider: %w", err)
		}
		if ext == nil {
			ext = make(map[string]hypervector.Vector, len(symbols))
		}
		ext[sym] = v
	}
	return ext, nil
}

func (st *state) insert(k model.Key, truth model.TruthValue, qualia model.Qualia, ext map[string]hypervector.Vector, policy DuplicatePolicy) error {
	sid, err := st.resolve(k.Subject, ext)
	if err != nil {
		return err
	}
	pid, err := st.cb.ResolveID(k.Predicate)
	if err != nil {
		return err
	}
	oid, err := st.resolve(k.Object, ext)
	if err != nil {
		return err
	}

	ids := grid.IDKey{Subject: sid, Predicate: pid, Object: oid}
	if old, ok := st.grid.Lookup(ids); ok {
		switch policy {
		case DuplicateKeep:
			return nil
		case DuplicateRevise:
			truth = model.Revise(old.Truth, truth)
		}
	}

	sv, _ := st.cb.Vector(sid)
	pv, _ := st.cb.Vector(pid)
	ov, _ := st.cb.Vector(oid)

	st.grid.Insert(&grid.Entry{
		IDs:         ids,
		Key:         k,
		Fingerprint: binder.EncodeTriple(sv, pv, ov, binder.EncodeQualia(qualia)),
		Truth:       truth,
		Qualia:      qualia,
		Cell:        grid.Address(&sv, &pv, &ov),
	})
	st.index.Insert(sid, pid, oid)
	return nil
}

// resolve returns the ID of symbol, registering a provider vector from ext
// if the symbol is new.
func (st *state) resolve(symbol string, ext map[string]hypervector.Vector) (uint32, error) {
	if v, ok := ext[symbol]; ok && !st.cb.Contains(symbol) {
		return st.cb.Define(symbol, v)
	}
	return st.cb.ResolveID(symbol)
}

// QueryObject returns every stored object of (subject, predicate), each with
// similarity 1.0. Unknown pairs yield an empty result.
func (s *Store) QueryObject(ctx context.Context, subject, predicate string) ([]model.Match, error) {
	return s.query(ctx, QueryKindObject, subject, predicate)
}

// QuerySubject returns every stored subject of (predicate, object).
func (s *Store) QuerySubject(ctx context.Context, predicate, object string) ([]model.Match, error) {
	return s.query(ctx, QueryKindSubject, predicate, object)
}

// QueryPredicate returns every stored predicate linking subject to object.
func (s *Store) QueryPredicate(ctx context.Context, subject, object string) ([]model.Match, error) {
	return s.query(ctx, QueryKindPredicate, subject, object)
}

func (s *Store) query(ctx context.Context, kind, a, b string) (matches []model.Match, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "holograph.Query",
		attribute.String("kind", kind),
		attribute.StringSlice("fields", []string{a, b}),
	)
	defer func() {
		span.SetAttributes(attribute.Int("results", len(matches)))
		endSpan(span, err)
		s.opts.metricsCollector.RecordQuery(kind, len(matches), time.Since(start), err)
		s.log.LogQuery(ctx, kind, a, b, len(matches), err)
	}()

	if err := validateSymbol(a); err != nil {
		return nil, err
	}
	if err := validateSymbol(b); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	st := s.st

	aid, ok := st.cb.Lookup(a)
	if !ok {
		return nil, nil
	}
	bid, ok := st.cb.Lookup(b)
	if !ok {
		return nil, nil
	}

	var (
		ids   iter.Seq[uint32]
		keyOf func(x uint32) grid.IDKey
	)
	switch kind {
	case QueryKindObject:
		ids = st.index.Objects(aid, bid)
		keyOf = func(x uint32) grid.IDKey { return grid.IDKey{Subject: aid, Predicate: bid, Object: x} }
	case QueryKindSubject:
		ids = st.index.Subjects(aid, bid)
		keyOf = func(x uint32) grid.IDKey { return grid.IDKey{Subject: x, Predicate: aid, Object: bid} }
	default:
		ids = st.index.Predicates(aid, bid)
		keyOf = func(x uint32) grid.IDKey { return grid.IDKey{Subject: aid, Predicate: x, Object: bid} }
	}

	for x := range ids {
		k := keyOf(x)
		e, ok := st.grid.Lookup(k)
		if !ok {
			panic(fmt.Sprintf("holograph: indexed triple %v missing from grid", k))
		}
		matches = append(matches, matchOf(e, 1))
	}
	return matches, nil
}

func matchOf(e *grid.Entry, similarity float64) model.Match {
	return model.Match{
		Key:        e.Key,
		Similarity: similarity,
		Truth:      e.Truth,
		Qualia:     e.Qualia,
	}
}

// Fingerprint returns the composite fingerprint t would be stored with,
// without storing it. Symbols not in the codebook are embedded by the
// fingerprint provider, or generated when none is configured, but not
// registered.
func (s *Store) Fingerprint(ctx context.Context, t model.Triple) (hypervector.Vector, error) {
	_, qualia, err := validateTriple(t)
	if err != nil {
		return hypervector.Vector{}, err
	}
	if err := ctx.Err(); err != nil {
		return hypervector.Vector{}, err
	}

	ext, err := s.embedUnknown(ctx, t.Subject, t.Object)
	if err != nil {
		return hypervector.Vector{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return hypervector.Vector{}, ErrClosed
	}
	st := s.st
	return binder.EncodeTriple(
		st.vectorOf(t.Subject, ext),
		st.vectorOf(t.Predicate, nil),
		st.vectorOf(t.Object, ext),
		binder.EncodeQualia(qualia),
	), nil
}

// vectorOf returns the vector symbol would be stored with, without
// registering it.
func (st *state) vectorOf(symbol string, ext map[string]hypervector.Vector) hypervector.Vector {
	if id, ok := st.cb.Lookup(symbol); ok {
		v, _ := st.cb.Vector(id)
		return v
	}
	if v, ok := ext[symbol]; ok {
		return v
	}
	return codebook.Generate(symbol, st.cb.CleanupStrength())
}

// Cleanup returns the codebook symbol nearest to v and its similarity.
// ok is false for an empty or closed store.
func (s *Store) Cleanup(v hypervector.Vector) (symbol string, similarity float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", 0, false
	}

	m, ok := s.st.cb.Cleanup(v)
	if !ok {
		return "", 0, false
	}
	return m.Symbol, m.Similarity(), true
}

// Len returns the number of stored triples, or zero once the store is
// closed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	return s.st.grid.Len()
}

// Stats describes the store contents.
type Stats struct {
	Triples       int
	Symbols       int
	OccupiedCells int
	// Pairs is the number of distinct keys per exact index mapping,
	// indexed by index.Kind.
	Pairs [index.NumKinds]int
}

// Stats returns a snapshot of the store's size. A closed store reports
// zero Stats.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Stats{}
	}

	st := s.st
	out := Stats{
		Triples:       st.grid.Len(),
		Symbols:       st.cb.Len(),
		OccupiedCells: st.grid.Occupancy(),
	}
	for k := range index.NumKinds {
		out.Pairs[k] = st.index.Keys(index.Kind(k))
	}
	return out
}
