package holograph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hupe1980/holograph/codebook"
	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/resonance"
)

// Query is a partial triple for Resonate. An empty field is unknown.
type Query struct {
	Subject   string
	Predicate string
	Object    string
}

// String returns a string representation of the Query, with "?" for
// unknown fields.
func (q Query) String() string {
	return model.Key{Subject: orUnknown(q.Subject), Predicate: orUnknown(q.Predicate), Object: orUnknown(q.Object)}.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// ResonateOptions tunes a single resonance query.
type ResonateOptions struct {
	// CellLimit scans only the most promising cells. Zero scans every
	// candidate cell.
	CellLimit int

	// Limit truncates the ranked result. Zero returns every match.
	Limit int
}

// WithCellLimit bounds the number of grid cells scanned.
func WithCellLimit(n int) func(*ResonateOptions) {
	return func(o *ResonateOptions) {
		o.CellLimit = max(n, 0)
	}
}

// WithLimit keeps only the n best matches.
func WithLimit(n int) func(*ResonateOptions) {
	return func(o *ResonateOptions) {
		o.Limit = max(n, 0)
	}
}

func (o ResonateOptions) scan(so *resonance.ScanOptions) {
	so.CellLimit = o.CellLimit
	so.Limit = o.Limit
}

func resonateOptions(optFns []func(*ResonateOptions)) ResonateOptions {
	var o ResonateOptions
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Resonate returns every stored triple whose projection onto the known
// fields of q is at least threshold similar to q, ordered by similarity and
// then insertion order. With no field known every triple matches with
// similarity 1.0.
//
// Unknown symbols are never registered; they resonate with the vector the
// codebook would assign them.
func (s *Store) Resonate(ctx context.Context, q Query, threshold float64, optFns ...func(*ResonateOptions)) (matches []model.Match, err error) {
	start := time.Now()
	opts := resonateOptions(optFns)
	cells := 0
	ctx, span := s.startSpan(ctx, "holograph.Resonate",
		attribute.String("query", q.String()),
		attribute.Float64("threshold", threshold),
	)
	defer func() {
		span.SetAttributes(attribute.Int("results", len(matches)))
		endSpan(span, err)
		s.opts.metricsCollector.RecordResonate(cells, len(matches), time.Since(start), err)
		s.log.LogResonate(ctx, q, threshold, len(matches), err)
	}()

	for _, f := range []string{q.Subject, q.Predicate, q.Object} {
		if f == "" {
			continue
		}
		if err := validateSymbol(f); err != nil {
			return nil, err
		}
	}

	ext, err := s.embedUnknown(ctx, q.Subject, q.Object)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	st := s.st

	rq := resonance.Query{
		Subject:   st.queryVector(q.Subject, ext),
		Predicate: st.queryVector(q.Predicate, nil),
		Object:    st.queryVector(q.Object, ext),
	}
	results, err := st.engine.Resonate(ctx, st.grid, rq, threshold, opts.scan, scanned(&cells))
	if err != nil {
		return nil, translateError(err)
	}
	return toMatches(results), nil
}

// queryVector returns the vector of a query field, or nil if the field is
// unknown.
func (st *state) queryVector(symbol string, ext map[string]hypervector.Vector) *hypervector.Vector {
	if symbol == "" {
		return nil
	}
	if id, ok := st.cb.Lookup(symbol); ok {
		return st.cb.Ref(id)
	}
	if v, ok := ext[symbol]; ok {
		return &v
	}
	v := codebook.Generate(symbol, st.cb.CleanupStrength())
	return &v
}

func scanned(n *int) func(*resonance.ScanOptions) {
	return func(o *resonance.ScanOptions) {
		o.Scanned = n
	}
}

func toMatches(results []resonance.Result) []model.Match {
	if len(results) == 0 {
		return nil
	}
	out := make([]model.Match, len(results))
	for i, r := range results {
		out[i] = matchOf(r.Entry, r.Similarity)
	}
	return out
}

// ResonateVector scores every stored composite fingerprint against fp, for
// query vectors that are not built from symbols, such as Fingerprint output with a
// different qualia or a binarized embedding.
func (s *Store) ResonateVector(ctx context.Context, fp hypervector.Vector, threshold float64, optFns ...func(*ResonateOptions)) (matches []model.Match, err error) {
	start := time.Now()
	opts := resonateOptions(optFns)
	cells := 0
	ctx, span := s.startSpan(ctx, "holograph.ResonateVector", attribute.Float64("threshold", threshold))
	defer func() {
		span.SetAttributes(attribute.Int("results", len(matches)))
		endSpan(span, err)
		s.opts.metricsCollector.RecordResonate(cells, len(matches), time.Since(start), err)
		s.log.LogResonate(ctx, Query{}, threshold, len(matches), err)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	st := s.st

	results, err := st.engine.ResonateVector(ctx, st.grid, fp, threshold, opts.scan, scanned(&cells))
	if err != nil {
		return nil, translateError(err)
	}
	return toMatches(results), nil
}

// Cascade follows resonance from start: it resonates on subject=start, then
// on every matched object as the next subject, for up to hops levels. Each
// subject is expanded once and each triple is reported once, in the order it
// was first reached.
func (s *Store) Cascade(ctx context.Context, start string, hops int, threshold float64, optFns ...func(*ResonateOptions)) ([]model.Match, error) {
	if err := validateSymbol(start); err != nil {
		return nil, err
	}

	var (
		out      []model.Match
		seen     = map[model.Key]struct{}{}
		visited  = map[string]struct{}{start: {}}
		frontier = []string{start}
	)
	for hop := 0; hop < hops && len(frontier) > 0; hop++ {
		var next []string
		for _, subject := range frontier {
			matches, err := s.Resonate(ctx, Query{Subject: subject}, threshold, optFns...)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if _, ok := seen[m.Key]; ok {
					continue
				}
				seen[m.Key] = struct{}{}
				out = append(out, m)

				if _, ok := visited[m.Object]; !ok {
					visited[m.Object] = struct{}{}
					next = append(next, m.Object)
				}
			}
		}
		frontier = next
	}
	return out, nil
}
