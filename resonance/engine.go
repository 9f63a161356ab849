package resonance

import (
	"context"
	"errors"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/holograph/binder"
	"github.com/hupe1980/holograph/grid"
	"github.com/hupe1980/holograph/hypervector"
)

// ErrInvalidThreshold is returned for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("resonance: threshold must be in [0, 1]")

// VectorSource resolves codebook IDs to symbol vectors.
type VectorSource interface {
	Ref(id uint32) *hypervector.Vector
}

// Query holds the pinned field vectors; nil fields are unknown.
type Query = binder.Fields

// Result is a scored entry.
type Result struct {
	Entry      *grid.Entry
	Similarity float64
}

// Options configures an Engine.
type Options struct {
	// Parallelism bounds the number of cells scanned concurrently.
	Parallelism int
}

// ScanOptions configures a single query.
type ScanOptions struct {
	// CellLimit scans at most this many of the highest-closeness cells.
	// Zero scans every candidate cell.
	CellLimit int

	// Limit truncates the ranked result. Zero returns every match.
	Limit int

	// Scanned, if set, receives the number of non-empty cells the query
	// visited.
	Scanned *int
}

// Engine scores grid entries against query fingerprints.
type Engine struct {
	src  VectorSource
	opts Options
}

// New creates an Engine reading symbol vectors from src.
func New(src VectorSource, optFns ...func(o *Options)) *Engine {
	opts := Options{Parallelism: 4}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Engine{src: src, opts: opts}
}

// MaskOf returns the roles pinned by q.
func MaskOf(q Query) binder.Mask {
	var m binder.Mask
	if q.Subject != nil {
		m |= binder.MaskSubject
	}
	if q.Predicate != nil {
		m |= binder.MaskPredicate
	}
	if q.Object != nil {
		m |= binder.MaskObject
	}
	return m
}

// Resonate returns every entry in the cells implicated by q whose projected
// similarity is at least threshold. With no field pinned every entry matches
// with similarity 1.0.
func (e *Engine) Resonate(ctx context.Context, g *grid.Grid, q Query, threshold float64, optFns ...func(o *ScanOptions)) ([]Result, error) {
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}
	opts := scanOptions(optFns)

	mask := MaskOf(q)
	if mask == binder.MaskNone {
		return e.scan(ctx, g, occupied(g, allCells()), func(*grid.Entry) float64 { return 1 }, threshold, opts)
	}

	qfp := binder.Project(q, mask)
	cells := grid.CellsForKnown(q.Subject, q.Predicate, q.Object)
	if len(cells) > 1 {
		cells = limitCells(RankCells(g, cells, &qfp), opts.CellLimit)
	}

	score := func(en *grid.Entry) float64 {
		proj := binder.Project(e.fields(en), mask)
		return hypervector.Similarity(&qfp, &proj)
	}
	return e.scan(ctx, g, cells, score, threshold, opts)
}

// ResonateVector scores every stored composite fingerprint directly against
// fp. It serves vectors that are not built from pinned symbols, such as an
// embedding or a qualia overlay.
func (e *Engine) ResonateVector(ctx context.Context, g *grid.Grid, fp hypervector.Vector, threshold float64, optFns ...func(o *ScanOptions)) ([]Result, error) {
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}
	opts := scanOptions(optFns)
	cells := limitCells(RankCells(g, allCells(), &fp), opts.CellLimit)

	score := func(en *grid.Entry) float64 {
		return hypervector.Similarity(&fp, &en.Fingerprint)
	}
	return e.scan(ctx, g, cells, score, threshold, opts)
}

func (e *Engine) fields(en *grid.Entry) binder.Fields {
	return binder.Fields{
		Subject:   e.src.Ref(en.IDs.Subject),
		Predicate: e.src.Ref(en.IDs.Predicate),
		Object:    e.src.Ref(en.IDs.Object),
	}
}

func (e *Engine) scan(ctx context.Context, g *grid.Grid, cells []grid.Coord, score func(*grid.Entry) float64, threshold float64, opts ScanOptions) ([]Result, error) {
	if opts.Scanned != nil {
		n := 0
		for _, c := range cells {
			if len(g.Cell(c)) > 0 {
				n++
			}
		}
		*opts.Scanned = n
	}
	perCell := make([][]Result, len(cells))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.Parallelism)

	for i, c := range cells {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var out []Result
			for _, en := range g.Cell(c) {
				if sim := score(en); sim >= threshold {
					out = append(out, Result{Entry: en, Similarity: sim})
				}
			}
			perCell[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if opts.Limit > 0 {
		q := newQueue(opts.Limit)
		for _, rs := range perCell {
			for _, r := range rs {
				q.pushBounded(r)
			}
		}
		return q.drain(), nil
	}

	var results []Result
	for _, rs := range perCell {
		results = append(results, rs...)
	}
	slices.SortFunc(results, compare)
	return results, nil
}

// compare orders results by descending similarity, then ascending sequence.
func compare(a, b Result) int {
	switch {
	case a.Similarity > b.Similarity:
		return -1
	case a.Similarity < b.Similarity:
		return 1
	case a.Entry.Seq < b.Entry.Seq:
		return -1
	case a.Entry.Seq > b.Entry.Seq:
		return 1
	default:
		return 0
	}
}

func checkThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

func scanOptions(optFns []func(o *ScanOptions)) ScanOptions {
	var opts ScanOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

func allCells() []grid.Coord {
	return grid.CellsForKnown(nil, nil, nil)
}

func occupied(g *grid.Grid, cells []grid.Coord) []grid.Coord {
	out := cells[:0]
	for _, c := range cells {
		if len(g.Cell(c)) > 0 {
			out = append(out, c)
		}
	}
	return out
}
