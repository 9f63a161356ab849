// Package grid implements the bounded 3-axis spatial index that places triple
// fingerprints into a 5x5x5 array of cells.
//
// Each axis coordinate is a deterministic hash of one field's hypervector:
// x from the subject, y from the predicate, z from the object. Unrelated
// triples that share a cell are expected; buckets are scanned, never split.
// The grid size is fixed so memory stays bounded and addressing stays O(1)
// in the number of cells.
//
// A Grid is not safe for concurrent mutation. Callers serialize writes and
// may read concurrently between writes.
package grid

import (
	"fmt"
	"iter"

	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/model"
)

const (
	// Size is the number of positions per axis.
	Size = 5

	// NumCells is the total number of cells.
	NumCells = Size * Size * Size

	// hashRanges sub-ranges of hashRangeWords words each feed the axis hash.
	hashRanges     = 16
	hashRangeWords = 8
)

// Coord is a cell coordinate; each component lies in [0, Size).
type Coord struct {
	X, Y, Z uint8
}

// Index returns the cell's position in the flattened cell array.
func (c Coord) Index() int {
	return int(c.X)*Size*Size + int(c.Y)*Size + int(c.Z)
}

// Valid reports whether every component lies in [0, Size).
func (c Coord) Valid() bool {
	return c.X < Size && c.Y < Size && c.Z < Size
}

// String returns a string representation of the Coord.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// CoordOf is the inverse of Coord.Index.
func CoordOf(index int) Coord {
	return Coord{
		X: uint8(index / (Size * Size)),
		Y: uint8(index / Size % Size),
		Z: uint8(index % Size),
	}
}

// AxisHash maps a vector to an axis position in [0, Size).
// It mixes the population counts of fixed word ranges, so vectors that agree
// on most bits tend to land on the same position.
func AxisHash(v *hypervector.Vector) uint8 {
	var h uint64
	for r := range hashRanges {
		pc := v.PopCountRange(r*hashRangeWords, (r+1)*hashRangeWords)
		h = h*31 + uint64(pc)
	}
	return uint8(h % Size)
}

// Address computes the cell of a triple from its field vectors.
func Address(s, p, o *hypervector.Vector) Coord {
	return Coord{X: AxisHash(s), Y: AxisHash(p), Z: AxisHash(o)}
}

// CellsForKnown enumerates the candidate cells for a query. A non-nil field
// pins its axis; a nil field ranges over all Size positions. The result has
// 1, 5, 25, or 125 cells in index order.
func CellsForKnown(s, p, o *hypervector.Vector) []Coord {
	xs, ys, zs := axisRange(s), axisRange(p), axisRange(o)
	out := make([]Coord, 0, len(xs)*len(ys)*len(zs))
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				out = append(out, Coord{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

var allPositions = []uint8{0, 1, 2, 3, 4}

func axisRange(v *hypervector.Vector) []uint8 {
	if v == nil {
		return allPositions
	}
	return []uint8{AxisHash(v)}
}

// IDKey identifies a triple by the codebook IDs of its fields.
type IDKey struct {
	Subject, Predicate, Object uint32
}

// Entry is a stored triple.
type Entry struct {
	// Seq is the insertion sequence number of the triple's first assertion.
	Seq uint64

	IDs IDKey
	model.Key

	Fingerprint hypervector.Vector
	Truth       model.TruthValue
	Qualia      model.Qualia
	Cell        Coord
}

// Grid owns all cells.
type Grid struct {
	cells   [NumCells][]*Entry
	entries map[IDKey]*Entry
	nextSeq uint64
}

// New creates an empty grid.
func New() *Grid {
	return &Grid{entries: make(map[IDKey]*Entry)}
}

// Insert stores e in cell e.Cell. If a triple with the same IDs exists, its
// fingerprint, truth, and qualia are replaced and the existing entry is
// returned with inserted == false. New entries are always assigned the next
// sequence number; Restore is the only way to keep a preset Seq.
func (g *Grid) Insert(e *Entry) (stored *Entry, inserted bool) {
	if old, ok := g.entries[e.IDs]; ok {
		old.Fingerprint = e.Fingerprint
		old.Truth = e.Truth
		old.Qualia = e.Qualia
		return old, false
	}

	e.Seq = g.nextSeq
	g.nextSeq++
	g.entries[e.IDs] = e
	idx := e.Cell.Index()
	g.cells[idx] = append(g.cells[idx], e)
	return e, true
}

// Restore places an entry that already carries its sequence number, as read
// from a snapshot. Sequence numbers must be unique.
func (g *Grid) Restore(e *Entry) error {
	if !e.Cell.Valid() {
		return fmt.Errorf("grid: invalid cell %s", e.Cell)
	}
	if _, ok := g.entries[e.IDs]; ok {
		return fmt.Errorf("grid: duplicate triple %s", e.Key)
	}
	g.entries[e.IDs] = e
	idx := e.Cell.Index()
	g.cells[idx] = append(g.cells[idx], e)
	if e.Seq >= g.nextSeq {
		g.nextSeq = e.Seq + 1
	}
	return nil
}

// Lookup returns the entry with the given IDs.
func (g *Grid) Lookup(k IDKey) (*Entry, bool) {
	e, ok := g.entries[k]
	return e, ok
}

// Cell returns the entries of cell c in insertion order.
// The slice must not be modified.
func (g *Grid) Cell(c Coord) []*Entry {
	return g.cells[c.Index()]
}

// Len returns the number of stored triples.
func (g *Grid) Len() int {
	return len(g.entries)
}

// Occupancy returns the number of non-empty cells.
func (g *Grid) Occupancy() int {
	n := 0
	for i := range g.cells {
		if len(g.cells[i]) > 0 {
			n++
		}
	}
	return n
}

// All iterates every entry, cell by cell.
func (g *Grid) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for i := range g.cells {
			for _, e := range g.cells[i] {
				if !yield(e) {
					return
				}
			}
		}
	}
}
