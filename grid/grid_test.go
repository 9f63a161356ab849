package grid

import (
	"testing"

	"github.com/hupe1980/holograph/codebook"
	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoord(t *testing.T) {
	for i := range NumCells {
		c := CoordOf(i)
		require.True(t, c.Valid())
		require.Equal(t, i, c.Index())
	}
	assert.False(t, Coord{X: 5}.Valid())
	assert.Equal(t, "(1,2,3)", Coord{1, 2, 3}.String())
}

func TestAddress_Deterministic(t *testing.T) {
	s := codebook.Generate("Ada", 1)
	p := codebook.Generate("loves", 1)
	o := codebook.Generate("Jan", 1)

	a := Address(&s, &p, &o)
	assert.True(t, a.Valid())
	assert.Equal(t, a, Address(&s, &p, &o))
	assert.Equal(t, AxisHash(&s), a.X)
	assert.Equal(t, AxisHash(&o), a.Z)
}

func TestAxisHash_Spread(t *testing.T) {
	rng := testutil.NewRNG(1)
	var hist [Size]int
	for range 1000 {
		v := rng.Vector()
		hist[AxisHash(&v)]++
	}
	for i, n := range hist {
		assert.Greater(t, n, 100, "position %d underused", i)
	}
}

func TestCellsForKnown(t *testing.T) {
	s := codebook.Generate("Ada", 1)
	p := codebook.Generate("loves", 1)
	o := codebook.Generate("Jan", 1)
	addr := Address(&s, &p, &o)

	tests := []struct {
		name    string
		s, p, o *hypervector.Vector
		want    int
	}{
		{"AllKnown", &s, &p, &o, 1},
		{"TwoKnown", &s, &p, nil, 5},
		{"OneKnown", nil, nil, &o, 25},
		{"NoneKnown", nil, nil, nil, NumCells},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := CellsForKnown(tt.s, tt.p, tt.o)
			assert.Len(t, cells, tt.want)
			assert.Contains(t, cells, addr)
		})
	}
}

func newEntry(s, p, o uint32, cell Coord) *Entry {
	return &Entry{
		IDs:    IDKey{s, p, o},
		Key:    model.Key{Subject: "s", Predicate: "p", Object: "o"},
		Truth:  model.DefaultTruth,
		Qualia: model.NeutralQualia,
		Cell:   cell,
	}
}

func TestGrid_InsertAndUpdate(t *testing.T) {
	g := New()
	cell := Coord{1, 1, 1}

	e1, inserted := g.Insert(newEntry(0, 1, 2, cell))
	assert.True(t, inserted)
	assert.Equal(t, uint64(0), e1.Seq)

	e2, inserted := g.Insert(newEntry(3, 1, 2, cell))
	assert.True(t, inserted)
	assert.Equal(t, uint64(1), e2.Seq)

	upd := newEntry(0, 1, 2, cell)
	upd.Truth = model.TruthValue{Frequency: 0.1, Confidence: 0.2}
	got, inserted := g.Insert(upd)
	assert.False(t, inserted)
	assert.Same(t, e1, got)
	assert.Equal(t, upd.Truth, e1.Truth)
	assert.Equal(t, uint64(0), e1.Seq)

	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.Cell(cell), 2)
	assert.Equal(t, 1, g.Occupancy())

	found, ok := g.Lookup(IDKey{3, 1, 2})
	assert.True(t, ok)
	assert.Same(t, e2, found)

	n := 0
	for range g.All() {
		n++
	}
	assert.Equal(t, 2, n)
}

func TestGrid_Restore(t *testing.T) {
	g := New()

	e := newEntry(0, 1, 2, Coord{0, 0, 4})
	e.Seq = 41
	require.NoError(t, g.Restore(e))

	// Duplicate IDs and invalid cells are rejected.
	assert.Error(t, g.Restore(newEntry(0, 1, 2, Coord{0, 0, 4})))
	assert.Error(t, g.Restore(newEntry(9, 9, 9, Coord{7, 0, 0})))

	// New inserts continue after the highest restored sequence number.
	next, _ := g.Insert(newEntry(5, 5, 5, Coord{}))
	assert.Equal(t, uint64(42), next.Seq)

	// Insert ignores a preset sequence number.
	preset := newEntry(6, 6, 6, Coord{})
	preset.Seq = 7
	got, _ := g.Insert(preset)
	assert.Equal(t, uint64(43), got.Seq)
}
