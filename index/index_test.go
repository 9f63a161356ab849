package index

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Lookups(t *testing.T) {
	x := New()
	assert.True(t, x.Insert(0, 1, 2))
	assert.True(t, x.Insert(0, 1, 5))
	assert.True(t, x.Insert(3, 1, 2))
	assert.True(t, x.Insert(0, 4, 2))
	assert.False(t, x.Insert(0, 1, 2), "duplicate")

	tests := []struct {
		name string
		got  []uint32
		want []uint32
	}{
		{"Objects", slices.Collect(x.Objects(0, 1)), []uint32{2, 5}},
		{"Subjects", slices.Collect(x.Subjects(1, 2)), []uint32{0, 3}},
		{"Predicates", slices.Collect(x.Predicates(0, 2)), []uint32{1, 4}},
		{"MissingPair", slices.Collect(x.Objects(9, 9)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, 4, x.Len())
	assert.True(t, x.Contains(3, 1, 2))
	assert.False(t, x.Contains(3, 1, 5))
	assert.Equal(t, uint64(2), x.Cardinality(KindObjects, PairKey(0, 1)))
	assert.Equal(t, 3, x.Keys(KindSubjects))
}

func TestIndex_EarlyBreak(t *testing.T) {
	x := New()
	for o := range uint32(10) {
		x.Insert(1, 2, o)
	}
	var seen []uint32
	for o := range x.Objects(1, 2) {
		seen = append(seen, o)
		if len(seen) == 3 {
			break
		}
	}
	assert.Equal(t, []uint32{0, 1, 2}, seen)
}

func TestIndex_RoundTrip(t *testing.T) {
	x := New()
	for s := range uint32(20) {
		for p := range uint32(3) {
			x.Insert(s, 100+p, (s*7+p)%11)
		}
	}

	var buf bytes.Buffer
	n, err := x.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	// Deterministic encoding.
	var again bytes.Buffer
	_, err = x.WriteTo(&again)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), again.Bytes())

	y, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, Equal(x, y))
	assert.Equal(t, x.Len(), y.Len())
	assert.Equal(t, slices.Collect(x.Subjects(100, 0)), slices.Collect(y.Subjects(100, 0)))
}

func TestRead_Corrupt(t *testing.T) {
	x := New()
	x.Insert(1, 2, 3)
	var buf bytes.Buffer
	_, err := x.WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()

	t.Run("Truncated", func(t *testing.T) {
		_, err := Read(bytes.NewReader(data[:len(data)-3]))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("MissingMirror", func(t *testing.T) {
		// Only the objects mapping carries the triple.
		y := New()
		y.add(KindObjects, PairKey(1, 2), 3)
		var b bytes.Buffer
		_, err := y.WriteTo(&b)
		require.NoError(t, err)
		_, err = Read(&b)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("Diverging", func(t *testing.T) {
		y := New()
		y.add(KindObjects, PairKey(1, 2), 3)
		y.add(KindSubjects, PairKey(2, 3), 1)
		y.add(KindPredicates, PairKey(1, 4), 2)
		var b bytes.Buffer
		_, err := y.WriteTo(&b)
		require.NoError(t, err)
		_, err = Read(&b)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestEqual(t *testing.T) {
	a, b := New(), New()
	a.Insert(1, 2, 3)
	assert.False(t, Equal(a, b))
	b.Insert(1, 2, 3)
	assert.True(t, Equal(a, b))
}
