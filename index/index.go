// Package index implements the exact pair index of the triple store.
//
// Three mappings answer every two-field lookup in O(1), independent of the
// spatial grid:
//
//	(S,P) -> {O}   Objects
//	(P,O) -> {S}   Subjects
//	(S,O) -> {P}   Predicates
//
// Fields are codebook IDs. Each set is a Roaring bitmap, so sets of any size
// stay compact, iterate in ascending ID order, and serialize portably.
//
// An Index is not safe for concurrent mutation. Callers serialize writes and
// may read concurrently between writes.
package index

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Kind selects one of the three mappings.
type Kind uint8

const (
	// KindObjects maps (S,P) to objects.
	KindObjects Kind = iota
	// KindSubjects maps (P,O) to subjects.
	KindSubjects
	// KindPredicates maps (S,O) to predicates.
	KindPredicates
)

// NumKinds is the number of mappings.
const NumKinds = 3

func (k Kind) String() string {
	switch k {
	case KindObjects:
		return "objects"
	case KindSubjects:
		return "subjects"
	case KindPredicates:
		return "predicates"
	default:
		return "unknown"
	}
}

// PairKey packs an ordered pair of IDs.
func PairKey(a, b uint32) uint64 {
	return uint64(a)<<32 | uint64(b)
}

// Index is the exact pair index.
type Index struct {
	maps  [NumKinds]map[uint64]*roaring.Bitmap
	count int
}

// New creates an empty index.
func New() *Index {
	x := &Index{}
	for k := range x.maps {
		x.maps[k] = make(map[uint64]*roaring.Bitmap)
	}
	return x
}

// Insert records the triple (s, p, o) in all three mappings.
// It returns false if the triple was already present.
func (x *Index) Insert(s, p, o uint32) bool {
	if x.Contains(s, p, o) {
		return false
	}
	x.add(KindObjects, PairKey(s, p), o)
	x.add(KindSubjects, PairKey(p, o), s)
	x.add(KindPredicates, PairKey(s, o), p)
	x.count++
	return true
}

func (x *Index) add(k Kind, key uint64, id uint32) {
	bm, ok := x.maps[k][key]
	if !ok {
		bm = roaring.New()
		x.maps[k][key] = bm
	}
	bm.Add(id)
}

// Contains reports whether the triple (s, p, o) is indexed.
func (x *Index) Contains(s, p, o uint32) bool {
	bm, ok := x.maps[KindObjects][PairKey(s, p)]
	return ok && bm.Contains(o)
}

// Objects iterates the objects of (s, p) in ascending ID order.
func (x *Index) Objects(s, p uint32) iter.Seq[uint32] {
	return x.lookup(KindObjects, PairKey(s, p))
}

// Subjects iterates the subjects of (p, o) in ascending ID order.
func (x *Index) Subjects(p, o uint32) iter.Seq[uint32] {
	return x.lookup(KindSubjects, PairKey(p, o))
}

// Predicates iterates the predicates linking s to o in ascending ID order.
func (x *Index) Predicates(s, o uint32) iter.Seq[uint32] {
	return x.lookup(KindPredicates, PairKey(s, o))
}

// Cardinality returns the size of the set stored under key in mapping k.
func (x *Index) Cardinality(k Kind, key uint64) uint64 {
	bm, ok := x.maps[k][key]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}

func (x *Index) lookup(k Kind, key uint64) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		bm, ok := x.maps[k][key]
		if !ok {
			return
		}
		it := bm.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Len returns the number of indexed triples.
func (x *Index) Len() int {
	return x.count
}

// Keys returns the number of distinct pairs in mapping k.
func (x *Index) Keys(k Kind) int {
	return len(x.maps[k])
}
