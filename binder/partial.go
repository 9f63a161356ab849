package binder

import "github.com/hupe1980/holograph/hypervector"

// Mask selects the triple roles pinned by a query.
type Mask uint8

const (
	MaskSubject Mask = 1 << iota
	MaskPredicate
	MaskObject

	MaskNone Mask = 0
	MaskAll       = MaskSubject | MaskPredicate | MaskObject
)

// Has reports whether role r is pinned. The qualia role is never pinned.
func (m Mask) Has(r Role) bool {
	switch r {
	case RoleSubject:
		return m&MaskSubject != 0
	case RolePredicate:
		return m&MaskPredicate != 0
	case RoleObject:
		return m&MaskObject != 0
	default:
		return false
	}
}

// Count returns the number of pinned roles.
func (m Mask) Count() int {
	n := 0
	for r := RoleSubject; r <= RoleObject; r++ {
		if m.Has(r) {
			n++
		}
	}
	return n
}

// Fields holds the subject, predicate, and object vectors of a triple or a
// query. Only the fields selected by a Mask are read.
type Fields struct {
	Subject   *hypervector.Vector
	Predicate *hypervector.Vector
	Object    *hypervector.Vector
}

func (f Fields) get(r Role) *hypervector.Vector {
	switch r {
	case RoleSubject:
		return f.Subject
	case RolePredicate:
		return f.Predicate
	default:
		return f.Object
	}
}

// Project bundles only the role-filler pairs pinned by mask.
//
// Applied to a query it yields the partial query fingerprint; applied to a
// stored triple's fields it yields the stored fingerprint restricted to the
// same roles, so roles the query left open never count against similarity.
// An empty mask yields the zero vector.
func Project(f Fields, mask Mask) hypervector.Vector {
	pairs := make([]hypervector.Vector, 0, 3)
	for r := RoleSubject; r <= RoleObject; r++ {
		if mask.Has(r) {
			pairs = append(pairs, Fill(r, *f.get(r)))
		}
	}
	return hypervector.Bundle(pairs...)
}
