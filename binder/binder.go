// Package binder composes symbol and role vectors into triple fingerprints.
//
// A triple (S, P, O) with qualia Q is encoded as
//
//	Bundle(S ⊕ ROLE_S, P ⊕ ROLE_P, O ⊕ ROLE_O, enc(Q) ⊕ ROLE_Q)
//
// where ⊕ is XOR binding. Binding is self-inverse, so a role can be unbound
// from a composite; bundling is lossy, so an unbound filler is only an
// approximation and must be cleaned up against the codebook.
package binder

import (
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/holograph/hypervector"
	"github.com/hupe1980/holograph/internal/hash"
)

// Role tags the position a filler takes in a triple.
type Role uint8

const (
	RoleSubject Role = iota
	RolePredicate
	RoleObject
	RoleQualia
)

// NumRoles is the number of distinct roles.
const NumRoles = 4

func (r Role) String() string {
	switch r {
	case RoleSubject:
		return "S"
	case RolePredicate:
		return "P"
	case RoleObject:
		return "O"
	case RoleQualia:
		return "Q"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// roleStream separates role vectors from symbol vectors even if a symbol
// happens to equal a role tag.
const roleStream = 0x726f6c6573000000 // "roles"

var roleVectors = func() [NumRoles]hypervector.Vector {
	var out [NumRoles]hypervector.Vector
	for r := range NumRoles {
		tag := "role:" + Role(r).String()
		rng := rand.New(rand.NewPCG(hash.FNV64a(tag), roleStream))
		out[r] = hypervector.Balance(hypervector.Random(rng), rng)
	}
	return out
}()

// RoleVector returns the fixed vector for role r. Role vectors are identical
// in every process, which keeps persisted fingerprints valid after a reload.
func RoleVector(r Role) hypervector.Vector {
	return roleVectors[r]
}

// Fill binds a filler to its role.
func Fill(r Role, filler hypervector.Vector) hypervector.Vector {
	return hypervector.Bind(filler, roleVectors[r])
}

// Unbind removes role r from a composite. The result is a noisy estimate of
// the filler; pass it to codebook cleanup to recover the symbol.
func Unbind(composite hypervector.Vector, r Role) hypervector.Vector {
	return hypervector.Bind(composite, roleVectors[r])
}

// EncodeTriple builds the composite fingerprint of a triple.
func EncodeTriple(s, p, o hypervector.Vector, qualia hypervector.Vector) hypervector.Vector {
	return hypervector.Bundle(
		Fill(RoleSubject, s),
		Fill(RolePredicate, p),
		Fill(RoleObject, o),
		Fill(RoleQualia, qualia),
	)
}
