package model

import "fmt"

// Triple is a subject-predicate-object fact.
// Truth and Qualia are optional; nil selects the defaults.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Truth     *TruthValue
	Qualia    *Qualia
}

// Key returns the identity of the triple.
func (t Triple) Key() Key {
	return Key{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
}

// String returns a string representation of the triple.
func (t Triple) String() string {
	return t.Key().String()
}

// Key is the ordered (S,P,O) tuple that uniquely identifies a fact.
type Key struct {
	Subject   string
	Predicate string
	Object    string
}

// String returns a string representation of the Key.
func (k Key) String() string {
	return fmt.Sprintf("(%s %s %s)", k.Subject, k.Predicate, k.Object)
}

// Match is a single query result.
type Match struct {
	Key
	// Similarity is 1.0 for exact index hits, and the projected
	// Hamming similarity for resonance hits.
	Similarity float64
	Truth      TruthValue
	Qualia     Qualia
}
