// Package model defines core types used throughout holograph.
//
// # Facts
//
//   - Triple: subject, predicate, object, with optional TruthValue and Qualia
//   - Key: the (S,P,O) string tuple that identifies a Triple
//   - Match: a query result carrying similarity, truth, and qualia
//
// # Belief
//
// TruthValue follows non-axiomatic reasoning: Frequency is the proportion of
// positive evidence, Confidence how much evidence backs it. Repeated
// assertions of one fact are combined with Revise.
//
// # Felt Sense
//
// Qualia is a four-axis overlay (arousal, valence, tension, depth) encoded
// into every fact's fingerprint.
package model
