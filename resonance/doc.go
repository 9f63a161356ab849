// Package resonance implements similarity search over grid cells.
//
// A resonance query pins any subset of the subject, predicate, and object
// fields. The pinned role-filler pairs are bundled into a partial query
// fingerprint, and every entry in the candidate cells is scored against the
// projection of its stored fields onto the same roles:
//
//	sim = 1 - hamming(query, projection) / W
//
// Fields the query leaves open never count against an entry, so an exact
// match on every pinned field always scores 1.0.
//
// # Field closeness
//
// When more than one cell is a candidate, cells are ranked by the field
// closeness score
//
//	closeness(cell) = 1 - sum(popcount(query ^ fingerprint)) / (n * W)
//
// over the n entries of the cell. Cells are scanned in descending closeness.
// A cell budget may stop the scan early; without one every candidate cell is
// scanned and the result is independent of the ranking.
//
// Cells are scanned in parallel. Results are sorted by descending similarity
// and then by ascending insertion sequence, so output is deterministic.
package resonance
