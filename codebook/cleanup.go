package codebook

import "github.com/hupe1980/holograph/hypervector"

// Match is the result of a cleanup.
type Match struct {
	Symbol   string
	ID       uint32
	Distance int
}

// Similarity returns 1 - Distance/Width.
func (m Match) Similarity() float64 {
	return 1 - float64(m.Distance)/hypervector.Width
}

// Cleanup returns the entry nearest to noisy by Hamming distance.
// Ties go to the earliest-created symbol. ok is false only when the
// codebook is empty.
//
// The nearest entry is always returned, however far away; callers that need
// a confident answer should check Distance or use CleanupWithin.
func (c *Codebook) Cleanup(noisy hypervector.Vector) (Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.vectors) == 0 {
		return Match{}, false
	}

	best := Match{Distance: hypervector.Width + 1}
	for i := range c.vectors {
		d := hypervector.HammingDistance(&noisy, &c.vectors[i])
		if d < best.Distance {
			best = Match{Symbol: c.symbols[i], ID: uint32(i), Distance: d}
		}
	}
	return best, true
}

// CleanupWithin is like Cleanup but rejects a nearest entry farther than
// maxDistance bits.
func (c *Codebook) CleanupWithin(noisy hypervector.Vector, maxDistance int) (Match, bool) {
	m, ok := c.Cleanup(noisy)
	if !ok || m.Distance > maxDistance {
		return Match{}, false
	}
	return m, true
}
