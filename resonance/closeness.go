package resonance

import (
	"slices"

	"github.com/hupe1980/holograph/grid"
	"github.com/hupe1980/holograph/hypervector"
)

// CellScore is the field closeness of one cell.
type CellScore struct {
	Cell      grid.Coord
	Entries   int
	Closeness float64
}

// RankCells scores the non-empty cells among candidates against the query
// fingerprint and returns them by descending closeness. Ties keep cell index
// order. Empty cells are dropped.
func RankCells(g *grid.Grid, candidates []grid.Coord, q *hypervector.Vector) []CellScore {
	scores := make([]CellScore, 0, len(candidates))
	for _, c := range candidates {
		entries := g.Cell(c)
		if len(entries) == 0 {
			continue
		}
		var sum int
		for _, en := range entries {
			sum += hypervector.HammingDistance(q, &en.Fingerprint)
		}
		scores = append(scores, CellScore{
			Cell:      c,
			Entries:   len(entries),
			Closeness: 1 - float64(sum)/float64(len(entries)*hypervector.Width),
		})
	}

	slices.SortStableFunc(scores, func(a, b CellScore) int {
		switch {
		case a.Closeness > b.Closeness:
			return -1
		case a.Closeness < b.Closeness:
			return 1
		default:
			return a.Cell.Index() - b.Cell.Index()
		}
	})
	return scores
}

func limitCells(scores []CellScore, limit int) []grid.Coord {
	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}
	out := make([]grid.Coord, len(scores))
	for i, s := range scores {
		out[i] = s.Cell
	}
	return out
}
