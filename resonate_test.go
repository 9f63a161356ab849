package holograph

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/holograph/model"
	"github.com/hupe1980/holograph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(matches []model.Match) map[model.Key]float64 {
	out := make(map[model.Key]float64, len(matches))
	for _, m := range matches {
		out[m.Key] = m.Similarity
	}
	return out
}

func sortedBySimilarity(matches []model.Match) bool {
	return slices.IsSortedFunc(matches, func(a, b model.Match) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})
}

func TestResonate_PinnedSubject(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	insert(t, kb, "Ada", "loves", "Jan")

	matches, err := kb.Resonate(ctx, Query{Subject: "Ada"}, 0.9)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, model.Key{Subject: "Ada", Predicate: "loves", Object: "Jan"}, matches[0].Key)
	assert.GreaterOrEqual(t, matches[0].Similarity, 0.9)
	assert.Equal(t, model.DefaultTruth, matches[0].Truth)
}

func TestResonate_AllUnknown(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	triples := testutil.NewRNG(11).Triples(50, 20, 4)
	for _, tr := range triples {
		require.NoError(t, kb.Insert(ctx, tr))
	}

	matches, err := kb.Resonate(ctx, Query{}, 1.0)
	require.NoError(t, err)
	require.Len(t, matches, len(triples))
	for i, m := range matches {
		assert.Equal(t, 1.0, m.Similarity)
		assert.Equal(t, triples[i].Key(), m.Key, "ties break by insertion order")
	}
}

func TestResonate_SupersetLaw(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	for _, tr := range testutil.NewRNG(5).Triples(300, 30, 3) {
		require.NoError(t, kb.Insert(ctx, tr))
	}

	queries := []Query{
		{Subject: "e1"},
		{Predicate: "p0"},
		{Subject: "e2", Predicate: "p1"},
		{Subject: "e3", Object: "e4"},
		{Subject: "e5", Predicate: "p2", Object: "e6"},
	}
	thresholds := []float64{0, 0.25, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

	for _, q := range queries {
		t.Run(q.String(), func(t *testing.T) {
			var prev map[model.Key]float64
			for _, th := range thresholds {
				matches, err := kb.Resonate(ctx, q, th)
				require.NoError(t, err)
				assert.True(t, sortedBySimilarity(matches))

				cur := keys(matches)
				for k := range cur {
					assert.GreaterOrEqual(t, cur[k], th)
				}
				for k := range cur {
					if prev != nil {
						assert.Contains(t, prev, k, "threshold %.2f returned %s missing at lower threshold", th, k)
					}
				}
				prev = cur
			}
		})
	}
}

func TestResonate_ExactImpliesResonant(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	triples := testutil.NewRNG(9).Triples(200, 25, 4)
	for _, tr := range triples {
		require.NoError(t, kb.Insert(ctx, tr))
	}

	for _, tr := range triples[:50] {
		exact, err := kb.QueryObject(ctx, tr.Subject, tr.Predicate)
		require.NoError(t, err)
		resonant, err := kb.Resonate(ctx, Query{Subject: tr.Subject, Predicate: tr.Predicate}, 1.0)
		require.NoError(t, err)
		got := keys(resonant)
		for _, m := range exact {
			assert.Contains(t, got, m.Key)
		}

		exact, err = kb.QuerySubject(ctx, tr.Predicate, tr.Object)
		require.NoError(t, err)
		resonant, err = kb.Resonate(ctx, Query{Predicate: tr.Predicate, Object: tr.Object}, 1.0)
		require.NoError(t, err)
		got = keys(resonant)
		for _, m := range exact {
			assert.Contains(t, got, m.Key)
		}

		exact, err = kb.QueryPredicate(ctx, tr.Subject, tr.Object)
		require.NoError(t, err)
		resonant, err = kb.Resonate(ctx, Query{Subject: tr.Subject, Object: tr.Object}, 1.0)
		require.NoError(t, err)
		got = keys(resonant)
		for _, m := range exact {
			assert.Contains(t, got, m.Key)
		}
	}
}

func TestResonate_InvalidThreshold(t *testing.T) {
	kb := newStore(t)
	insert(t, kb, "Ada", "loves", "Jan")

	for _, th := range []float64{-0.1, 1.01, math.NaN()} {
		_, err := kb.Resonate(context.Background(), Query{Subject: "Ada"}, th)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
}

func TestResonate_UnknownSymbol(t *testing.T) {
	kb := newStore(t)
	insert(t, kb, "Ada", "loves", "Jan")

	matches, err := kb.Resonate(context.Background(), Query{Subject: "Nobody"}, 0.9)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 3, kb.Stats().Symbols)

	_, err = kb.Resonate(context.Background(), Query{Object: "\xff"}, 0.9)
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

func TestResonate_Options(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	for _, tr := range testutil.NewRNG(21).Triples(120, 15, 3) {
		require.NoError(t, kb.Insert(ctx, tr))
	}

	full, err := kb.Resonate(ctx, Query{Subject: "e1"}, 0.4)
	require.NoError(t, err)
	require.Greater(t, len(full), 2)

	limited, err := kb.Resonate(ctx, Query{Subject: "e1"}, 0.4, WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, full[:2], limited)

	budget, err := kb.Resonate(ctx, Query{Subject: "e1"}, 0.4, WithCellLimit(1))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(budget), len(full))
	all := keys(full)
	for _, m := range budget {
		assert.Contains(t, all, m.Key)
	}
}

func TestResonateVector(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	insert(t, kb, "Ada", "loves", "Jan")
	insert(t, kb, "Bob", "hates", "Grace")
	insert(t, kb, "Cy", "knows", "Dee")

	fp, err := kb.Fingerprint(ctx, model.Triple{Subject: "Bob", Predicate: "hates", Object: "Grace"})
	require.NoError(t, err)

	matches, err := kb.ResonateVector(ctx, fp, 0)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "Bob", matches[0].Subject)
	assert.Equal(t, 1.0, matches[0].Similarity)
	assert.Less(t, matches[1].Similarity, 0.9)

	_, err = kb.ResonateVector(ctx, fp, 2)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestCascade(t *testing.T) {
	ctx := context.Background()
	kb := newStore(t)
	insert(t, kb, "Ada", "loves", "Jan")
	insert(t, kb, "Jan", "knows", "Grace")
	insert(t, kb, "Grace", "likes", "Ada")
	insert(t, kb, "Bob", "owns", "boat")

	chain := []model.Key{
		{Subject: "Ada", Predicate: "loves", Object: "Jan"},
		{Subject: "Jan", Predicate: "knows", Object: "Grace"},
		{Subject: "Grace", Predicate: "likes", Object: "Ada"},
	}

	for hops := range 5 {
		matches, err := kb.Cascade(ctx, "Ada", hops, 0.99)
		require.NoError(t, err)

		got := make([]model.Key, 0, len(matches))
		for _, m := range matches {
			got = append(got, m.Key)
		}
		assert.Equal(t, chain[:min(hops, len(chain))], got, "hops=%d", hops)
	}

	_, err := kb.Cascade(ctx, "", 2, 0.9)
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

func TestQuery_String(t *testing.T) {
	assert.Equal(t, "(Ada ? Jan)", Query{Subject: "Ada", Object: "Jan"}.String())
	assert.Equal(t, "(? ? ?)", Query{}.String())
}
