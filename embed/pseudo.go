package embed

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
)

const (
	pseudoWindow  = 3
	pseudoSpread  = 16
	pseudoWeight  = 0.1
	pseudoByteAdd = 0.05
)

// Pseudo is a deterministic offline embedder. It hashes overlapping byte
// trigrams into signed contributions across the embedding, adds a per-byte
// feature, and L2-normalizes the result. Equal texts give equal embeddings
// and texts sharing trigrams give correlated ones.
type Pseudo struct {
	dims int
}

// NewPseudo creates a pseudo embedder with DefaultDimensions.
func NewPseudo() *Pseudo {
	return &Pseudo{dims: DefaultDimensions}
}

// Dimensions returns the embedding size.
func (p *Pseudo) Dimensions() int {
	return p.dims
}

// EmbedTexts embeds every text. It never fails except on a canceled context.
func (p *Pseudo) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.Embedding(t)
	}
	return out, nil
}

// Embedding returns the embedding of text.
func (p *Pseudo) Embedding(text string) []float32 {
	emb := make([]float32, p.dims)
	b := []byte(text)
	if len(b) == 0 {
		return emb
	}

	window := min(pseudoWindow, len(b))
	var idx [8]byte
	for i := 0; i+window <= len(b); i++ {
		h := fnv.New64a()
		_, _ = h.Write(b[i : i+window])
		binary.LittleEndian.PutUint64(idx[:], uint64(i))
		_, _ = h.Write(idx[:])
		sum := h.Sum64()

		for j := range pseudoSpread {
			pos := ((sum >> (j * 4)) + uint64(i)*17) % uint64(p.dims)
			if (sum>>(j+48))&1 == 0 {
				emb[pos] += pseudoWeight
			} else {
				emb[pos] -= pseudoWeight
			}
		}
	}

	for i, c := range b {
		emb[(int(c)*4+i)%p.dims] += pseudoByteAdd
	}

	var norm float64
	for _, x := range emb {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range emb {
			emb[i] *= inv
		}
	}
	return emb
}
