package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/holograph/hypervector"
)

// DefaultDimensions is the embedding size of jina-embeddings-v3 and Pseudo.
const DefaultDimensions = 1024

var (
	// ErrEmptyText is returned when asked to embed an empty string.
	ErrEmptyText = errors.New("embed: empty text")

	// ErrDimensionMismatch is returned when an embedding has the wrong size.
	ErrDimensionMismatch = errors.New("embed: dimension mismatch")
)

// Provider produces the hypervector for a symbol.
type Provider interface {
	Embed(ctx context.Context, text string) (hypervector.Vector, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, text string) (hypervector.Vector, error)

// Embed calls f(ctx, text).
func (f ProviderFunc) Embed(ctx context.Context, text string) (hypervector.Vector, error) {
	return f(ctx, text)
}

// Embedder produces dense float embeddings, one per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// NewProvider combines an embedder and a binarizer into a Provider.
func NewProvider(e Embedder, b *Binarizer) Provider {
	return &binarized{embedder: e, binarizer: b}
}

type binarized struct {
	embedder  Embedder
	binarizer *Binarizer
}

func (p *binarized) Embed(ctx context.Context, text string) (hypervector.Vector, error) {
	if text == "" {
		return hypervector.Vector{}, ErrEmptyText
	}
	embs, err := p.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return hypervector.Vector{}, err
	}
	if len(embs) != 1 {
		return hypervector.Vector{}, fmt.Errorf("embed: got %d embeddings for 1 text", len(embs))
	}
	return p.binarizer.Binarize(embs[0])
}
