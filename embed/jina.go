package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// JinaBaseURL is the Jina AI API root.
	JinaBaseURL = "https://api.jina.ai/v1"

	// JinaModel is the default embedding model.
	JinaModel = "jina-embeddings-v3"
)

// ErrMissingAPIKey is returned by NewJina without an API key.
var ErrMissingAPIKey = errors.New("embed: missing API key")

// JinaOptions configures a Jina client.
type JinaOptions struct {
	// BaseURL of the OpenAI-compatible API.
	// Default: JinaBaseURL
	BaseURL string

	// Model name.
	// Default: JinaModel
	Model string

	// Dimensions requested from the API.
	// Default: DefaultDimensions
	Dimensions int

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	// Default: 5
	RequestsPerSecond float64

	// Burst is the limiter bucket size.
	// Default: 1
	Burst int

	// HTTPClient overrides the transport.
	HTTPClient *http.Client
}

// Jina embeds texts through the Jina AI embeddings API, which speaks the
// OpenAI embeddings protocol.
type Jina struct {
	client  *openai.Client
	model   string
	dims    int
	limiter *rate.Limiter
}

// NewJina creates a Jina client.
func NewJina(apiKey string, optFns ...func(*JinaOptions)) (*Jina, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := JinaOptions{
		BaseURL:           JinaBaseURL,
		Model:             JinaModel,
		Dimensions:        DefaultDimensions,
		RequestsPerSecond: 5,
		Burst:             1,
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Dimensions < 1 {
		return nil, fmt.Errorf("embed: invalid dimensions %d", opts.Dimensions)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = opts.BaseURL
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Jina{
		client:  openai.NewClientWithConfig(cfg),
		model:   opts.Model,
		dims:    opts.Dimensions,
		limiter: rate.NewLimiter(limit, max(opts.Burst, 1)),
	}, nil
}

// Dimensions returns the embedding size.
func (j *Jina) Dimensions() int {
	return j.dims
}

// EmbedTexts embeds texts in one request. Results are in input order.
func (j *Jina) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := j.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(j.model),
		Dimensions: j.dims,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: jina: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed: jina returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("embed: jina returned invalid index %d", d.Index)
		}
		if len(d.Embedding) != j.dims {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(d.Embedding), j.dims)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
