package embed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider embeds text via the OpenAI embeddings API (or any
// API-compatible endpoint).
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIProvider creates a provider for the given model.
// endpoint may be empty to use the default OpenAI base URL.
func NewOpenAIProvider(apiKey, model, endpoint string, dimensions int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider: api key is required")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("openai provider: dimensions must be positive, got %d", dimensions)
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed requests embeddings for all texts in a single API call.
// Network and API failures wrap ErrUnavailable so callers can degrade
// to lexical-only search.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrUnavailable, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) != p.dimensions {
			return nil, fmt.Errorf("%w: embedding has %d dimensions, want %d", ErrUnavailable, len(d.Embedding), p.dimensions)
		}
		out[i] = d.Embedding
	}
	return out, nil
}

// Dimensions returns the configured vector dimensionality.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// Close is a no-op; the API client holds no resources.
func (p *OpenAIProvider) Close() error {
	return nil
}
