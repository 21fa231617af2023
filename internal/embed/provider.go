package embed

import (
	"context"
	"errors"
)

// ErrUnavailable signals that the embedding backend cannot produce
// vectors right now. Callers degrade to lexical-only search rather than
// failing the query.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Mode specifies the type of embedding to generate.
type Mode string

const (
	// ModeQuery generates embeddings optimized for search queries.
	ModeQuery Mode = "query"

	// ModePassage generates embeddings optimized for indexed skill text.
	ModePassage Mode = "passage"
)

// Provider defines the interface for embedding text into vectors.
// Implementations may use remote APIs or deterministic local fallbacks.
type Provider interface {
	// Embed converts texts into their vector representations.
	// Errors that mean "backend down" wrap ErrUnavailable.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions returns the dimensionality of produced vectors.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
