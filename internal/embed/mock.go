package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"sync/atomic"
)

// MockProvider generates deterministic embeddings by hashing input text.
// Texts that share words produce correlated vectors, so similarity
// ordering is stable and meaningful enough for tests.
type MockProvider struct {
	dims        int
	unavailable atomic.Bool
	calls       atomic.Int64
}

// NewMockProvider creates a mock embedding provider for testing.
func NewMockProvider(dims int) *MockProvider {
	if dims <= 0 {
		dims = 64
	}
	return &MockProvider{dims: dims}
}

// SetUnavailable toggles failure mode: Embed returns ErrUnavailable.
func (p *MockProvider) SetUnavailable(down bool) {
	p.unavailable.Store(down)
}

// Calls returns how many Embed calls have been made.
func (p *MockProvider) Calls() int64 {
	return p.calls.Load()
}

// Embed produces a deterministic vector per text: the sum of per-word
// hash vectors. Shared vocabulary between two texts moves their vectors
// closer together.
func (p *MockProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	p.calls.Add(1)

	if p.unavailable.Load() {
		return nil, ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, p.dims)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			hash := sha256.Sum256([]byte(word))
			for j := 0; j < p.dims; j++ {
				offset := (j * 4) % (len(hash) - 3)
				val := binary.BigEndian.Uint32(hash[offset : offset+4])
				vec[j] += (float32(val)/float32(1<<32))*2.0 - 1.0
			}
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the dimensionality of mock embeddings.
func (p *MockProvider) Dimensions() int {
	return p.dims
}

// Close is a no-op for the mock provider.
func (p *MockProvider) Close() error {
	return nil
}
