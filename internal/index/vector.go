package index

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/skillscout/skillscout/internal/embed"
	"github.com/skillscout/skillscout/internal/skills"
)

// VectorHit is a single semantic candidate with its cosine similarity
// in [-1, 1].
type VectorHit struct {
	ID         string
	Similarity float64
}

// cachedVector remembers a skill's embedding so rebuilds only re-embed
// skills whose content actually changed.
type cachedVector struct {
	updatedAt time.Time
	vector    []float32
}

// VectorIndex finds skills whose meaning is close to a query even
// without lexical overlap. Vectors are stored in a chromem-go collection
// and treated as opaque fixed-length float arrays.
type VectorIndex struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	provider   embed.Provider
	vectors    map[string]cachedVector
}

// NewVectorIndex creates an empty vector index backed by the given
// embedding provider.
func NewVectorIndex(provider embed.Provider) *VectorIndex {
	return &VectorIndex{
		db:       chromem.NewDB(),
		provider: provider,
		vectors:  map[string]cachedVector{},
	}
}

// embedBatchSize bounds how many texts go into one provider call, so
// progress reporting stays responsive on large corpora.
const embedBatchSize = 64

// Rebuild recomputes the collection from the given snapshot.
// Embeddings are computed in batches for skills that are new or whose
// UpdatedAt changed; unchanged skills reuse their cached vector.
//
// If the provider is unavailable the previous collection is kept and the
// error wraps embed.ErrUnavailable: the index self-heals on the next
// rebuild, and searches in the meantime degrade per Search semantics.
func (v *VectorIndex) Rebuild(ctx context.Context, list []skills.Skill) error {
	return v.RebuildWithProgress(ctx, list, nil)
}

// RebuildWithProgress is Rebuild with a progress callback, invoked with
// (completed, total) skill counts after each embedding batch. progress
// may be nil.
func (v *VectorIndex) RebuildWithProgress(ctx context.Context, list []skills.Skill, progress func(completed, total int)) error {
	dims := v.provider.Dimensions()

	v.mu.RLock()
	cached := make(map[string]cachedVector, len(v.vectors))
	for id, cv := range v.vectors {
		cached[id] = cv
	}
	v.mu.RUnlock()

	// Collect skills that need (re-)embedding.
	var pendingTexts []string
	var pendingIdx []int
	vectors := make(map[string]cachedVector, len(list))
	for i, skill := range list {
		if cv, ok := cached[skill.ID]; ok && cv.updatedAt.Equal(skill.UpdatedAt) {
			vectors[skill.ID] = cv
			continue
		}
		pendingTexts = append(pendingTexts, skill.SearchText())
		pendingIdx = append(pendingIdx, i)
	}

	// Cached reuse counts as completed immediately; the rest completes
	// batch by batch.
	completed := len(list) - len(pendingTexts)
	report := func() {
		if progress != nil {
			progress(completed, len(list))
		}
	}
	report()

	for start := 0; start < len(pendingTexts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pendingTexts) {
			end = len(pendingTexts)
		}

		embedded, err := v.provider.Embed(ctx, pendingTexts[start:end], embed.ModePassage)
		if err != nil {
			return fmt.Errorf("vector index rebuild: %w", err)
		}
		if len(embedded) != end-start {
			return fmt.Errorf("vector index rebuild: %w: got %d vectors for %d texts",
				embed.ErrUnavailable, len(embedded), end-start)
		}
		for j, vec := range embedded {
			skill := list[pendingIdx[start+j]]
			if len(vec) != dims {
				return fmt.Errorf("vector index rebuild: skill %s has %d dimensions, want %d",
					skill.ID, len(vec), dims)
			}
			vectors[skill.ID] = cachedVector{updatedAt: skill.UpdatedAt, vector: vec}
		}

		completed += end - start
		report()
	}

	// Build the replacement collection. Zero-norm vectors are skipped so
	// similarity never divides by zero.
	collection, err := v.db.CreateCollection("skills", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	for _, skill := range list {
		cv, ok := vectors[skill.ID]
		if !ok {
			continue
		}
		if isZeroNorm(cv.vector) {
			log.Printf("skipping zero-norm embedding for skill %s", skill.ID)
			continue
		}
		doc := chromem.Document{
			ID:        skill.ID,
			Content:   skill.SearchText(),
			Embedding: cv.vector,
		}
		if err := collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add skill %s: %w", skill.ID, err)
		}
	}

	v.mu.Lock()
	v.collection = collection
	v.vectors = vectors
	v.mu.Unlock()

	return nil
}

// Search embeds the query text and returns the top-limit skills by
// cosine similarity. An unavailable provider returns (nil, wrapped
// embed.ErrUnavailable); the caller completes the query lexical-only.
func (v *VectorIndex) Search(ctx context.Context, text string, limit int) ([]VectorHit, error) {
	embedded, err := v.provider.Embed(ctx, []string{text}, embed.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	if len(embedded) == 0 {
		return nil, fmt.Errorf("query embedding: %w: empty response", embed.ErrUnavailable)
	}
	return v.SearchVector(ctx, embedded[0], limit)
}

// SearchVector returns the top-limit skills by cosine similarity to a
// precomputed query vector. A zero-norm query vector matches nothing.
func (v *VectorIndex) SearchVector(ctx context.Context, vec []float32, limit int) ([]VectorHit, error) {
	if limit <= 0 || isZeroNorm(vec) {
		return nil, nil
	}

	v.mu.RLock()
	collection := v.collection
	v.mu.RUnlock()

	if collection == nil {
		return nil, nil
	}

	// chromem rejects result counts above the collection size.
	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	docs, err := collection.QueryEmbedding(ctx, vec, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]VectorHit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, VectorHit{ID: doc.ID, Similarity: float64(doc.Similarity)})
	}
	return hits, nil
}

// Count returns the number of skills with a stored vector.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.collection == nil {
		return 0
	}
	return v.collection.Count()
}

// Close releases resources. chromem-go needs no explicit cleanup.
func (v *VectorIndex) Close() error {
	return nil
}

// isZeroNorm reports whether a vector has (near) zero magnitude.
func isZeroNorm(vec []float32) bool {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum) < 1e-9
}
