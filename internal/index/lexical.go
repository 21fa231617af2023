// Package index holds the two retrieval indexes the search service fans
// out to: a bleve-backed lexical index and a chromem-backed vector index.
// Both are rebuilt from store snapshots and are safe for concurrent
// queries during rebuilds.
package index

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/skillscout/skillscout/internal/skills"
)

// Field weights for lexical scoring. A name match is the strongest
// relevance signal, then tags, then description.
const (
	nameBoost        = 3.0
	tagsBoost        = 2.0
	descriptionBoost = 1.0
)

// LexicalHit is a single lexical candidate with its raw bleve score.
// Scores are not normalized against the semantic scale here; the ranker
// owns normalization.
type LexicalHit struct {
	ID    string
	Score float64
}

// LexicalIndex scores skills against free-text queries using
// field-weighted term matching over an in-memory bleve index.
type LexicalIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewLexicalIndex creates an empty lexical index.
func NewLexicalIndex() (*LexicalIndex, error) {
	idx, err := bleve.NewMemOnly(buildSkillMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &LexicalIndex{index: idx}, nil
}

// buildSkillMapping creates the index mapping for skill documents.
func buildSkillMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Searchable text fields use the standard analyzer.
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = false
	nameMapping.Index = true

	descMapping := bleve.NewTextFieldMapping()
	descMapping.Analyzer = "standard"
	descMapping.Store = false
	descMapping.Index = true

	// Tags are matched term-wise but not stemmed differently from text;
	// the standard analyzer keeps multi-word tags searchable.
	tagsMapping := bleve.NewTextFieldMapping()
	tagsMapping.Analyzer = "standard"
	tagsMapping.Store = false
	tagsMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("description", descMapping)
	docMapping.AddFieldMappingsAt("tags", tagsMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// skillToDocument converts a skill to a bleve document.
func skillToDocument(s skills.Skill) map[string]interface{} {
	return map[string]interface{}{
		"name":        s.Name,
		"description": s.Description,
		"tags":        s.Tags,
	}
}

// Rebuild replaces the index contents with the given snapshot.
// The new index is built off to the side and swapped in atomically, so
// concurrent searches always see a complete index.
func (l *LexicalIndex) Rebuild(ctx context.Context, list []skills.Skill) error {
	idx, err := bleve.NewMemOnly(buildSkillMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	const batchSize = 500
	batch := idx.NewBatch()
	for i, skill := range list {
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				idx.Close()
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(skill.ID, skillToDocument(skill)); err != nil {
			idx.Close()
			return fmt.Errorf("failed to index skill %s: %w", skill.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := idx.Batch(batch); err != nil {
				idx.Close()
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = idx.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			idx.Close()
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	l.mu.Lock()
	old := l.index
	l.index = idx
	l.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Search returns up to limit candidates for the query text, scored by
// field-weighted term matching (name 3x, tags 2x, description 1x).
//
// The query is fed through per-field match queries, never through bleve's
// query-string syntax, so characters that are special to that syntax
// (quotes, wildcards, booleans, parentheses, brackets) are analyzed as
// plain text. Malformed-looking input executes and may simply match
// nothing; it never errors.
func (l *LexicalIndex) Search(ctx context.Context, text string, limit int) ([]LexicalHit, error) {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil, nil
	}

	nameQuery := bleve.NewMatchQuery(text)
	nameQuery.SetField("name")
	nameQuery.SetBoost(nameBoost)

	tagsQuery := bleve.NewMatchQuery(text)
	tagsQuery.SetField("tags")
	tagsQuery.SetBoost(tagsBoost)

	descQuery := bleve.NewMatchQuery(text)
	descQuery.SetField("description")
	descQuery.SetBoost(descriptionBoost)

	var finalQuery query.Query = bleve.NewDisjunctionQuery(nameQuery, tagsQuery, descQuery)

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)

	// Hold the read lock across the query so Rebuild cannot close this
	// generation underneath an in-flight search. Reads of the RWMutex
	// still proceed concurrently; Rebuild's swap waits for them to drain.
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.index == nil {
		return nil, nil
	}

	result, err := l.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]LexicalHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, LexicalHit{ID: hit.ID, Score: hit.Score})
	}
	return hits, nil
}

// DocCount returns the number of indexed skills.
func (l *LexicalIndex) DocCount() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.DocCount()
}

// Close releases the underlying index.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index != nil {
		err := l.index.Close()
		l.index = nil
		return err
	}
	return nil
}
