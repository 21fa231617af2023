package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillscout/skillscout/internal/cache"
	"github.com/skillscout/skillscout/internal/embed"
	"github.com/skillscout/skillscout/internal/index"
	"github.com/skillscout/skillscout/internal/rank"
	"github.com/skillscout/skillscout/internal/skills"
)

// Config tunes the service.
type Config struct {
	Weights      rank.Weights
	TopK         int           // candidate window per index
	DefaultLimit int           // page size when the query sets none
	MaxLimit     int           // hard page size ceiling
	EmbedTimeout time.Duration // bound on query embedding before degrading
}

// DefaultConfig returns service defaults.
func DefaultConfig() Config {
	return Config{
		Weights:      rank.DefaultWeights(),
		TopK:         100,
		DefaultLimit: 10,
		MaxLimit:     100,
		EmbedTimeout: 2 * time.Second,
	}
}

// Service orchestrates the hybrid search pipeline. The tiered cache is
// passed in at construction and owned by the caller, so tests and
// embedders can run isolated caches per instance.
type Service struct {
	store   skills.Store
	lexical *index.LexicalIndex
	vector  *index.VectorIndex
	cache   *cache.TieredCache
	cfg     Config

	reloading sync.Mutex
	dirty     atomic.Bool
}

// NewService wires the pipeline together and subscribes to store writes:
// any skill write flushes both cache tiers and marks the indexes dirty,
// so no stale read survives invalidation.
func NewService(store skills.Store, lexical *index.LexicalIndex, vector *index.VectorIndex, resultCache *cache.TieredCache, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultConfig().MaxLimit
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = DefaultConfig().EmbedTimeout
	}
	if cfg.Weights == (rank.Weights{}) {
		cfg.Weights = rank.DefaultWeights()
	}

	s := &Service{
		store:   store,
		lexical: lexical,
		vector:  vector,
		cache:   resultCache,
		cfg:     cfg,
	}
	s.dirty.Store(true) // first search populates the indexes

	store.OnWrite(func() {
		s.cache.Flush()
		s.dirty.Store(true)
	})

	return s
}

// Reload rebuilds both indexes from a fresh store snapshot and flushes
// the cache. Only one reload runs at a time; queries proceed
// concurrently against the previous index generation.
func (s *Service) Reload(ctx context.Context) error {
	s.reloading.Lock()
	defer s.reloading.Unlock()

	// Clear the flag before snapshotting, not after rebuilding: a write
	// landing mid-rebuild re-marks it, so the next search rebuilds again
	// instead of serving indexes that never saw the write.
	s.dirty.Store(false)

	snapshot, err := s.store.All(ctx)
	if err != nil {
		s.dirty.Store(true)
		return fmt.Errorf("failed to load skills: %w", err)
	}

	// Update both indexes in parallel. A down embedding backend degrades
	// semantic search but must not take lexical search with it.
	g, gctx := errgroup.WithContext(ctx)
	var vectorErr error
	g.Go(func() error {
		return s.lexical.Rebuild(gctx, snapshot)
	})
	g.Go(func() error {
		if err := s.vector.Rebuild(gctx, snapshot); err != nil {
			if errors.Is(err, embed.ErrUnavailable) {
				vectorErr = err
				return nil
			}
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.dirty.Store(true)
		return err
	}
	if vectorErr != nil {
		log.Printf("search: embedding unavailable, continuing lexical-only: %v", vectorErr)
	}

	s.cache.Flush()
	return nil
}

// Search executes one query: validate, consult the cache, and on a miss
// retrieve candidates from both indexes in parallel, rank, paginate, and
// write through. Malformed but well-typed input fails only with
// ErrEmptyQuery or OutOfRangeError; everything else degrades internally.
func (s *Service) Search(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()

	nq, err := s.validate(q)
	if err != nil {
		return nil, err
	}

	if s.dirty.Load() {
		if err := s.Reload(ctx); err != nil {
			return nil, fmt.Errorf("index reload failed: %w", err)
		}
	}

	key := cache.Key(nq.text, nq.filterMap(), nq.limit, nq.offset)
	if resp, ok := s.fromCache(key); ok {
		resp.Timing.TotalMs = time.Since(start).Milliseconds()
		return resp, nil
	}

	resp, err := s.execute(ctx, nq)
	if err != nil {
		return nil, err
	}

	s.toCache(key, resp)

	resp.Timing.TotalMs = time.Since(start).Milliseconds()
	return resp, nil
}

// Stats exposes cache counters read-only for observability.
func (s *Service) Stats() cache.Stats {
	return s.cache.Stats()
}

// normalizedQuery is the post-validation form of a query.
type normalizedQuery struct {
	text   string
	match  matcher
	limit  int
	offset int
}

// filterMap renders the normalized filters for cache key derivation.
func (nq normalizedQuery) filterMap() map[string]string {
	m := map[string]string{
		"category": nq.match.category,
	}
	if nq.match.hasTier {
		m["tier"] = string(nq.match.tier)
	}
	if nq.match.hasMin {
		m["min_quality"] = strconv.FormatFloat(nq.match.minQuality, 'f', 4, 64)
	}
	return m
}

// validate checks request bounds and produces the normalized execution
// form.
func (s *Service) validate(q Query) (normalizedQuery, error) {
	nq := normalizedQuery{
		text:   normalizeText(q.Text),
		offset: q.Offset,
		limit:  q.Limit,
	}

	if nq.text == "" && q.Filters.empty() {
		return nq, ErrEmptyQuery
	}

	if q.Offset < 0 {
		return nq, outOfRange("offset", "must be >= 0, got %d", q.Offset)
	}
	switch {
	case q.Limit < 0:
		return nq, outOfRange("limit", "must be >= 0, got %d", q.Limit)
	case q.Limit == 0:
		nq.limit = s.cfg.DefaultLimit
	case q.Limit > s.cfg.MaxLimit:
		return nq, outOfRange("limit", "must be <= %d, got %d", s.cfg.MaxLimit, q.Limit)
	}

	nq.match.category = normalizeText(q.Filters.Category)

	if q.Filters.TrustTier != "" {
		tier, ok := skills.ParseTrustTier(q.Filters.TrustTier)
		if !ok {
			return nq, outOfRange("trustTier", "unknown tier %q", q.Filters.TrustTier)
		}
		nq.match.tier = tier
		nq.match.hasTier = true
	}

	if q.Filters.MinQualityScore != nil {
		min := *q.Filters.MinQualityScore
		if min < 0 || min > 100 {
			return nq, outOfRange("minQualityScore", "must be within [0,100], got %g", min)
		}
		if min <= 1 {
			min *= 100 // 0-1 normalized input
		}
		nq.match.minQuality = min
		nq.match.hasMin = true
	}

	return nq, nil
}

// execute runs the retrieval+rank pipeline for a cache miss.
func (s *Service) execute(ctx context.Context, nq normalizedQuery) (*Response, error) {
	retrievalStart := time.Now()

	snapshot, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	byID := make(map[string]skills.Skill, len(snapshot))
	for _, sk := range snapshot {
		byID[sk.ID] = sk
	}

	var (
		lexHits  []index.LexicalHit
		vecHits  []index.VectorHit
		degraded bool
	)

	if nq.text != "" {
		// Retrieve lexical and semantic candidates in parallel; the query
		// embedding is time-boxed so a slow backend degrades instead of
		// blocking the whole search.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			hits, err := s.lexical.Search(gctx, nq.text, s.cfg.TopK)
			if err != nil {
				return fmt.Errorf("lexical retrieval: %w", err)
			}
			lexHits = hits
			return nil
		})
		g.Go(func() error {
			embedCtx, cancel := context.WithTimeout(gctx, s.cfg.EmbedTimeout)
			defer cancel()

			hits, err := s.vector.Search(embedCtx, nq.text, s.cfg.TopK)
			if err != nil {
				// Degrade, never fail: lexical-only results are still a
				// fully consistent ranking.
				if gctx.Err() == nil {
					log.Printf("search: semantic retrieval degraded: %v", err)
					degraded = true
					return nil
				}
				return err
			}
			vecHits = hits
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	retrievalMs := time.Since(retrievalStart).Milliseconds()

	// Cancellation checkpoint between retrieval and ranking.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := s.assemble(nq, snapshot, byID, lexHits, vecHits)
	ranked := rank.Rank(candidates, nq.text, s.cfg.Weights)

	// Cancellation checkpoint between ranking and pagination.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := len(ranked)
	page := paginate(ranked, nq.offset, nq.limit)

	return &Response{
		Items:    page,
		Total:    total,
		HasMore:  nq.offset+nq.limit < total,
		Timing:   Timing{RetrievalMs: retrievalMs},
		Degraded: degraded,
	}, nil
}

// assemble unions the candidate windows, applies filters, and attaches
// raw scores. With empty query text every filter-matching skill is a
// candidate with lexical score 0, so ranking falls entirely to
// quality/trust via the tie-break order.
func (s *Service) assemble(
	nq normalizedQuery,
	snapshot []skills.Skill,
	byID map[string]skills.Skill,
	lexHits []index.LexicalHit,
	vecHits []index.VectorHit,
) []rank.Candidate {
	if nq.text == "" {
		candidates := make([]rank.Candidate, 0, len(snapshot))
		for _, sk := range snapshot {
			if nq.match.matches(sk) {
				candidates = append(candidates, rank.Candidate{Skill: sk})
			}
		}
		return candidates
	}

	merged := make(map[string]*rank.Candidate, len(lexHits)+len(vecHits))
	for _, hit := range lexHits {
		sk, ok := byID[hit.ID]
		if !ok || !nq.match.matches(sk) {
			continue
		}
		merged[hit.ID] = &rank.Candidate{Skill: sk, Lexical: hit.Score}
	}
	for _, hit := range vecHits {
		if c, ok := merged[hit.ID]; ok {
			c.Semantic = hit.Similarity
			c.HasSemantic = true
			continue
		}
		sk, ok := byID[hit.ID]
		if !ok || !nq.match.matches(sk) {
			continue
		}
		merged[hit.ID] = &rank.Candidate{Skill: sk, Semantic: hit.Similarity, HasSemantic: true}
	}

	candidates := make([]rank.Candidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, *c)
	}
	return candidates
}

// paginate slices one page out of the full ranking.
func paginate(ranked []rank.Result, offset, limit int) []rank.Result {
	if offset >= len(ranked) {
		return []rank.Result{}
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end]
}

// cachedPage is the encoded form of a response stored in the cache.
// Timing and cache/degraded flags are per-execution and never cached.
type cachedPage struct {
	Items   []rank.Result `json:"items"`
	Total   int           `json:"total"`
	HasMore bool          `json:"has_more"`
}

func (s *Service) fromCache(key string) (*Response, bool) {
	payload, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(payload, &page); err != nil {
		// Corrupt entry: recover locally by dropping it and recomputing.
		log.Printf("search: corrupt cache entry, recomputing: %v", err)
		s.cache.Delete(key)
		return nil, false
	}

	return &Response{
		Items:    page.Items,
		Total:    page.Total,
		HasMore:  page.HasMore,
		CacheHit: true,
	}, true
}

func (s *Service) toCache(key string, resp *Response) {
	payload, err := json.Marshal(cachedPage{
		Items:   resp.Items,
		Total:   resp.Total,
		HasMore: resp.HasMore,
	})
	if err != nil {
		log.Printf("search: failed to encode cache entry: %v", err)
		return
	}
	s.cache.Set(key, payload)
}
