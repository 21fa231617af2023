// Package search is the single entry point external callers use: it
// validates queries, orchestrates cache lookup, parallel candidate
// retrieval, ranking, and pagination.
package search

import (
	"strings"

	"github.com/skillscout/skillscout/internal/rank"
	"github.com/skillscout/skillscout/internal/skills"
)

// Filters narrows a query to matching skills.
// MinQualityScore accepts either a 0-1 normalized value or a 0-100 raw
// value; values in (1, 100] are treated as raw.
type Filters struct {
	Category        string   `json:"category,omitempty"`
	TrustTier       string   `json:"trust_tier,omitempty"`
	MinQualityScore *float64 `json:"min_quality_score,omitempty"`
}

// empty reports whether no filter is set.
func (f Filters) empty() bool {
	return f.Category == "" && f.TrustTier == "" && f.MinQualityScore == nil
}

// Query is a validated-on-entry search request.
type Query struct {
	Text    string  `json:"text"`
	Filters Filters `json:"filters"`
	Limit   int     `json:"limit"`  // 0 means the configured default
	Offset  int     `json:"offset"` // >= 0
}

// Timing is observability metadata on a response; it never affects
// behavior.
type Timing struct {
	RetrievalMs int64 `json:"retrieval_ms"`
	TotalMs     int64 `json:"total_ms"`
}

// Response is one fully consistent page of ranked results.
// Total reflects the full match count before pagination.
type Response struct {
	Items    []rank.Result `json:"items"`
	Total    int           `json:"total"`
	HasMore  bool          `json:"has_more"`
	Timing   Timing        `json:"timing"`
	Degraded bool          `json:"degraded"`  // semantic scoring was unavailable
	CacheHit bool          `json:"cache_hit"` // served from the tiered cache
}

// normalizeText lowercases, trims, and collapses internal whitespace.
// It is applied to query text before indexing, ranking, and cache-key
// derivation so all three see the same canonical form.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matcher is the compiled filter predicate for one query execution.
type matcher struct {
	category   string           // lowercase; matches tag membership
	tier       skills.TrustTier // empty string means unset
	hasTier    bool
	minQuality float64 // raw 0-100 scale
	hasMin     bool
}

func (m matcher) matches(s skills.Skill) bool {
	if m.hasTier && s.TrustTier != m.tier {
		return false
	}
	if m.category != "" && !s.HasTag(m.category) {
		return false
	}
	if m.hasMin && float64(s.QualityScore) < m.minQuality {
		return false
	}
	return true
}
