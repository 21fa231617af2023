package skills

import (
	"strings"
	"time"
)

// TrustTier is the curation confidence level of a skill.
// It is a closed set; anything else normalizes to TierUnknown at the
// store boundary so untyped strings never flow past it.
type TrustTier string

const (
	TierVerified     TrustTier = "verified"
	TierCommunity    TrustTier = "community"
	TierExperimental TrustTier = "experimental"
	TierUnknown      TrustTier = "unknown"
	TierLocal        TrustTier = "local"
)

// ParseTrustTier normalizes a raw tier string to a TrustTier.
// The second return value reports whether the input named a known tier.
func ParseTrustTier(s string) (TrustTier, bool) {
	switch TrustTier(strings.ToLower(strings.TrimSpace(s))) {
	case TierVerified:
		return TierVerified, true
	case TierCommunity:
		return TierCommunity, true
	case TierExperimental:
		return TierExperimental, true
	case TierLocal:
		return TierLocal, true
	case TierUnknown:
		return TierUnknown, true
	default:
		return TierUnknown, false
	}
}

// Skill is a single indexable skill record.
// Skills are created and updated by the Store; the search engine only
// derives indexes from them and never mutates them.
type Skill struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Author       string    `json:"author"`
	Tags         []string  `json:"tags"`
	QualityScore int       `json:"quality_score"` // 0-100
	TrustTier    TrustTier `json:"trust_tier"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Normalize clamps and normalizes a skill in place.
// QualityScore is clamped to [0,100], the trust tier is forced into the
// closed set, and tags are trimmed and de-duplicated preserving order.
func (s *Skill) Normalize() {
	if s.QualityScore < 0 {
		s.QualityScore = 0
	}
	if s.QualityScore > 100 {
		s.QualityScore = 100
	}
	s.TrustTier, _ = ParseTrustTier(string(s.TrustTier))

	seen := make(map[string]bool, len(s.Tags))
	tags := s.Tags[:0]
	for _, tag := range s.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	s.Tags = tags
}

// HasTag reports whether the skill carries the given tag (case-insensitive).
func (s *Skill) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SearchText returns the concatenated text used for passage embedding.
func (s *Skill) SearchText() string {
	parts := make([]string, 0, 3)
	if s.Name != "" {
		parts = append(parts, s.Name)
	}
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	if len(s.Tags) > 0 {
		parts = append(parts, strings.Join(s.Tags, " "))
	}
	return strings.Join(parts, "\n")
}
