// Package rank fuses heterogeneous lexical and semantic scores into one
// deterministic total order, adjusted by skill quality and trust tier.
package rank

import (
	"sort"
	"strings"

	"github.com/skillscout/skillscout/internal/skills"
)

// Candidate is one skill in the retrieval window with its raw scores.
// Lexical is an unbounded bleve score; Semantic is cosine similarity in
// [-1, 1] and only meaningful when HasSemantic is set.
type Candidate struct {
	Skill       skills.Skill
	Lexical     float64
	Semantic    float64
	HasSemantic bool
}

// Result is a fixed-shape score breakdown for one ranked skill.
// Results are immutable once produced for a query execution.
type Result struct {
	SkillID       string  `json:"skill_id"`
	Name          string  `json:"name"`
	LexicalScore  float64 `json:"lexical_score"`
	SemanticScore float64 `json:"semantic_score"`
	FusedScore    float64 `json:"fused_score"`
	FinalScore    float64 `json:"final_score"`
	Rank          int     `json:"rank"`
}

// Weights configures score fusion and quality adjustment.
type Weights struct {
	Lexical      float64 // weight of normalized lexical score
	Semantic     float64 // weight of normalized semantic score
	QualityBoost float64 // k in final = fused * (1 + quality/100*k)
}

// DefaultWeights returns the default fusion weights.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.6, Semantic: 0.4, QualityBoost: 0.2}
}

// trustMultipliers re-rank by curation confidence. Local skills are
// trusted but never outrank verified ones.
var trustMultipliers = map[skills.TrustTier]float64{
	skills.TierVerified:     1.2,
	skills.TierLocal:        1.1,
	skills.TierCommunity:    1.0,
	skills.TierExperimental: 0.9,
	skills.TierUnknown:      0.9,
}

// TrustMultiplier returns the ranking multiplier for a tier.
func TrustMultiplier(tier skills.TrustTier) float64 {
	if m, ok := trustMultipliers[tier]; ok {
		return m
	}
	return trustMultipliers[skills.TierUnknown]
}

// Rank orders the full candidate window and returns the score breakdown
// for every candidate. queryText must already be normalized (lowercase,
// trimmed, collapsed whitespace); it drives the exact-name override.
//
// Fusion: lexical scores are min-max normalized over the window,
// semantic similarity is clamped to [0,1] with a fixed saturating
// function, and the two combine as a weighted sum. When no candidate has
// a semantic score (degraded embedding), the semantic weight collapses
// to zero and the lexical weight renormalizes to 1.
//
// The final order is fully deterministic: exact name match first, then
// final score descending, quality descending, skill id ascending.
func Rank(candidates []Candidate, queryText string, w Weights) []Result {
	if len(candidates) == 0 {
		return nil
	}

	wLex, wSem := w.Lexical, w.Semantic
	if !anySemantic(candidates) {
		wSem = 0
	}
	if wLex+wSem > 0 {
		total := wLex + wSem
		wLex /= total
		wSem /= total
	}

	maxLex := 0.0
	minLex := 0.0
	for i, c := range candidates {
		if i == 0 || c.Lexical < minLex {
			minLex = c.Lexical
		}
		if c.Lexical > maxLex {
			maxLex = c.Lexical
		}
	}
	lexRange := maxLex - minLex

	type scored struct {
		Result
		quality int
		exact   bool
	}

	rows := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		lexNorm := 0.0
		if lexRange > 0 {
			lexNorm = (c.Lexical - minLex) / lexRange
		} else if maxLex > 0 {
			lexNorm = 1.0
		}

		semNorm := 0.0
		if c.HasSemantic {
			semNorm = clamp01(c.Semantic)
		}

		fused := wLex*lexNorm + wSem*semNorm
		qualityBonus := float64(c.Skill.QualityScore) / 100.0 * w.QualityBoost
		final := fused * (1 + qualityBonus) * TrustMultiplier(c.Skill.TrustTier)

		rows = append(rows, scored{
			Result: Result{
				SkillID:       c.Skill.ID,
				Name:          c.Skill.Name,
				LexicalScore:  c.Lexical,
				SemanticScore: c.Semantic,
				FusedScore:    fused,
				FinalScore:    final,
			},
			quality: c.Skill.QualityScore,
			exact:   queryText != "" && normalizeName(c.Skill.Name) == queryText,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		// Exact identity match is a deterministic override, not a weight.
		if a.exact != b.exact {
			return a.exact
		}
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.quality != b.quality {
			return a.quality > b.quality
		}
		return a.SkillID < b.SkillID
	})

	out := make([]Result, len(rows))
	for i, row := range rows {
		row.Result.Rank = i + 1
		out[i] = row.Result
	}
	return out
}

func anySemantic(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.HasSemantic {
			return true
		}
	}
	return false
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// normalizeName lowercases and collapses whitespace the same way query
// text is normalized, so exact-match comparison is symmetric.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
