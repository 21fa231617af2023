package rank

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillscout/skillscout/internal/skills"
)

func candidate(id string, lex, sem float64, hasSem bool) Candidate {
	return Candidate{
		Skill:       skills.Skill{ID: id, Name: id, QualityScore: 50, TrustTier: skills.TierCommunity},
		Lexical:     lex,
		Semantic:    sem,
		HasSemantic: hasSem,
	}
}

func TestRankEmptyWindow(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Rank(nil, "query", DefaultWeights()))
}

func TestRankOrdersByFusedScore(t *testing.T) {
	t.Parallel()

	results := Rank([]Candidate{
		candidate("low", 1.0, 0.1, true),
		candidate("high", 5.0, 0.9, true),
		candidate("mid", 3.0, 0.5, true),
	}, "query", DefaultWeights())

	require.Len(t, results, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, ids(results))
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRankTotalOrderHasNoInversions(t *testing.T) {
	t.Parallel()

	candidates := []Candidate{
		candidate("e", 0.2, 0.9, true),
		candidate("a", 4.0, 0.1, true),
		candidate("c", 2.0, 0.4, true),
		candidate("b", 2.0, 0.4, true),
		candidate("d", 0.0, 0.0, true),
	}

	results := Rank(candidates, "query", DefaultWeights())
	require.Len(t, results, 5)

	sorted := sort.SliceIsSorted(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		return a.SkillID < b.SkillID
	})
	assert.True(t, sorted, "results must follow the tie-break order with no inversions")
}

func TestRankTieBreaksByQualityThenID(t *testing.T) {
	t.Parallel()

	a := candidate("zeta", 2.0, 0.5, true)
	b := candidate("alpha", 2.0, 0.5, true)
	c := candidate("beta", 2.0, 0.5, true)
	c.Skill.QualityScore = 80 // equal fused, higher quality wins

	results := Rank([]Candidate{a, b, c}, "query", DefaultWeights())
	require.Len(t, results, 3)
	assert.Equal(t, "beta", results[0].SkillID)
	// Remaining two are fully tied; id ascending decides.
	assert.Equal(t, "alpha", results[1].SkillID)
	assert.Equal(t, "zeta", results[2].SkillID)
}

func TestRankExactNameMatchOverride(t *testing.T) {
	t.Parallel()

	mk := func(id, name string, lex float64) Candidate {
		return Candidate{
			Skill:   skills.Skill{ID: id, Name: name, QualityScore: 50, TrustTier: skills.TierCommunity},
			Lexical: lex,
		}
	}

	// "code formatter" scores higher lexically, but the exact name match
	// must rank first regardless.
	results := Rank([]Candidate{
		mk("code", "Code Formatter", 9.0),
		mk("ts", "TypeScript Formatter", 2.0),
		mk("py", "Python Formatter", 5.0),
	}, "typescript formatter", DefaultWeights())

	require.Len(t, results, 3)
	assert.Equal(t, "ts", results[0].SkillID)
}

func TestRankDegradedModeRenormalizesWeights(t *testing.T) {
	t.Parallel()

	// Without semantic scores the lexical weight must collapse to 1, so
	// the top lexical candidate gets a full fused score of 1.0.
	results := Rank([]Candidate{
		candidate("top", 4.0, 0, false),
		candidate("bottom", 1.0, 0, false),
	}, "query", DefaultWeights())

	require.Len(t, results, 2)
	assert.Equal(t, "top", results[0].SkillID)
	assert.InDelta(t, 1.0, results[0].FusedScore, 1e-9)
}

func TestRankTrustMultiplierOrdering(t *testing.T) {
	t.Parallel()

	assert.Greater(t, TrustMultiplier(skills.TierVerified), TrustMultiplier(skills.TierLocal))
	assert.Greater(t, TrustMultiplier(skills.TierLocal), TrustMultiplier(skills.TierCommunity))
	assert.Greater(t, TrustMultiplier(skills.TierCommunity), TrustMultiplier(skills.TierExperimental))
	assert.Equal(t, TrustMultiplier(skills.TierExperimental), TrustMultiplier(skills.TierUnknown))
	assert.Equal(t, TrustMultiplier(skills.TierUnknown), TrustMultiplier(skills.TrustTier("bogus")))
}

func TestRankQualityAndTrustAdjustScores(t *testing.T) {
	t.Parallel()

	mk := func(id string, quality int, tier skills.TrustTier) Candidate {
		return Candidate{
			Skill:   skills.Skill{ID: id, Name: id, QualityScore: quality, TrustTier: tier},
			Lexical: 2.0, // identical raw scores across the window
		}
	}

	results := Rank([]Candidate{
		mk("experimental-perfect", 100, skills.TierExperimental),
		mk("verified-decent", 60, skills.TierVerified),
		mk("community-decent", 60, skills.TierCommunity),
	}, "query", DefaultWeights())

	require.Len(t, results, 3)
	// verified: 1.0 * 1.12 * 1.2 = 1.344; experimental: 1.2 * 0.9 = 1.08.
	assert.Equal(t, "verified-decent", results[0].SkillID)
	assert.Equal(t, "community-decent", results[1].SkillID)
	assert.Equal(t, "experimental-perfect", results[2].SkillID)
}

func TestRankZeroScoresFallToQualityTieBreak(t *testing.T) {
	t.Parallel()

	// Empty-text queries hand the ranker all-zero scores; ordering then
	// falls entirely to quality, then id.
	mk := func(id string, quality int) Candidate {
		return Candidate{Skill: skills.Skill{ID: id, Name: id, QualityScore: quality, TrustTier: skills.TierCommunity}}
	}

	results := Rank([]Candidate{mk("b", 40), mk("a", 40), mk("c", 90)}, "", DefaultWeights())
	require.Len(t, results, 3)
	assert.Equal(t, []string{"c", "a", "b"}, ids(results))
	assert.Zero(t, results[0].FinalScore)
}

func TestRankSemanticClampsNegativeCosine(t *testing.T) {
	t.Parallel()

	results := Rank([]Candidate{candidate("anti", 0, -0.8, true)}, "query", DefaultWeights())
	require.Len(t, results, 1)
	assert.Zero(t, results[0].FusedScore)
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.SkillID
	}
	return out
}
