package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTrustTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  TrustTier
		known bool
	}{
		{"verified", TierVerified, true},
		{"Verified", TierVerified, true},
		{"  COMMUNITY  ", TierCommunity, true},
		{"experimental", TierExperimental, true},
		{"local", TierLocal, true},
		{"unknown", TierUnknown, true},
		{"", TierUnknown, false},
		{"platinum", TierUnknown, false},
		{"verified!", TierUnknown, false},
	}

	for _, tt := range tests {
		got, known := ParseTrustTier(tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, tt.known, known, "input %q", tt.input)
	}
}

func TestSkillNormalize(t *testing.T) {
	t.Parallel()

	s := Skill{
		ID:           "s1",
		QualityScore: 150,
		TrustTier:    "Platinum",
		Tags:         []string{" react ", "React", "", "hooks"},
	}
	s.Normalize()

	assert.Equal(t, 100, s.QualityScore)
	assert.Equal(t, TierUnknown, s.TrustTier)
	assert.Equal(t, []string{"react", "hooks"}, s.Tags)

	s = Skill{ID: "s2", QualityScore: -5}
	s.Normalize()
	assert.Equal(t, 0, s.QualityScore)
}

func TestSkillHasTag(t *testing.T) {
	t.Parallel()

	s := Skill{Tags: []string{"React", "testing"}}
	assert.True(t, s.HasTag("react"))
	assert.True(t, s.HasTag("TESTING"))
	assert.False(t, s.HasTag("vue"))
}

func TestSkillSearchText(t *testing.T) {
	t.Parallel()

	s := Skill{
		Name:        "React Helper",
		Description: "Helpers for React apps",
		Tags:        []string{"react", "frontend"},
	}
	assert.Equal(t, "React Helper\nHelpers for React apps\nreact frontend", s.SearchText())

	assert.Equal(t, "", (&Skill{}).SearchText())
}
