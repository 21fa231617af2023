package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsContradictions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative lexical weight", func(c *Config) { c.Search.LexicalWeight = -0.1 }},
		{"both weights zero", func(c *Config) { c.Search.LexicalWeight = 0; c.Search.SemanticWeight = 0 }},
		{"negative quality boost", func(c *Config) { c.Search.QualityBoost = -1 }},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }},
		{"default limit above max", func(c *Config) { c.Search.DefaultLimit = 200 }},
		{"zero l1 entries", func(c *Config) { c.Cache.L1MaxEntries = 0 }},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "ollama" }},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Search, cfg.Search)
	assert.Equal(t, Default().Embedding, cfg.Embedding)
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  lexical_weight: 0.7
  semantic_weight: 0.3
cache:
  l1_max_entries: 64
  l2_path: ""
embedding:
  provider: openai
  api_key: test-key
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Search.LexicalWeight)
	assert.Equal(t, 0.3, cfg.Search.SemanticWeight)
	assert.Equal(t, 64, cfg.Cache.L1MaxEntries)
	assert.Empty(t, cfg.Cache.L2Path, "empty l2_path disables the durable tier")
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "test-key", cfg.Embedding.APIKey)

	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Search.TopK)
	assert.Equal(t, 2*time.Second, cfg.Search.EmbedTimeout)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  model: from-file\n"), 0o644))

	t.Setenv("SKILLSCOUT_EMBEDDING_MODEL", "from-env")
	t.Setenv("SKILLSCOUT_SEARCH_TOP_K", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedding.Model)
	assert.Equal(t, 50, cfg.Search.TopK)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "nope.yaml")
	_, err := Load(missing)
	assert.Error(t, err)

	malformed := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("search: [not a map"), 0o644))
	_, err = Load(malformed)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("search:\n  top_k: -1\n"), 0o644))
	_, err = Load(invalid)
	assert.Error(t, err)
}
