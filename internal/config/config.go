// Package config holds the skillscout configuration, loadable from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the complete skillscout configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
}

// SearchConfig tunes score fusion and pagination bounds.
type SearchConfig struct {
	LexicalWeight  float64       `yaml:"lexical_weight" mapstructure:"lexical_weight"`
	SemanticWeight float64       `yaml:"semantic_weight" mapstructure:"semantic_weight"`
	QualityBoost   float64       `yaml:"quality_boost" mapstructure:"quality_boost"`
	TopK           int           `yaml:"top_k" mapstructure:"top_k"`
	DefaultLimit   int           `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit       int           `yaml:"max_limit" mapstructure:"max_limit"`
	EmbedTimeout   time.Duration `yaml:"embed_timeout" mapstructure:"embed_timeout"`
}

// CacheConfig sizes the two cache tiers.
type CacheConfig struct {
	L1MaxEntries int           `yaml:"l1_max_entries" mapstructure:"l1_max_entries"`
	L1TTL        time.Duration `yaml:"l1_ttl" mapstructure:"l1_ttl"`
	L2Path       string        `yaml:"l2_path" mapstructure:"l2_path"` // empty disables the durable tier
	L2TTL        time.Duration `yaml:"l2_ttl" mapstructure:"l2_ttl"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "openai" or "mock"
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey     string `yaml:"api_key" mapstructure:"api_key"` // usually via SKILLSCOUT_EMBEDDING_API_KEY
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			LexicalWeight:  0.6,
			SemanticWeight: 0.4,
			QualityBoost:   0.2,
			TopK:           100,
			DefaultLimit:   10,
			MaxLimit:       100,
			EmbedTimeout:   2 * time.Second,
		},
		Cache: CacheConfig{
			L1MaxEntries: 512,
			L1TTL:        5 * time.Minute,
			L2Path:       defaultL2Path(),
			L2TTL:        time.Hour,
		},
		Embedding: EmbeddingConfig{
			Provider:   "mock",
			Model:      "text-embedding-3-small",
			Dimensions: 384,
		},
	}
}

// defaultL2Path returns ~/.skillscout/cache/results.db, or a relative
// fallback when the home directory cannot be resolved.
func defaultL2Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".skillscout", "cache", "results.db")
	}
	return filepath.Join(home, ".skillscout", "cache", "results.db")
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Search.LexicalWeight < 0 || c.Search.SemanticWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Search.LexicalWeight+c.Search.SemanticWeight == 0 {
		return fmt.Errorf("at least one search weight must be positive")
	}
	if c.Search.QualityBoost < 0 {
		return fmt.Errorf("quality_boost must be non-negative")
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.Search.MaxLimit <= 0 || c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit and max_limit must be positive")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("default_limit %d exceeds max_limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Cache.L1MaxEntries <= 0 {
		return fmt.Errorf("l1_max_entries must be positive")
	}
	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive")
	}
	return nil
}
