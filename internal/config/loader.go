package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file (optional) layered over
// defaults, with SKILLSCOUT_* environment variable overrides
// (e.g. SKILLSCOUT_EMBEDDING_API_KEY, SKILLSCOUT_CACHE_L2_PATH).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault("search.lexical_weight", defaults.Search.LexicalWeight)
	v.SetDefault("search.semantic_weight", defaults.Search.SemanticWeight)
	v.SetDefault("search.quality_boost", defaults.Search.QualityBoost)
	v.SetDefault("search.top_k", defaults.Search.TopK)
	v.SetDefault("search.default_limit", defaults.Search.DefaultLimit)
	v.SetDefault("search.max_limit", defaults.Search.MaxLimit)
	v.SetDefault("search.embed_timeout", defaults.Search.EmbedTimeout)
	v.SetDefault("cache.l1_max_entries", defaults.Cache.L1MaxEntries)
	v.SetDefault("cache.l1_ttl", defaults.Cache.L1TTL)
	v.SetDefault("cache.l2_path", defaults.Cache.L2Path)
	v.SetDefault("cache.l2_ttl", defaults.Cache.L2TTL)
	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.model", defaults.Embedding.Model)
	v.SetDefault("embedding.dimensions", defaults.Embedding.Dimensions)
	v.SetDefault("embedding.endpoint", defaults.Embedding.Endpoint)
	v.SetDefault("embedding.api_key", defaults.Embedding.APIKey)

	v.SetEnvPrefix("SKILLSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
