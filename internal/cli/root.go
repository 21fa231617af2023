// Package cli wires the search engine into a cobra command tree.
// The commands are a thin collaborator layer; all search semantics live
// in the internal packages they call.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillscout/skillscout/internal/cache"
	"github.com/skillscout/skillscout/internal/config"
	"github.com/skillscout/skillscout/internal/embed"
	"github.com/skillscout/skillscout/internal/index"
	"github.com/skillscout/skillscout/internal/rank"
	"github.com/skillscout/skillscout/internal/search"
	"github.com/skillscout/skillscout/internal/skills"
)

var (
	cfgFile    string
	skillsFile string
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "skillscout",
	Short: "Hybrid search over a skill registry",
	Long: `skillscout indexes skill records and answers ranked, filtered,
paginated queries using fused lexical and semantic scoring with a
two-tier result cache.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.skillscout.yaml)")
	rootCmd.PersistentFlags().StringVar(&skillsFile, "skills", "skills.json", "path to the skills JSON file")
}

// loadConfig resolves the configuration file, defaulting to
// $HOME/.skillscout.yaml when present.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := home + "/.skillscout.yaml"
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	return config.Load(path)
}

// engine bundles the constructed pipeline for a command invocation.
type engine struct {
	store   *skills.MemoryStore
	service *search.Service
	cache   *cache.TieredCache
	vector  *index.VectorIndex
	closers []func() error
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// buildEngine constructs the full pipeline from config and the skills
// file, mirroring how a hosting process would wire the service.
func buildEngine(cfg *config.Config) (*engine, error) {
	store, err := skills.LoadSkillsFile(skillsFile)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	lexical, err := index.NewLexicalIndex()
	if err != nil {
		provider.Close()
		return nil, err
	}

	vector := index.NewVectorIndex(provider)

	resultCache, err := cache.New(cache.Config{
		L1MaxEntries: cfg.Cache.L1MaxEntries,
		L1TTL:        cfg.Cache.L1TTL,
		L2Path:       cfg.Cache.L2Path,
		L2TTL:        cfg.Cache.L2TTL,
	})
	if err != nil {
		lexical.Close()
		provider.Close()
		return nil, err
	}

	service := search.NewService(store, lexical, vector, resultCache, search.Config{
		Weights: rank.Weights{
			Lexical:      cfg.Search.LexicalWeight,
			Semantic:     cfg.Search.SemanticWeight,
			QualityBoost: cfg.Search.QualityBoost,
		},
		TopK:         cfg.Search.TopK,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		EmbedTimeout: cfg.Search.EmbedTimeout,
	})

	return &engine{
		store:   store,
		service: service,
		cache:   resultCache,
		vector:  vector,
		closers: []func() error{provider.Close, lexical.Close, vector.Close, resultCache.Close},
	}, nil
}

// buildProvider selects the embedding provider from config.
func buildProvider(cfg *config.Config) (embed.Provider, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embed.NewOpenAIProvider(
			cfg.Embedding.APIKey,
			cfg.Embedding.Model,
			cfg.Embedding.Endpoint,
			cfg.Embedding.Dimensions,
		)
	case "mock":
		return embed.NewMockProvider(cfg.Embedding.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
