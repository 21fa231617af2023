package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillscout/skillscout/internal/search"
)

var (
	searchTier       string
	searchCategory   string
	searchMinQuality float64
	searchLimit      int
	searchOffset     int
)

var searchCmd = &cobra.Command{
	Use:   "search [query text]",
	Short: "Run a ranked, filtered query against the skill registry",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchTier, "tier", "", "filter by trust tier (verified|community|experimental|unknown|local)")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by category (matched against tags)")
	searchCmd.Flags().Float64Var(&searchMinQuality, "min-quality", -1, "minimum quality score (0-1 normalized or 0-100 raw)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "page size (0 = default)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "page offset")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	q := search.Query{
		Text:   strings.Join(args, " "),
		Limit:  searchLimit,
		Offset: searchOffset,
		Filters: search.Filters{
			Category:  searchCategory,
			TrustTier: searchTier,
		},
	}
	if cmd.Flags().Changed("min-quality") {
		min := searchMinQuality
		q.Filters.MinQualityScore = &min
	}

	resp, err := eng.service.Search(cmd.Context(), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range resp.Items {
		fmt.Fprintf(out, "%3d. %-40s %s  score=%.4f (lex=%.3f sem=%.3f)\n",
			item.Rank, item.Name, item.SkillID, item.FinalScore, item.LexicalScore, item.SemanticScore)
	}
	fmt.Fprintf(out, "\n%d of %d results", len(resp.Items), resp.Total)
	if resp.HasMore {
		fmt.Fprintf(out, " (more available)")
	}
	if resp.Degraded {
		fmt.Fprintf(out, " [lexical-only: embedding unavailable]")
	}
	if resp.CacheHit {
		fmt.Fprintf(out, " [cached]")
	}
	fmt.Fprintf(out, "  retrieval=%dms total=%dms\n", resp.Timing.RetrievalMs, resp.Timing.TotalMs)

	return nil
}
