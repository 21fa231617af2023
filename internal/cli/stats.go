package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show result cache hit/miss counters",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	stats := eng.service.Stats()
	l1, l2 := eng.cache.Len()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "L1: %d entries, %d hits, %d misses\n", l1, stats.L1Hits, stats.L1Misses)
	fmt.Fprintf(out, "L2: %d entries, %d hits, %d misses\n", l2, stats.L2Hits, stats.L2Misses)
	fmt.Fprintf(out, "flushes: %d\n", stats.Flushes)
	return nil
}
