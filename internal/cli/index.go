package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Precompute skill embeddings and warm both indexes",
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()
	list, err := eng.store.All(ctx)
	if err != nil {
		return err
	}

	// Warming the vector index here makes first-query latency
	// predictable. The bar advances per skill as embedding batches land.
	bar := progressbar.Default(int64(len(list)), "embedding skills")
	err = eng.vector.RebuildWithProgress(ctx, list, func(completed, total int) {
		bar.Set(completed)
	})
	if err != nil {
		return fmt.Errorf("embedding precompute failed: %w", err)
	}
	bar.Finish()

	if err := eng.service.Reload(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d skills (%d with vectors)\n", len(list), eng.vector.Count())
	return nil
}
