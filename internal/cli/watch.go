package cli

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skillscout/skillscout/internal/skills"
	"github.com/skillscout/skillscout/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the skills file and keep indexes and cache current",
	Long: `watch reloads the store, rebuilds both indexes, and flushes the
result cache whenever the skills file changes on disk. Runs until
interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.service.Reload(ctx); err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher(skillsFile)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", skillsFile, err)
	}
	defer fw.Stop()

	fw.Start(ctx, func() {
		fresh, err := skills.LoadSkillsFile(skillsFile)
		if err != nil {
			log.Printf("watch: reload skipped, skills file unreadable: %v", err)
			return
		}
		list, err := fresh.All(ctx)
		if err != nil {
			return
		}
		// ReplaceAll fires the store's write hooks, which flush the cache
		// and mark the indexes dirty; Reload rebuilds them eagerly.
		eng.store.ReplaceAll(list)
		if err := eng.service.Reload(ctx); err != nil {
			log.Printf("watch: reload failed: %v", err)
			return
		}
		log.Printf("watch: reloaded %d skills", len(list))
	})

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", skillsFile)
	<-ctx.Done()
	return nil
}
