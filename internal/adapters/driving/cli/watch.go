package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Keep the index in sync with a directory",
	Long: `Watches a directory tree and re-ingests documents as they are
created or modified. Deleted documents are removed from the index.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"delay before re-ingesting after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := getServices()
	if err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bring the index up to date before watching.
	results := svc.Pipeline.IngestAll(ctx, collectInitial(dir, svc.Extensions))
	for _, result := range results {
		if result.Err != nil {
			cmd.PrintErrf("initial ingest: %s: %v\n", result.Path, result.Err)
		}
	}

	watcher := watch.New(svc.Pipeline, svc.Extensions, watchDebounce)
	if err := watcher.Run(ctx, dir); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// collectInitial lists the supported files already present under dir.
func collectInitial(dir string, extensions []string) []string {
	paths, err := expandPaths([]string{dir}, extensions)
	if err != nil {
		return nil
	}
	return paths
}
