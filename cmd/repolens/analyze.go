package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"repolens/internal/watcher"
)

var (
	analyzeWatch bool
	analyzeCache bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a repository",
	Long: `Scans the repository and prints its classification, quality profile,
extracted requirements, gaps and recommendations as JSON.

Examples:
  repolens analyze                  # Analyze the current directory
  repolens analyze ../shop --compact
  repolens analyze --watch          # Re-analyze whenever files change`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "Re-analyze on file changes until interrupted")
	analyzeCmd.Flags().BoolVar(&analyzeCache, "cache", false, "Use the analysis cache even when disabled in config")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := openSession(args, analyzeCache)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := analyzeOnce(ctx, s); err != nil {
		return err
	}
	if !analyzeWatch {
		return nil
	}
	return watchAndAnalyze(ctx, s)
}

func analyzeOnce(ctx context.Context, s *repoSession) error {
	snap, err := s.engine.Scan(ctx, s.root)
	if err != nil {
		return err
	}
	result, err := s.engine.Analyze(ctx, snap)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, result, compactOutput())
}

// watchAndAnalyze re-runs the analysis after each settled batch of changes.
// Batches arriving during an analysis collapse into one rerun.
func watchAndAnalyze(ctx context.Context, s *repoSession) error {
	changed := make(chan struct{}, 1)
	w, err := watcher.New(s.root, watcher.ConfigFromRepoConfig(s.cfg), s.logger, func(events []watcher.Event) {
		s.logger.Debug("Change batch", "events", len(events))
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	fmt.Fprintf(os.Stderr, "Watching %s (%d directories). Press Ctrl+C to stop.\n", s.root, w.WatchedDirs())
	for {
		select {
		case <-ctx.Done():
			return <-runErr
		case err := <-runErr:
			return err
		case <-changed:
			if err := analyzeOnce(ctx, s); err != nil {
				if ctx.Err() != nil {
					return <-runErr
				}
				printError(err)
			}
		}
	}
}
