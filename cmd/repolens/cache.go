package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var cacheKeep int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or prune the analysis cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List cached analyses, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheList,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune [path]",
	Short: "Delete all but the newest cached analyses",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCachePrune,
}

func init() {
	cachePruneCmd.Flags().IntVar(&cacheKeep, "keep", 5, "Number of analyses to keep")
	cacheCmd.AddCommand(cacheListCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCacheSession(args []string) (*repoSession, error) {
	s, err := openSession(args, false)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		return s, nil
	}
	if err := s.openStore(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// cacheEntry is the listing form of one stored analysis.
type cacheEntry struct {
	Fingerprint   string    `json:"fingerprint"`
	EngineVersion string    `json:"engineVersion"`
	SnapshotID    string    `json:"snapshotId"`
	RawSize       int       `json:"rawSize"`
	StoredSize    int       `json:"storedSize"`
	CreatedAt     time.Time `json:"createdAt"`
}

func runCacheList(cmd *cobra.Command, args []string) error {
	s, err := openCacheSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	stored, err := s.store.List()
	if err != nil {
		return err
	}
	entries := make([]cacheEntry, len(stored))
	for i, e := range stored {
		entries[i] = cacheEntry{
			Fingerprint:   e.Fingerprint,
			EngineVersion: e.EngineVersion,
			SnapshotID:    e.SnapshotID,
			RawSize:       e.RawSize,
			StoredSize:    len(e.Payload),
			CreatedAt:     e.CreatedAt,
		}
	}
	return writeJSON(os.Stdout, entries, compactOutput())
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	if cacheKeep < 0 {
		return fmt.Errorf("--keep must not be negative")
	}
	s, err := openCacheSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.store.Prune(cacheKeep)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, map[string]int{"removed": removed}, compactOutput())
}
