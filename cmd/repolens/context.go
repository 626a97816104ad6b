package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"repolens/internal/selector"
)

var (
	contextIntent         string
	contextMaxTokens      int
	contextMaxFiles       int
	contextDepth          int
	contextIncludeRelated bool
	contextText           bool
)

var contextCmd = &cobra.Command{
	Use:   "context [path]",
	Short: "Select the files relevant to a change request",
	Long: `Parses a natural-language request, scores every file against it and
returns the best files that fit the token budget.

Examples:
  repolens context --intent "fix the login button"
  repolens context ../shop -i "add a checkout page" --max-tokens 8000 --related
  repolens context -i "refactor api/users.ts" --text   # Print the assembled context only`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVarP(&contextIntent, "intent", "i", "", "Change request in plain language (required)")
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 0, "Token budget (default from config)")
	contextCmd.Flags().IntVar(&contextMaxFiles, "max-files", 0, "Maximum number of files (default from config)")
	contextCmd.Flags().IntVar(&contextDepth, "depth", 0, "Dependency expansion depth for related files (default from config)")
	contextCmd.Flags().BoolVar(&contextIncludeRelated, "related", false, "Add files connected to the top match in the dependency graph")
	contextCmd.Flags().BoolVar(&contextText, "text", false, "Print only the assembled context text")
	_ = contextCmd.MarkFlagRequired("intent")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(contextIntent) == "" {
		return fmt.Errorf("--intent must not be empty")
	}
	s, err := openSession(args, false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	snap, err := s.engine.Scan(ctx, s.root)
	if err != nil {
		return err
	}
	sel, err := s.engine.SelectContext(ctx, snap, contextIntent, selector.Options{
		MaxTokens:      contextMaxTokens,
		MaxFiles:       contextMaxFiles,
		ExpansionDepth: contextDepth,
		IncludeRelated: contextIncludeRelated,
	})
	if err != nil {
		return err
	}

	if contextText {
		_, err := fmt.Fprint(os.Stdout, sel.ContextText)
		return err
	}
	return writeJSON(os.Stdout, sel, compactOutput())
}
