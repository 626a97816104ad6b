package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"repolens/internal/config"
	rerrors "repolens/internal/errors"
	"repolens/internal/paths"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize repolens configuration",
	Long:  "Creates a .repolens/ directory with the default configuration in the repository root",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	stateDir, err := paths.EnsureStateDir(root)
	if err != nil {
		return rerrors.New(rerrors.InternalError, "Failed to create state directory", err).WithPath(root)
	}
	configPath := filepath.Join(stateDir, "config.json")
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized counts as success.
		fmt.Println("repolens already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'repolens init --force' to overwrite it.")
		return nil
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		return rerrors.New(rerrors.InternalError, "Failed to write config file", err).WithPath(configPath)
	}

	fmt.Println("repolens initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'repolens analyze' to see what the repository is")
	fmt.Println("  2. Run 'repolens context --intent \"...\"' to pick files for a change")
	return nil
}
