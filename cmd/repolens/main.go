package main

import (
	"errors"
	"fmt"
	"os"

	rerrors "repolens/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError writes err to stderr with the suggested fixes of its code.
func printError(err error) {
	var re *rerrors.RepoError
	if !errors.As(err, &re) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error %v\n", re)
	for _, fix := range re.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(os.Stderr, "  Try: %s  (%s)\n", fix.Command, fix.Description)
		case fix.Key != "":
			fmt.Fprintf(os.Stderr, "  Check %s: %s\n", fix.Key, fix.Description)
		}
	}
}
