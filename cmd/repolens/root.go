package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repolens/internal/config"
	"repolens/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "repolens",
	Short: "Repository understanding engine",
	Long: `repolens scans a repository and reports what it is: requirements-only,
partially implemented, an existing app or a hybrid. It extracts features from
documents, finds unfinished code, recommends next steps and selects the files
most relevant to a change request.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initFlags)

	rootCmd.SetVersionTemplate("repolens version {{.Version}}\n")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all logging")
	rootCmd.PersistentFlags().Bool("compact", false, "Print JSON on a single line")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: human or json (default from config)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("compact", rootCmd.PersistentFlags().Lookup("compact"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initFlags lets REPOLENS_COMPACT, REPOLENS_QUIET and friends stand in for
// the persistent flags.
func initFlags() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// compactOutput reports whether --compact is set.
func compactOutput() bool {
	return viper.GetBool("compact")
}
