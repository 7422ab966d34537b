// Package cli implements the insulog command line.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

// NewRootCommand creates the root command for the insulog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "insulog",
		Short: "insulog - meal and insulin tracker",
		Long: `insulog records meals with their carbohydrates and insulin doses, keeps a
daily insulin sensitivity history, and estimates doses from carbohydrates.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "insulog.yaml", "YAML config file (skipped if missing)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file (skipped if missing)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewEstimateCommand())

	return cmd
}
