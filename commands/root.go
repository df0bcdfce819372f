// Package commands contains the CLI command implementations.
package commands

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// configKey is the context key for runtime config.
type configKey struct{}

// Config holds runtime configuration for commands.
type Config struct {
	WorkDir string
}

// getConfig retrieves config from context, or returns defaults.
func getConfig(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey{}).(Config); ok {
		return cfg
	}

	return Config{}
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var (
		workDir string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:     "repo",
		Short:   "Interactive git history rewriting",
		Version: Version,
		Long: `Repo rewrites recent git history without hand-editing rebase
todo lists.

Pick the commits to change in an interactive planner, assign actions
(reword, squash, fixup, drop, split, reorder), preview the compiled
plan, and let repo drive the underlying rebase for you.

Examples:
  # Plan changes over the last 10 commits
  repo craft 10

  # Same, with the first 3 commits preselected
  repo craft 10 --last 3

  # Reword a recent commit message
  repo reword

  # Reword the most recent commit without the picker
  repo reword --last`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}

			// Store config in context for subcommands.
			cfg := Config{
				WorkDir: workDir,
			}
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			cmd.SetContext(ctx)
		},
	}

	cmd.PersistentFlags().StringVarP(
		&workDir, "dir", "C", "",
		"run as if git was started in this directory",
	)
	cmd.PersistentFlags().BoolVar(
		&noColor, "no-color", false,
		"disable colored output",
	)

	// Add subcommands.
	cmd.AddCommand(NewCraftCmd())
	cmd.AddCommand(NewRewordCmd())
	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(newSeqEditCmd())
	cmd.AddCommand(newMsgEditCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
