package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// main calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the gridctl CLI and returns an error if any command fails.
// Cancelling ctx stops a running tui and aborts record loading.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool
	opts := &sourceOptions{}

	root := &cobra.Command{
		Use:           "gridctl",
		Short:         "gridctl browses issued tokens in the terminal",
		Long:          `gridctl loads issued tokens from a JSON file or PostgreSQL table and sorts, filters and projects them with the same grid engine as the dashboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("gridctl %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	opts.register(root.PersistentFlags())

	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newTUICmd(opts))

	return root
}
