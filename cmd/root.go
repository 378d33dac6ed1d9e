// Package cmd wires bookweave's single root command with Cobra.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmoreland/bookweave/internal/core/usecases"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
	appBuiltBy = "unknown"
)

var flags usecases.CLIFlags

// rootCmd is bookweave's only command: build once, then optionally watch
// and/or serve, per the flags below.
var rootCmd = &cobra.Command{
	Use:   "bookweave",
	Short: "A documentation-site generator for Markdown books",
	Long: `bookweave renders a tree of Markdown files into a static documentation
site: syntax-highlighted code, a generated navigation sidebar, an optional
search index, and a live-reloading dev server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return NewBuildCommand(flags).Execute(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flags.Input, "input", "i", "", "source root (required)")
	rootCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "destination root, created if absent (required)")
	rootCmd.Flags().StringVarP(&flags.Config, "config", "c", "", "explicit config file path")
	rootCmd.Flags().BoolVar(&flags.Watch, "watch", false, "rebuild on source changes")
	rootCmd.Flags().BoolVar(&flags.Serve, "serve", false, "run the HTTP/WebSocket dev server")
	rootCmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "server port (default 3000)")
	rootCmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "enable verbose (debug-level) log output")

	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")
}

// Execute runs the root command. Called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command bound to ctx, so a cancelled ctx
// (SIGINT/SIGTERM) reaches the build's watcher and server.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets build-time version information from ldflags.
func SetVersionInfo(version, commit, date, builtBy string) {
	appVersion = version
	appCommit = commit
	appDate = date
	appBuiltBy = builtBy

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("bookweave %s (commit: %s, built: %s by %s)\n", version, commit, date, builtBy),
	)
}
