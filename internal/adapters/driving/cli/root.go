package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphadmin/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath overrides the default config file location.
	configPath string

	// serveFunc runs the MCP server; injected by main.
	serveFunc func(ctx context.Context, configPath string) error
)

// SetServeFunc injects the server entry point invoked by the root command.
func SetServeFunc(f func(ctx context.Context, configPath string) error) {
	serveFunc = f
}

// rootCmd is the base command. Running it serves MCP over stdio.
var rootCmd = &cobra.Command{
	Use:   "graphadmin",
	Short: "Microsoft Graph admin tools over MCP",
	Long: `Graphadmin is an MCP stdio server exposing Microsoft 365 directory
administration (users, licenses, groups) as tools for AI assistants.

Credentials come from MICROSOFT_TENANT_ID, MICROSOFT_CLIENT_ID and
MICROSOFT_CLIENT_SECRET, or from ~/.graphadmin/config.toml.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serveFunc(ctx, configPath)
	},
}

// versionCmd prints the build version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the graphadmin version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(versionCmd)

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}
