// Package cli implements the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CognitionAI/metabase-mcp-server/internal/config"
	"github.com/CognitionAI/metabase-mcp-server/internal/metabase"
	"github.com/CognitionAI/metabase-mcp-server/internal/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "metabase-mcp",
	Short: "Metabase dashboard inspection over MCP",
	Long: `metabase-mcp inspects Metabase dashboards: it summarizes every card's
query with table and field IDs resolved to readable names, audits how
dashboard filters are wired to cards, and serves both operations as MCP
tools for agent use.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version", "config":
			return nil
		}
		// The config subcommands load (or create) the config themselves,
		// so they must run even when the file is missing or broken.
		if cmd.Parent() != nil {
			switch cmd.Parent().Name() {
			case "completion", "config":
				return nil
			}
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug detail to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

// newLogger builds a stderr logger. Stdout stays clean for command output
// (and for the MCP protocol under serve).
func newLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zapCfg.Build()
}

// newClient builds the Metabase API client from config.
func newClient(logger *zap.Logger) (*metabase.Client, error) {
	c := getConfig()
	if c.URL == "" {
		return nil, fmt.Errorf("no Metabase URL configured\n\nSet url in %s or the %s environment variable", config.DefaultPath(), config.EnvURL)
	}
	return metabase.NewClient(metabase.Options{
		BaseURL: c.URL,
		APIKey:  c.APIKey,
		Timeout: c.Timeout(),
		Logger:  logger,
	})
}
