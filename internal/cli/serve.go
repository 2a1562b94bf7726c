package cli

import (
	"github.com/spf13/cobra"

	"github.com/CognitionAI/metabase-mcp-server/internal/mcpsrv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve exposes the dashboard tools over the Model Context Protocol on
stdio, for use from an MCP client configuration. Stdout carries the
protocol; logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		client, err := newClient(logger)
		if err != nil {
			return err
		}

		srv := mcpsrv.New(mcpsrv.Options{
			Backend:     client,
			Concurrency: getConfig().MetadataFetchConcurrency,
			Version:     currentVersionInfo().Version,
			Logger:      logger,
		})
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
