package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
	"github.com/CognitionAI/metabase-mcp-server/internal/ui"
)

var (
	exportFile string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export [dashboard-id]",
	Short: "Write a dashboard's query summary to a JSON file",
	Long: `Export runs the same extraction as inspect and writes the result to
<out>/<dashboard-name-slug>.json for offline review or diffing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Read the dashboard from a JSON or YAML file instead of the API")
	exportCmd.Flags().StringVar(&exportOut, "out", ".", "Directory to write the export into")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	defer func() { _ = logger.Sync() }()

	if exportOut == "" {
		return handleErrorMsg(ErrMissingArgument, "--out cannot be empty", "Pass a directory to write the export into")
	}

	ctx := cmd.Context()
	dash, fetcher, code, err := resolveDashboard(ctx, args, exportFile, logger)
	if err != nil {
		return handleError(code, err, errorSuggestion(code))
	}

	ext := dashboard.Extract(ctx, dash, dash.TabLookup(), fetcher, getConfig().MetadataFetchConcurrency)

	name := slug.Make(ext.Name)
	if name == "" {
		name = fmt.Sprintf("dashboard-%d", ext.DashboardID)
	}
	path := filepath.Join(exportOut, name+".json")

	raw, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	raw = append(raw, '\n')

	if err := os.MkdirAll(exportOut, 0o755); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"path": path}, &Meta{Count: len(ext.Cards)})
		return nil
	}
	fmt.Println(ui.Successf("wrote %s %s", path, ui.Count(len(ext.Cards), "card", "cards")))
	return nil
}
