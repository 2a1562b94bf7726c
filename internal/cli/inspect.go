package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
	"github.com/CognitionAI/metabase-mcp-server/internal/ui"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect [dashboard-id]",
	Short: "Summarize every card's query on a dashboard",
	Long: `Inspect fetches a dashboard and summarizes each placed card: text cards
show their markdown, native cards their SQL and template tags, and
structured cards their query with table and field IDs resolved to names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "Read the dashboard from a JSON or YAML file instead of the API")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	dash, fetcher, code, err := resolveDashboard(ctx, args, inspectFile, logger)
	if err != nil {
		return handleError(code, err, errorSuggestion(code))
	}

	ext := dashboard.Extract(ctx, dash, dash.TabLookup(), fetcher, getConfig().MetadataFetchConcurrency)

	if isJSONOutput() {
		outputSuccess(ext, &Meta{Count: len(ext.Cards)})
		return nil
	}
	renderExtraction(ext)
	return nil
}

func renderExtraction(ext *dashboard.Extraction) {
	display := ui.NewDisplayContext()

	fmt.Printf("%s %s\n\n", ui.AccentBold.Render(ext.Name), ui.Muted.Render(fmt.Sprintf("(dashboard %d)", ext.DashboardID)))

	table := ui.NewTable(4)
	for _, card := range ext.Cards {
		tab := ""
		if card.Tab != nil {
			tab = *card.Tab
		}
		table.AddRow(card.Name, card.QueryType, tab, cardDetail(card))
	}
	fmt.Print(table.String())

	for _, card := range ext.Cards {
		switch card.QueryType {
		case dashboard.QueryTypeVirtual:
			if card.Text == "" {
				continue
			}
			fmt.Printf("\n%s\n", ui.Header("Text card"))
			if isatty.IsTerminal(os.Stdout.Fd()) {
				if rendered, err := ui.RenderMarkdown(card.Text, display.AvailableWidth(ui.MarkdownRenderMargin)); err == nil {
					fmt.Print(rendered)
					continue
				}
			}
			fmt.Println(card.PlainText)
		case dashboard.QueryTypeNative:
			fmt.Printf("\n%s\n%s\n", ui.Header(card.Name), card.SQL)
		case dashboard.QueryTypeQuery:
			raw, err := json.MarshalIndent(card.Query, "", "  ")
			if err != nil {
				continue
			}
			fmt.Printf("\n%s\n%s\n", ui.Header(card.Name), string(raw))
		}
	}

	fmt.Printf("\n%s\n", ui.Header("Tables used "+ui.Count(len(ext.TablesUsed), "table", "tables")))
	for _, name := range ext.TablesUsed {
		fmt.Printf("  %s\n", ui.Accent.Render(name))
	}
}

func cardDetail(card dashboard.CardSummary) string {
	switch card.QueryType {
	case dashboard.QueryTypeNative:
		return "db " + strconv.FormatInt(card.Database, 10)
	case dashboard.QueryTypeQuery:
		if st, ok := card.Query["source-table"].(string); ok {
			return st
		}
		return "db " + strconv.FormatInt(card.Database, 10)
	default:
		return ""
	}
}
