package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
	"github.com/CognitionAI/metabase-mcp-server/internal/ui"
)

var auditFile string

var auditCmd = &cobra.Command{
	Use:   "audit [dashboard-id]",
	Short: "Audit a dashboard's filter wiring",
	Long: `Audit cross-references a dashboard's filter parameters against each
card's parameter mappings. It reports which filters each card is missing
and any structurally broken mappings, such as a dimension target without
a stage-number entry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditFile, "file", "", "Read the dashboard from a JSON or YAML file instead of the API")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	defer func() { _ = logger.Sync() }()

	dash, _, code, err := resolveDashboard(cmd.Context(), args, auditFile, logger)
	if err != nil {
		return handleError(code, err, errorSuggestion(code))
	}

	report := dashboard.Audit(dash)

	if isJSONOutput() {
		outputSuccess(report, &Meta{Count: len(report.CardsWithIssues)})
		return nil
	}
	renderAudit(report)
	return nil
}

func renderAudit(report *dashboard.AuditReport) {
	fmt.Printf("%s %s\n", ui.Header(fmt.Sprintf("Dashboard %d", report.DashboardID)),
		ui.Muted.Render(fmt.Sprintf("filters: %s", strings.Join(report.ParameterIDs, ", "))))

	for _, card := range report.Cards {
		switch {
		case len(card.Errors) > 0:
			fmt.Println(ui.Errorf("%s", card.Name))
		case len(card.MissingParams) > 0:
			fmt.Println(ui.Warningf("%s", card.Name))
		default:
			fmt.Println(ui.Successf("%s", card.Name))
		}
		if len(card.MissingParams) > 0 {
			fmt.Printf("    %s\n", ui.Hint("missing filters: "+strings.Join(card.MissingParams, ", ")))
		}
		for _, msg := range card.Errors {
			fmt.Printf("    %s\n", ui.Hint(msg))
		}
	}

	fmt.Println()
	if n := len(report.CardsWithIssues); n > 0 {
		fmt.Println(ui.Warningf("%d of %d cards need attention", n, len(report.Cards)))
	} else {
		fmt.Println(ui.Success("all cards are fully wired"))
	}
}
