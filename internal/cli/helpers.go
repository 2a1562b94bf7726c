package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
	"github.com/CognitionAI/metabase-mcp-server/internal/fixture"
	"github.com/CognitionAI/metabase-mcp-server/internal/mbql"
	"github.com/CognitionAI/metabase-mcp-server/internal/metabase"
)

// offlineFetcher stands in when a dashboard comes from a fixture file and no
// Metabase is configured. Every lookup fails, so resolution falls back to
// placeholder table and field names.
type offlineFetcher struct{}

func (offlineFetcher) FetchTableMetadata(context.Context, int64) (*mbql.TableMetadata, error) {
	return nil, errors.New("no metabase configured")
}

func parseDashboardID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dashboard ID %q: must be a positive integer", arg)
	}
	return id, nil
}

// resolveDashboard obtains the dashboard to operate on: from a fixture file
// when file is set, otherwise fetched from the configured Metabase by ID.
// The returned fetcher backs metadata resolution for the same source. On
// failure it also returns the stable error code for the failure kind.
func resolveDashboard(ctx context.Context, args []string, file string, logger *zap.Logger) (*dashboard.Dashboard, mbql.MetadataFetcher, string, error) {
	if file != "" {
		dash, err := fixture.LoadDashboard(file)
		if err != nil {
			return nil, nil, ErrFixtureInvalid, err
		}
		// A configured Metabase still serves metadata for fixture
		// dashboards; without one, names degrade to placeholders.
		if getConfig().URL != "" {
			client, err := newClient(logger)
			if err != nil {
				return nil, nil, ErrConfigInvalid, err
			}
			return dash, client, "", nil
		}
		return dash, offlineFetcher{}, "", nil
	}

	if len(args) == 0 {
		return nil, nil, ErrMissingArgument, fmt.Errorf("a dashboard ID or --file is required")
	}
	id, err := parseDashboardID(args[0])
	if err != nil {
		return nil, nil, ErrInvalidInput, err
	}

	client, err := newClient(logger)
	if err != nil {
		return nil, nil, ErrMetabaseNotSetup, err
	}
	dash, err := client.Dashboard(ctx, id)
	if err != nil {
		if errors.Is(err, metabase.ErrNotFound) {
			return nil, nil, ErrDashboardNotFound, err
		}
		return nil, nil, ErrMetabaseUnreachable, err
	}
	return dash, client, "", nil
}

// errorSuggestion returns the follow-up hint for a stable error code, empty
// when there is nothing actionable to suggest.
func errorSuggestion(code string) string {
	switch code {
	case ErrMetabaseNotSetup:
		return "Run 'metabase-mcp config init', then set url and api_key (or MB_URL and MB_API_KEY)"
	case ErrFixtureInvalid:
		return "Pass a dashboard exported as JSON or YAML"
	case ErrMissingArgument:
		return "Pass a dashboard ID, or --file with a fixture"
	default:
		return ""
	}
}
