// Package metabase is a minimal authenticated client for the Metabase HTTP
// API: the table metadata, dashboard, and card endpoints the rest of the
// program consumes.
package metabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
	"github.com/CognitionAI/metabase-mcp-server/internal/mbql"
)

const defaultRequestTimeout = 30 * time.Second

// Options configures a Client. BaseURL is required; everything else has a
// usable default.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to one Metabase instance. It implements mbql.MetadataFetcher.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client from options.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("metabase base URL is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// FetchTableMetadata retrieves the schema, name, and fields of one table.
func (c *Client) FetchTableMetadata(ctx context.Context, tableID int64) (*mbql.TableMetadata, error) {
	var meta mbql.TableMetadata
	path := "/api/table/" + strconv.FormatInt(tableID, 10) + "/query_metadata"
	if err := c.get(ctx, path, &meta); err != nil {
		return nil, fmt.Errorf("fetch metadata for table %d: %w", tableID, err)
	}
	return &meta, nil
}

// Dashboard retrieves a dashboard with its cards, parameters, and tabs.
func (c *Client) Dashboard(ctx context.Context, dashboardID int64) (*dashboard.Dashboard, error) {
	var dash dashboard.Dashboard
	path := "/api/dashboard/" + strconv.FormatInt(dashboardID, 10)
	if err := c.get(ctx, path, &dash); err != nil {
		return nil, fmt.Errorf("fetch dashboard %d: %w", dashboardID, err)
	}
	return &dash, nil
}

// DashboardRaw retrieves a dashboard as the untyped API response.
func (c *Client) DashboardRaw(ctx context.Context, dashboardID int64) (map[string]any, error) {
	var raw map[string]any
	path := "/api/dashboard/" + strconv.FormatInt(dashboardID, 10)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("fetch dashboard %d: %w", dashboardID, err)
	}
	return raw, nil
}

// CardRaw retrieves a saved question as the untyped API response.
func (c *Client) CardRaw(ctx context.Context, cardID int64) (map[string]any, error) {
	var raw map[string]any
	path := "/api/card/" + strconv.FormatInt(cardID, 10)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("fetch card %d: %w", cardID, err)
	}
	return raw, nil
}

// TableMetadataRaw retrieves table metadata as the untyped API response.
func (c *Client) TableMetadataRaw(ctx context.Context, tableID int64) (map[string]any, error) {
	var raw map[string]any
	path := "/api/table/" + strconv.FormatInt(tableID, 10) + "/query_metadata"
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("fetch metadata for table %d: %w", tableID, err)
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("metabase request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, URL: url}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
