// Package fixture loads dashboard objects from local files, so inspection
// and auditing can run against exported dashboards without a live Metabase.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
)

// LoadDashboard reads a dashboard from a JSON or YAML file, chosen by file
// extension (.json, .yaml, .yml).
func LoadDashboard(path string) (*dashboard.Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported fixture format %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}
}

func decodeJSON(data []byte) (*dashboard.Dashboard, error) {
	var dash dashboard.Dashboard
	if err := json.Unmarshal(data, &dash); err != nil {
		return nil, fmt.Errorf("parse dashboard fixture: %w", err)
	}
	return &dash, nil
}

// decodeYAML normalizes through JSON so the dashboard's untyped query trees
// carry the same value types (map[string]any keys, float64 numbers) as a
// decoded API response.
func decodeYAML(data []byte) (*dashboard.Dashboard, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dashboard fixture: %w", err)
	}
	jsonData, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize dashboard fixture: %w", err)
	}
	return decodeJSON(jsonData)
}

func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = stringKeys(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stringKeys(item)
		}
		return out
	default:
		return v
	}
}
