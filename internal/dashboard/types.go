// Package dashboard models Metabase dashboards and derives diagnostic views
// of them: per-card query summaries and filter connectivity audits.
package dashboard

// Parameter is a dashboard-level filter definition.
type Parameter struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Tab is a named dashboard tab.
type Tab struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ParameterMapping binds a dashboard parameter to a target location inside a
// specific card's query. Target is a raw query-tree value, nil when the
// mapping never got wired to anything.
type ParameterMapping struct {
	ParameterID string `json:"parameter_id"`
	Target      any    `json:"target,omitempty"`
}

// NativeQuery is a raw SQL query with optional template tags.
type NativeQuery struct {
	Query        string         `json:"query"`
	TemplateTags map[string]any `json:"template-tags,omitempty"`
}

// DatasetQuery is a card's query definition. Type is "native" or "query";
// exactly one of Native and Query carries the content.
type DatasetQuery struct {
	Database int64          `json:"database"`
	Type     string         `json:"type"`
	Native   *NativeQuery   `json:"native,omitempty"`
	Query    map[string]any `json:"query,omitempty"`
}

// Card is a saved question.
type Card struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	DatasetQuery DatasetQuery `json:"dataset_query"`
}

// Dashcard is the placement of a card on a dashboard. CardID and Card are nil
// for virtual (text) cards, whose content lives in VisualizationSettings.
type Dashcard struct {
	ID                    int64              `json:"id"`
	CardID                *int64             `json:"card_id"`
	DashboardTabID        *int64             `json:"dashboard_tab_id,omitempty"`
	Card                  *Card              `json:"card,omitempty"`
	VisualizationSettings map[string]any     `json:"visualization_settings,omitempty"`
	ParameterMappings     []ParameterMapping `json:"parameter_mappings,omitempty"`
}

// Dashboard is a fetched dashboard with its placed cards, filter parameters,
// and tabs.
type Dashboard struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Dashcards  []Dashcard  `json:"dashcards,omitempty"`
	Tabs       []Tab       `json:"tabs,omitempty"`
}

// TabLookup maps the dashboard's tab IDs to their names.
func (d *Dashboard) TabLookup() map[int64]string {
	if len(d.Tabs) == 0 {
		return nil
	}
	lookup := make(map[int64]string, len(d.Tabs))
	for _, t := range d.Tabs {
		lookup[t.ID] = t.Name
	}
	return lookup
}
