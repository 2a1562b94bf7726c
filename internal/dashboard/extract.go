package dashboard

import (
	"context"
	"sort"

	"github.com/CognitionAI/metabase-mcp-server/internal/mbql"
	"github.com/CognitionAI/metabase-mcp-server/internal/mdtext"
)

// Query kinds reported in card summaries.
const (
	QueryTypeVirtual = "virtual"
	QueryTypeNative  = "native"
	QueryTypeQuery   = "query"
)

// virtualCardName stands in for the display name virtual cards don't have.
const virtualCardName = "(text card)"

// CardSummary is the normalized view of one placed card. Exactly one of the
// kind-specific member groups is populated, according to QueryType: Text and
// PlainText for virtual cards, SQL and TemplateTags for native cards, Query
// for structured cards.
type CardSummary struct {
	DashcardID   int64          `json:"dashcard_id"`
	CardID       *int64         `json:"card_id"`
	Name         string         `json:"name"`
	Tab          *string        `json:"tab"`
	QueryType    string         `json:"query_type"`
	Database     int64          `json:"database,omitempty"`
	SQL          string         `json:"sql,omitempty"`
	TemplateTags []string       `json:"template_tags,omitempty"`
	Query        map[string]any `json:"query,omitempty"`
	Text         string         `json:"text,omitempty"`
	PlainText    string         `json:"plain_text,omitempty"`
}

// Extraction is the full result of summarizing a dashboard's cards.
// TablesUsed lists every qualified table name touched by this pass, sorted,
// placeholders included so fetch failures stay visible.
type Extraction struct {
	DashboardID int64         `json:"dashboard_id"`
	Name        string        `json:"name"`
	Cards       []CardSummary `json:"cards"`
	TablesUsed  []string      `json:"tables_used"`
}

// Extract summarizes every placed card on a dashboard, resolving structured
// queries against table metadata. All table IDs referenced anywhere on the
// dashboard are collected up front and resolved in one batch, so N cards on
// the same table cost a single metadata fetch. Native SQL is passed through
// verbatim and never resolved. The input dashboard is not modified.
func Extract(ctx context.Context, dash *Dashboard, tabs map[int64]string, fetcher mbql.MetadataFetcher, concurrency int) *Extraction {
	var tableIDs []int64
	for _, dc := range dash.Dashcards {
		if dc.Card == nil || dc.Card.DatasetQuery.Query == nil {
			continue
		}
		tableIDs = append(tableIDs, mbql.TableIDs(dc.Card.DatasetQuery.Query)...)
	}
	tables := mbql.ResolveTables(ctx, fetcher, tableIDs, concurrency)

	cards := make([]CardSummary, 0, len(dash.Dashcards))
	for _, dc := range dash.Dashcards {
		cards = append(cards, summarize(dc, tabs, tables))
	}

	return &Extraction{
		DashboardID: dash.ID,
		Name:        dash.Name,
		Cards:       cards,
		TablesUsed:  tablesUsed(tables),
	}
}

func summarize(dc Dashcard, tabs map[int64]string, tables *mbql.Tables) CardSummary {
	s := CardSummary{DashcardID: dc.ID, CardID: dc.CardID}
	if dc.DashboardTabID != nil {
		if name, ok := tabs[*dc.DashboardTabID]; ok {
			s.Tab = &name
		}
	}

	if dc.CardID == nil || dc.Card == nil {
		s.QueryType = QueryTypeVirtual
		s.Name = virtualCardName
		if text, ok := dc.VisualizationSettings["text"].(string); ok {
			s.Text = text
			s.PlainText = mdtext.Flatten(text)
		}
		return s
	}

	card := dc.Card
	s.Name = card.Name
	s.Database = card.DatasetQuery.Database

	if card.DatasetQuery.Type == "native" && card.DatasetQuery.Native != nil {
		s.QueryType = QueryTypeNative
		s.SQL = card.DatasetQuery.Native.Query
		s.TemplateTags = tagNames(card.DatasetQuery.Native.TemplateTags)
		return s
	}

	s.QueryType = QueryTypeQuery
	if card.DatasetQuery.Query != nil {
		s.Query = mbql.ResolveQuery(card.DatasetQuery.Query, tables)
	}
	return s
}

// tagNames returns the template tag names only, sorted. Tag definitions are
// noise at this level of summary.
func tagNames(tags map[string]any) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func tablesUsed(tables *mbql.Tables) []string {
	seen := make(map[string]struct{}, len(tables.TableNames))
	used := make([]string, 0, len(tables.TableNames))
	for _, name := range tables.TableNames {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		used = append(used, name)
	}
	sort.Strings(used)
	return used
}
