package dashboard

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/CognitionAI/metabase-mcp-server/internal/mbql"
)

type countingFetcher struct {
	mu     sync.Mutex
	tables map[int64]*mbql.TableMetadata
	calls  map[int64]int
}

func newCountingFetcher(tables map[int64]*mbql.TableMetadata) *countingFetcher {
	return &countingFetcher{tables: tables, calls: make(map[int64]int)}
}

func (f *countingFetcher) FetchTableMetadata(_ context.Context, tableID int64) (*mbql.TableMetadata, error) {
	f.mu.Lock()
	f.calls[tableID]++
	f.mu.Unlock()

	meta, ok := f.tables[tableID]
	if !ok {
		return nil, errors.New("table not found")
	}
	return meta, nil
}

func int64p(v int64) *int64 { return &v }

func ordersMetadata() map[int64]*mbql.TableMetadata {
	return map[int64]*mbql.TableMetadata{
		2: {
			Name:   "ORDERS",
			Schema: "PUBLIC",
			Fields: []mbql.FieldMetadata{{ID: 10, Name: "STATUS"}, {ID: 20, Name: "AMOUNT"}},
		},
	}
}

func structuredDashcard(dashcardID, cardID int64, query map[string]any) Dashcard {
	return Dashcard{
		ID:     dashcardID,
		CardID: int64p(cardID),
		Card: &Card{
			ID:   cardID,
			Name: "Card",
			DatasetQuery: DatasetQuery{
				Database: 1,
				Type:     "query",
				Query:    query,
			},
		},
	}
}

func TestExtractBatchesMetadataFetches(t *testing.T) {
	fetcher := newCountingFetcher(ordersMetadata())

	// Five structured cards all on table 2.
	dash := &Dashboard{ID: 1, Name: "Sales"}
	for i := int64(0); i < 5; i++ {
		dash.Dashcards = append(dash.Dashcards,
			structuredDashcard(100+i, 200+i, map[string]any{"source-table": float64(2)}))
	}

	Extract(context.Background(), dash, nil, fetcher, 4)

	if got := fetcher.calls[2]; got != 1 {
		t.Errorf("table 2 fetched %d times, want 1", got)
	}
}

func TestExtractStructuredCard(t *testing.T) {
	fetcher := newCountingFetcher(ordersMetadata())

	dash := &Dashboard{
		ID:   1,
		Name: "Sales",
		Tabs: []Tab{{ID: 7, Name: "Overview"}},
		Dashcards: []Dashcard{{
			ID:             100,
			CardID:         int64p(200),
			DashboardTabID: int64p(7),
			Card: &Card{
				ID:   200,
				Name: "Active orders",
				DatasetQuery: DatasetQuery{
					Database: 1,
					Type:     "query",
					Query: map[string]any{
						"source-table": float64(2),
						"filter":       []any{"=", []any{"field", float64(10), nil}, "active"},
					},
				},
			},
		}},
	}

	ext := Extract(context.Background(), dash, dash.TabLookup(), fetcher, 4)

	if len(ext.Cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(ext.Cards))
	}
	card := ext.Cards[0]
	if card.QueryType != QueryTypeQuery {
		t.Errorf("query_type = %q, want %q", card.QueryType, QueryTypeQuery)
	}
	if card.Tab == nil || *card.Tab != "Overview" {
		t.Errorf("tab = %v, want Overview", card.Tab)
	}
	wantQuery := map[string]any{
		"source-table": "PUBLIC.ORDERS",
		"filter":       []any{"=", []any{"field", "STATUS"}, "active"},
	}
	if !reflect.DeepEqual(card.Query, wantQuery) {
		t.Errorf("query = %#v, want %#v", card.Query, wantQuery)
	}
	if want := []string{"PUBLIC.ORDERS"}; !reflect.DeepEqual(ext.TablesUsed, want) {
		t.Errorf("tables_used = %v, want %v", ext.TablesUsed, want)
	}
}

func TestExtractNativeCardNeverResolved(t *testing.T) {
	fetcher := newCountingFetcher(nil)

	// SQL that looks like it contains resolvable references must still pass
	// through byte-identical.
	sql := "SELECT * FROM orders WHERE status = {{status}} -- [\"field\", 10]"
	dash := &Dashboard{
		ID:   1,
		Name: "Sales",
		Dashcards: []Dashcard{{
			ID:     100,
			CardID: int64p(200),
			Card: &Card{
				ID:   200,
				Name: "Raw orders",
				DatasetQuery: DatasetQuery{
					Database: 1,
					Type:     "native",
					Native: &NativeQuery{
						Query: sql,
						TemplateTags: map[string]any{
							"status": map[string]any{"type": "text"},
							"after":  map[string]any{"type": "date"},
						},
					},
				},
			},
		}},
	}

	ext := Extract(context.Background(), dash, nil, fetcher, 4)

	card := ext.Cards[0]
	if card.QueryType != QueryTypeNative {
		t.Fatalf("query_type = %q, want %q", card.QueryType, QueryTypeNative)
	}
	if card.SQL != sql {
		t.Errorf("sql = %q, want input unchanged", card.SQL)
	}
	if want := []string{"after", "status"}; !reflect.DeepEqual(card.TemplateTags, want) {
		t.Errorf("template_tags = %v, want %v", card.TemplateTags, want)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("native-only dashboard should fetch no metadata, got %v", fetcher.calls)
	}
}

func TestExtractVirtualCard(t *testing.T) {
	fetcher := newCountingFetcher(nil)

	dash := &Dashboard{
		ID:   1,
		Name: "Sales",
		Dashcards: []Dashcard{{
			ID: 100,
			VisualizationSettings: map[string]any{
				"text": "# Notes\n\nRefreshed **hourly**.",
			},
		}},
	}

	ext := Extract(context.Background(), dash, nil, fetcher, 4)

	card := ext.Cards[0]
	if card.QueryType != QueryTypeVirtual {
		t.Fatalf("query_type = %q, want %q", card.QueryType, QueryTypeVirtual)
	}
	if card.Name != "(text card)" {
		t.Errorf("name = %q, want placeholder", card.Name)
	}
	if card.CardID != nil {
		t.Errorf("card_id = %v, want nil", card.CardID)
	}
	if card.Text != "# Notes\n\nRefreshed **hourly**." {
		t.Errorf("text = %q, want raw markdown", card.Text)
	}
	if card.PlainText != "Notes\nRefreshed hourly." {
		t.Errorf("plain_text = %q", card.PlainText)
	}
}

func TestExtractFetchFailureSurfacesPlaceholder(t *testing.T) {
	fetcher := newCountingFetcher(ordersMetadata())

	dash := &Dashboard{
		ID:   1,
		Name: "Sales",
		Dashcards: []Dashcard{
			structuredDashcard(100, 200, map[string]any{"source-table": float64(2)}),
			structuredDashcard(101, 201, map[string]any{"source-table": float64(9)}),
		},
	}

	ext := Extract(context.Background(), dash, nil, fetcher, 4)

	want := []string{"PUBLIC.ORDERS", "unknown_table_9"}
	if !reflect.DeepEqual(ext.TablesUsed, want) {
		t.Errorf("tables_used = %v, want %v", ext.TablesUsed, want)
	}
	if got := ext.Cards[1].Query["source-table"]; got != "unknown_table_9" {
		t.Errorf("source-table = %v, want unknown_table_9", got)
	}
}

func TestExtractCollectsJoinTables(t *testing.T) {
	tables := ordersMetadata()
	tables[3] = &mbql.TableMetadata{Name: "PRODUCTS", Schema: "PUBLIC"}
	fetcher := newCountingFetcher(tables)

	dash := &Dashboard{
		ID:   1,
		Name: "Sales",
		Dashcards: []Dashcard{
			structuredDashcard(100, 200, map[string]any{
				"source-table": float64(2),
				"joins": []any{map[string]any{
					"source-table": float64(3),
					"condition":    []any{"=", []any{"field", float64(20), nil}, []any{"field", float64(20), nil}},
				}},
			}),
		},
	}

	ext := Extract(context.Background(), dash, nil, fetcher, 4)

	want := []string{"PUBLIC.ORDERS", "PUBLIC.PRODUCTS"}
	if !reflect.DeepEqual(ext.TablesUsed, want) {
		t.Errorf("tables_used = %v, want %v", ext.TablesUsed, want)
	}
}
