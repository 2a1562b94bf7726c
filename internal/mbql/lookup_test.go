package mbql

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeFetcher serves canned table metadata and counts calls per table ID.
type fakeFetcher struct {
	mu     sync.Mutex
	tables map[int64]*TableMetadata
	calls  map[int64]int
}

func newFakeFetcher(tables map[int64]*TableMetadata) *fakeFetcher {
	return &fakeFetcher{tables: tables, calls: make(map[int64]int)}
}

func (f *fakeFetcher) FetchTableMetadata(_ context.Context, tableID int64) (*TableMetadata, error) {
	f.mu.Lock()
	f.calls[tableID]++
	f.mu.Unlock()

	meta, ok := f.tables[tableID]
	if !ok {
		return nil, errors.New("table not found")
	}
	return meta, nil
}

func TestResolveTables(t *testing.T) {
	fetcher := newFakeFetcher(map[int64]*TableMetadata{
		2: {
			Name:   "ORDERS",
			Schema: "PUBLIC",
			Fields: []FieldMetadata{{ID: 10, Name: "STATUS"}, {ID: 20, Name: "AMOUNT"}},
		},
		3: {
			Name:   "events",
			Fields: []FieldMetadata{{ID: 30, Name: "ts"}},
		},
	})

	tables := ResolveTables(context.Background(), fetcher, []int64{2, 3}, 2)

	t.Run("qualified names", func(t *testing.T) {
		if got := tables.TableNames[2]; got != "PUBLIC.ORDERS" {
			t.Errorf("got %q, want %q", got, "PUBLIC.ORDERS")
		}
		if got := tables.TableNames[3]; got != "events" {
			t.Errorf("got %q, want %q", got, "events")
		}
	})

	t.Run("field lookup spans tables", func(t *testing.T) {
		fi, ok := tables.FieldLookup[20]
		if !ok {
			t.Fatal("field 20 missing from lookup")
		}
		if fi.Name != "AMOUNT" || fi.Table != "PUBLIC.ORDERS" {
			t.Errorf("got %+v, want AMOUNT in PUBLIC.ORDERS", fi)
		}
		if fi, ok := tables.FieldLookup[30]; !ok || fi.Table != "events" {
			t.Errorf("field 30 = %+v, want owner %q", fi, "events")
		}
	})
}

func TestResolveTablesDedup(t *testing.T) {
	fetcher := newFakeFetcher(map[int64]*TableMetadata{
		2: {Name: "ORDERS", Schema: "PUBLIC"},
	})

	// Five cards referencing the same table cost exactly one fetch.
	ResolveTables(context.Background(), fetcher, []int64{2, 2, 2, 2, 2}, 4)

	if got := fetcher.calls[2]; got != 1 {
		t.Errorf("table 2 fetched %d times, want 1", got)
	}
}

func TestResolveTablesFailureIsolation(t *testing.T) {
	fetcher := newFakeFetcher(map[int64]*TableMetadata{
		2: {Name: "ORDERS", Schema: "PUBLIC", Fields: []FieldMetadata{{ID: 10, Name: "STATUS"}}},
	})

	tables := ResolveTables(context.Background(), fetcher, []int64{2, 5}, 4)

	if got := tables.TableNames[5]; got != "unknown_table_5" {
		t.Errorf("got %q, want %q", got, "unknown_table_5")
	}
	if got := tables.TableNames[2]; got != "PUBLIC.ORDERS" {
		t.Errorf("failure for table 5 corrupted table 2: got %q", got)
	}
	if _, ok := tables.FieldLookup[10]; !ok {
		t.Error("fields of the healthy table should survive a sibling failure")
	}
}

func TestResolveTablesNamelessFallback(t *testing.T) {
	fetcher := newFakeFetcher(map[int64]*TableMetadata{
		7: {Schema: "PUBLIC"},
	})

	tables := ResolveTables(context.Background(), fetcher, []int64{7}, 1)
	if got := tables.TableNames[7]; got != "table_7" {
		t.Errorf("got %q, want %q", got, "table_7")
	}
}

func TestResolveTablesEmptyInput(t *testing.T) {
	fetcher := newFakeFetcher(nil)

	tables := ResolveTables(context.Background(), fetcher, nil, 0)
	if len(tables.TableNames) != 0 || len(tables.FieldLookup) != 0 {
		t.Errorf("expected empty lookups, got %+v", tables)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("expected no fetches, got %v", fetcher.calls)
	}
}
