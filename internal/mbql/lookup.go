package mbql

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds the metadata fetch fan-out when the caller
// does not specify a limit.
const DefaultFetchConcurrency = 4

// FieldMetadata is one column of a fetched table.
type FieldMetadata struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TableMetadata is the slice of table metadata the resolver needs: the
// table's name, its schema (may be empty), and its fields.
type TableMetadata struct {
	Name   string          `json:"name"`
	Schema string          `json:"schema"`
	Fields []FieldMetadata `json:"fields"`
}

// MetadataFetcher retrieves metadata for a single table. Implementations
// should return an error for tables that cannot be fetched; the resolver
// isolates failures per table and never propagates them.
type MetadataFetcher interface {
	FetchTableMetadata(ctx context.Context, tableID int64) (*TableMetadata, error)
}

// QualifiedName builds the display name for a table: "schema.name" when a
// schema is present, just "name" otherwise. Tables with no name at all get a
// "table_<id>" placeholder.
func QualifiedName(meta *TableMetadata, id int64) string {
	if meta.Name == "" {
		return "table_" + strconv.FormatInt(id, 10)
	}
	if meta.Schema != "" {
		return meta.Schema + "." + meta.Name
	}
	return meta.Name
}

// ResolveTables fetches metadata for each distinct table ID exactly once and
// builds the lookup tables for a resolution pass. Fetches run concurrently,
// bounded by concurrency (DefaultFetchConcurrency when <= 0). A failed fetch
// marks its table "unknown_table_<id>" and contributes no fields; the other
// tables are unaffected.
func ResolveTables(ctx context.Context, fetcher MetadataFetcher, tableIDs []int64, concurrency int) *Tables {
	ids := dedupe(tableIDs)
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}

	// Each goroutine writes only its own slot, so no locking is needed.
	results := make([]*TableMetadata, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			meta, err := fetcher.FetchTableMetadata(gctx, id)
			if err == nil {
				results[i] = meta
			}
			// Failures are recorded as a nil slot, never returned: one bad
			// table must not cancel the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	tables := NewTables()
	for i, id := range ids {
		meta := results[i]
		if meta == nil {
			tables.TableNames[id] = "unknown_table_" + strconv.FormatInt(id, 10)
			continue
		}
		qualified := QualifiedName(meta, id)
		tables.TableNames[id] = qualified
		for _, f := range meta.Fields {
			tables.FieldLookup[f.ID] = FieldInfo{Name: f.Name, Table: qualified}
		}
	}
	return tables
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
