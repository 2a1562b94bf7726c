// Package mbql resolves opaque numeric identifiers in MBQL query trees.
// MBQL is the JSON array/object representation Metabase uses for structured
// (non-SQL) queries; this package rewrites table and field IDs into
// human-readable names without changing any other structure.
package mbql

import (
	"strconv"
)

// fieldLiteral is the head of a field-reference node: ["field", <id>, <options>].
const fieldLiteral = "field"

// FieldInfo describes a resolved field: its column name and the qualified
// name of the table that owns it.
type FieldInfo struct {
	Name  string
	Table string
}

// Tables holds the lookup tables for one resolution pass. It is built once
// per extraction call and discarded afterwards; it is never shared across
// calls.
type Tables struct {
	// TableNames maps table ID to qualified name ("schema.name" or "name").
	TableNames map[int64]string

	// FieldLookup maps field ID to its name and owning table. Field IDs are
	// globally unique in Metabase, so one flat map covers every table.
	FieldLookup map[int64]FieldInfo
}

// NewTables returns an empty lookup set.
func NewTables() *Tables {
	return &Tables{
		TableNames:  make(map[int64]string),
		FieldLookup: make(map[int64]FieldInfo),
	}
}

// TableName returns the qualified name for a table ID, falling back to a
// "table_<id>" placeholder for IDs that never resolved.
func (t *Tables) TableName(id int64) string {
	if name, ok := t.TableNames[id]; ok {
		return name
	}
	return "table_" + strconv.FormatInt(id, 10)
}

// FieldName returns the column name for a field ID, falling back to a
// "field_<id>" placeholder.
func (t *Tables) FieldName(id int64) string {
	if fi, ok := t.FieldLookup[id]; ok {
		return fi.Name
	}
	return "field_" + strconv.FormatInt(id, 10)
}

// asNumber reports whether v is a numeric JSON value and returns it as a
// float64. Decoded JSON always yields float64, but trees built in code (and
// tests) may carry Go ints.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// fieldRef reports whether seq is a field-reference node and returns its
// numeric ID and optional third element. A field reference is a two- or
// three-element sequence ["field", <number>, <options>]. Anything else —
// including a "field" head with a non-numeric ID — is treated as a generic
// sequence so that malformed nodes degrade instead of failing resolution.
func fieldRef(seq []any) (id int64, opts any, ok bool) {
	if len(seq) != 2 && len(seq) != 3 {
		return 0, nil, false
	}
	head, isStr := seq[0].(string)
	if !isStr || head != fieldLiteral {
		return 0, nil, false
	}
	n, isNum := asNumber(seq[1])
	if !isNum {
		return 0, nil, false
	}
	if len(seq) == 3 {
		opts = seq[2]
	}
	return int64(n), opts, true
}

// ResolveNode rewrites a query tree, replacing numeric field references with
// resolved names. Scalars pass through unchanged; field references become
// ["field", <name>] or ["field", <name>, <options>] depending on whether the
// input carried a non-null options object; every other sequence is resolved
// element-wise. The input is never mutated.
func ResolveNode(node any, tables *Tables) any {
	seq, isSeq := node.([]any)
	if !isSeq {
		return node
	}

	if id, opts, ok := fieldRef(seq); ok {
		name := tables.FieldName(id)
		if optsMap, isMap := opts.(map[string]any); isMap && optsMap != nil {
			return []any{fieldLiteral, name, optsMap}
		}
		// A null or absent options slot collapses to the two-element form.
		return []any{fieldLiteral, name}
	}

	out := make([]any, len(seq))
	for i, el := range seq {
		out[i] = ResolveNode(el, tables)
	}
	return out
}
