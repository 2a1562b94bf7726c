package mbql

// Structured query members that carry resolvable content. Any member not
// listed here is dropped from the resolved output — that narrowing defines
// the supported surface, it is not an oversight.
const (
	keySourceTable = "source-table"
	keyAggregation = "aggregation"
	keyBreakout    = "breakout"
	keyFilter      = "filter"
	keyOrderBy     = "order-by"
	keyJoins       = "joins"
	keyFields      = "fields"
	keyExpressions = "expressions"
	keyCondition   = "condition"
	keyLimit       = "limit"
)

// ResolveQuery rewrites a structured query, resolving its source table and
// every field reference nested in its clauses. The output contains only the
// members present on the input; nothing is invented and the input is never
// mutated.
func ResolveQuery(query map[string]any, tables *Tables) map[string]any {
	out := make(map[string]any, len(query))

	if st, ok := query[keySourceTable]; ok {
		out[keySourceTable] = resolveSourceTable(st, tables)
	}
	for _, key := range []string{keyAggregation, keyBreakout, keyOrderBy, keyFields} {
		if seq, ok := query[key].([]any); ok {
			resolved := make([]any, len(seq))
			for i, el := range seq {
				resolved[i] = ResolveNode(el, tables)
			}
			out[key] = resolved
		}
	}
	if filter, ok := query[keyFilter]; ok {
		out[keyFilter] = ResolveNode(filter, tables)
	}
	if joins, ok := query[keyJoins].([]any); ok {
		resolved := make([]any, len(joins))
		for i, j := range joins {
			resolved[i] = resolveJoin(j, tables)
		}
		out[keyJoins] = resolved
	}
	if exprs, ok := query[keyExpressions].(map[string]any); ok {
		resolved := make(map[string]any, len(exprs))
		for name, expr := range exprs {
			resolved[name] = ResolveNode(expr, tables)
		}
		out[keyExpressions] = resolved
	}
	if limit, ok := query[keyLimit]; ok {
		out[keyLimit] = limit
	}

	return out
}

// resolveSourceTable maps a numeric table ID to its qualified name. Non-numeric
// source tables (e.g. "card__123" references to saved questions) pass through
// untouched.
func resolveSourceTable(v any, tables *Tables) any {
	if n, ok := asNumber(v); ok {
		return tables.TableName(int64(n))
	}
	return v
}

// resolveJoin resolves a join entry's source table and condition, copying all
// other members through unchanged.
func resolveJoin(join any, tables *Tables) any {
	m, ok := join.(map[string]any)
	if !ok {
		return ResolveNode(join, tables)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	if st, ok := m[keySourceTable]; ok {
		out[keySourceTable] = resolveSourceTable(st, tables)
	}
	if cond, ok := m[keyCondition]; ok {
		out[keyCondition] = ResolveNode(cond, tables)
	}
	return out
}

// TableIDs collects the numeric table IDs referenced by a structured query:
// the top-level source table and each join's source table. Field IDs live
// inside query-tree nodes and are resolved through table metadata, so this
// is the complete set of tables to fetch.
func TableIDs(query map[string]any) []int64 {
	var ids []int64
	if n, ok := asNumber(query[keySourceTable]); ok {
		ids = append(ids, int64(n))
	}
	if joins, ok := query[keyJoins].([]any); ok {
		for _, j := range joins {
			m, isMap := j.(map[string]any)
			if !isMap {
				continue
			}
			if n, ok := asNumber(m[keySourceTable]); ok {
				ids = append(ids, int64(n))
			}
		}
	}
	return ids
}
