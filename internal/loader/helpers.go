package loader

import (
	"fmt"
)

// uniqueValues collects the distinct non-null values of key across records,
// preserving first-seen order. Values are deduplicated by their printed form
// so numeric and string representations of the same key coincide.
func uniqueValues(records []*LinkedRecord, key string) []any {
	seen := make(map[string]struct{})
	values := make([]any, 0, len(records))
	for _, rec := range records {
		raw := rec.Row[key]
		if raw == nil {
			continue
		}
		normalized := fmt.Sprint(raw)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		values = append(values, raw)
	}
	return values
}

// groupByField groups rows by the printed value of fieldName.
func groupByField(rows []map[string]any, fieldName string) map[string][]map[string]any {
	grouped := make(map[string][]map[string]any)
	for _, row := range rows {
		key := fmt.Sprint(row[fieldName])
		grouped[key] = append(grouped[key], row)
	}
	return grouped
}

// groupByAlias groups rows by a synthetic parent-key column and strips the
// column from each row.
func groupByAlias(rows []map[string]any, alias string) map[string][]map[string]any {
	grouped := make(map[string][]map[string]any)
	for _, row := range rows {
		key := fmt.Sprint(row[alias])
		delete(row, alias)
		grouped[key] = append(grouped[key], row)
	}
	return grouped
}

// chunkValues splits values into slices of at most max elements.
func chunkValues(values []any, max int) [][]any {
	if len(values) == 0 {
		return nil
	}
	if max <= 0 || len(values) <= max {
		return [][]any{values}
	}
	chunks := make([][]any, 0, (len(values)+max-1)/max)
	for start := 0; start < len(values); start += max {
		end := start + max
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}

// batchQueriesSaved compares the naive one-query-per-parent plan to the
// chunked plan actually issued.
func batchQueriesSaved(parentCount, chunkCount int) int64 {
	if parentCount <= 0 || chunkCount <= 0 {
		return 0
	}
	if saved := parentCount - chunkCount; saved > 0 {
		return int64(saved)
	}
	return 0
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
