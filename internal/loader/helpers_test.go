package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueValues(t *testing.T) {
	records := []*LinkedRecord{
		{Row: map[string]any{"author_id": 10}},
		{Row: map[string]any{"author_id": int64(10)}}, // same key, different width
		{Row: map[string]any{"author_id": nil}},
		{Row: map[string]any{"author_id": 20}},
		{Row: map[string]any{}},
	}

	values := uniqueValues(records, "author_id")
	assert.Equal(t, []any{10, 20}, values)
}

func TestChunkValues(t *testing.T) {
	values := []any{1, 2, 3, 4, 5}

	assert.Nil(t, chunkValues(nil, 2))
	assert.Equal(t, [][]any{values}, chunkValues(values, 0))
	assert.Equal(t, [][]any{values}, chunkValues(values, 10))

	chunks := chunkValues(values, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []any{1, 2}, chunks[0])
	assert.Equal(t, []any{3, 4}, chunks[1])
	assert.Equal(t, []any{5}, chunks[2])
}

func TestGroupByField(t *testing.T) {
	rows := []map[string]any{
		{"author_id": 1, "id": 10},
		{"author_id": 2, "id": 11},
		{"author_id": 1, "id": 12},
	}

	grouped := groupByField(rows, "author_id")
	assert.Len(t, grouped["1"], 2)
	assert.Len(t, grouped["2"], 1)
}

func TestGroupByAliasStripsColumn(t *testing.T) {
	rows := []map[string]any{
		{"id": 10, batchParentAlias: 1},
		{"id": 11, batchParentAlias: 1},
	}

	grouped := groupByAlias(rows, batchParentAlias)
	require.Len(t, grouped["1"], 2)
	_, present := grouped["1"][0][batchParentAlias]
	assert.False(t, present)
}

func TestBatchQueriesSaved(t *testing.T) {
	assert.Equal(t, int64(99), batchQueriesSaved(100, 1))
	assert.Equal(t, int64(0), batchQueriesSaved(1, 1))
	assert.Equal(t, int64(0), batchQueriesSaved(0, 0))
}
