package joins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredIndexes(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	reqs := resolver.RequiredIndexes("articles", []string{
		"title",          // local, indexed
		"draft",          // local, not indexed
		"companies.name", // resolvable, indexed target
	})

	require.Len(t, reqs, 1)
	assert.Equal(t, "articles", reqs[0].Type)
	assert.Equal(t, "draft", reqs[0].Field)
}

func TestRequiredIndexesCrossTable(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	reqs := resolver.RequiredIndexes("articles", []string{"companies.phone"})

	require.Len(t, reqs, 1)
	assert.Equal(t, "companies", reqs[0].Type)
	assert.Equal(t, "phone", reqs[0].Field)
	assert.Contains(t, reqs[0].Reason, "companies.phone")
}

func TestRequiredIndexesUnresolvablePath(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	reqs := resolver.RequiredIndexes("articles", []string{"ghosts.name"})

	require.Len(t, reqs, 1)
	assert.Equal(t, "articles", reqs[0].Type)
	assert.Equal(t, "ghosts.name", reqs[0].Field)
	assert.Contains(t, reqs[0].Reason, "unresolvable")
}

func TestRequiredIndexesDeduplicates(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	reqs := resolver.RequiredIndexes("articles", []string{
		"companies.phone",
		"companies.phone",
	})

	assert.Len(t, reqs, 1)
}
