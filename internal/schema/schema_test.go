package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogDefaults(t *testing.T) {
	c := NewCatalog([]Entity{
		{Name: "article"},
		{Name: "UserProfile"},
		{Name: "people", Table: "staff", IDField: "person_id"},
	})

	assert.Equal(t, "articles", c.TableName("article"))
	assert.Equal(t, "user_profiles", c.TableName("UserProfile"))
	assert.Equal(t, "id", c.IDField("article"))

	assert.Equal(t, "staff", c.TableName("people"))
	assert.Equal(t, "person_id", c.IDField("people"))

	assert.Equal(t, []string{"article", "UserProfile", "people"}, c.EntityNames())
}

func TestCatalogUnknownEntity(t *testing.T) {
	c := NewCatalog([]Entity{{Name: "articles"}})

	_, ok := c.Entity("ghosts")
	assert.False(t, ok)
	assert.Nil(t, c.Fields("ghosts"))
	assert.Nil(t, c.Relationships("ghosts"))
	// Unknown names still render a usable table reference for error paths.
	assert.Equal(t, "ghosts", c.TableName("ghosts"))
	assert.Equal(t, "id", c.IDField("ghosts"))
}

func TestBelongsToSynthesis(t *testing.T) {
	c := NewCatalog([]Entity{
		{
			Name: "articles",
			Fields: []Field{
				{Name: "id", Indexed: true},
				{Name: "author_id", BelongsTo: "people", Alias: "author"},
				{Name: "company_id", BelongsTo: "companies"},
				{Name: "title"},
			},
		},
		{Name: "people"},
		{Name: "companies"},
	})

	entity, ok := c.Entity("articles")
	require.True(t, ok)

	edges := entity.BelongsTo()
	require.Len(t, edges, 2)

	assert.Equal(t, "author", edges[0].Name)
	assert.Equal(t, KindBelongsTo, edges[0].Kind)
	assert.Equal(t, "people", edges[0].Target)
	assert.Equal(t, "author_id", edges[0].ForeignKey)

	// Without an alias the relationship name is the field minus its _id suffix.
	assert.Equal(t, "company", edges[1].Name)
	assert.Equal(t, "companies", edges[1].Target)
}

func TestEntityFieldLookup(t *testing.T) {
	c := NewCatalog([]Entity{
		{Name: "articles", Fields: []Field{{Name: "title", Indexed: true}}},
	})
	entity, _ := c.Entity("articles")

	f, ok := entity.Field("title")
	require.True(t, ok)
	assert.True(t, f.Indexed)

	_, ok = entity.Field("missing")
	assert.False(t, ok)
}

func TestRelationshipToMany(t *testing.T) {
	assert.False(t, Relationship{Kind: KindBelongsTo}.ToMany())
	assert.False(t, Relationship{Kind: KindPolymorphic}.ToMany())
	assert.True(t, Relationship{Kind: KindHasMany}.ToMany())
	assert.True(t, Relationship{Kind: KindManyToMany}.ToMany())
	assert.True(t, Relationship{Kind: KindReversePolymorphic}.ToMany())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "belongs_to", KindBelongsTo.String())
	assert.Equal(t, "has_many", KindHasMany.String())
	assert.Equal(t, "many_to_many", KindManyToMany.String())
	assert.Equal(t, "polymorphic", KindPolymorphic.String())
	assert.Equal(t, "via", KindReversePolymorphic.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
