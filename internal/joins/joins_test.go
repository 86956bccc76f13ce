package joins

import (
	"errors"
	"testing"

	"relgraph/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newsroomCatalog declares the canonical articles/people/companies graph used
// throughout the resolver tests, plus a tag pivot for many-to-many coverage.
func newsroomCatalog() *schema.Catalog {
	return schema.NewCatalog([]schema.Entity{
		{
			Name: "articles",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "title", Indexed: true},
				{Name: "draft"},
				{Name: "author_id", Indexed: true, BelongsTo: "people", Alias: "author"},
			},
			Relationships: []schema.Relationship{
				{Name: "tags", Kind: schema.KindManyToMany, Target: "tags", Through: "article_tags", ForeignKey: "article_id", OtherKey: "tag_id"},
			},
		},
		{
			Name: "people",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "name", Indexed: true},
				{Name: "company_id", Indexed: true, BelongsTo: "companies", Alias: "company"},
			},
		},
		{
			Name: "companies",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "name", Indexed: true},
				{Name: "phone"},
			},
		},
		{
			Name: "tags",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "label", Indexed: true},
			},
		},
		{
			Name: "article_tags",
			Fields: []schema.Field{
				{Name: "article_id", Indexed: true},
				{Name: "tag_id", Indexed: true},
			},
		},
	})
}

// forumCatalog declares a polymorphic comments graph: comments point at
// articles or people through a discriminator pair, and articles expose the
// reverse edge through "via".
func forumCatalog() *schema.Catalog {
	return schema.NewCatalog([]schema.Entity{
		{
			Name: "articles",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "title", Indexed: true},
			},
			Relationships: []schema.Relationship{
				{Name: "comments", Kind: schema.KindReversePolymorphic, Target: "comments", Via: "commentable"},
			},
		},
		{
			Name: "people",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "name", Indexed: true},
			},
		},
		{
			Name: "comments",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "body", Indexed: true},
				{Name: "commentable_type"},
				{Name: "commentable_id", Indexed: true},
			},
			Relationships: []schema.Relationship{
				{Name: "commentable", Kind: schema.KindPolymorphic, TypeField: "commentable_type", IDField: "commentable_id", AllowedTypes: []string{"articles", "people"}},
			},
		},
	})
}

func TestJoinAlias(t *testing.T) {
	assert.Equal(t, "articles_to_people_people", JoinAlias("articles", "people"))
	assert.Equal(t, "people_to_companies_companies", JoinAlias("people", "companies"))
}

func TestResolveJoinChainDirectBelongsTo(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	plan, err := resolver.ResolveJoinChain("articles", "people.name")
	require.NoError(t, err)

	assert.Equal(t, "articles", plan.RootType)
	assert.Equal(t, "articles", plan.RootTable)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "people", plan.Steps[0].TargetTable)
	assert.Equal(t, "articles_to_people_people", plan.Steps[0].Alias)
	assert.Equal(t, "articles.author_id = articles_to_people_people.id", plan.Steps[0].Condition)
	assert.False(t, plan.Steps[0].ToMany)
	assert.Equal(t, "articles_to_people_people", plan.TargetAlias)
	assert.Equal(t, "name", plan.TargetField)
	assert.Equal(t, "people", plan.TargetType)
}

func TestResolveJoinChainTransitive(t *testing.T) {
	// No direct edge from articles to companies: the resolver must route
	// through people and emit one step per hop.
	resolver := NewResolver(newsroomCatalog())

	plan, err := resolver.ResolveJoinChain("articles", "companies.name")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "articles_to_people_people", plan.Steps[0].Alias)
	assert.Equal(t, "articles.author_id = articles_to_people_people.id", plan.Steps[0].Condition)
	assert.Equal(t, "people_to_companies_companies", plan.Steps[1].Alias)
	assert.Equal(t, "articles_to_people_people.company_id = people_to_companies_companies.id", plan.Steps[1].Condition)
	assert.Equal(t, "people_to_companies_companies", plan.TargetAlias)
	assert.Equal(t, "name", plan.TargetField)
	assert.Equal(t, "companies", plan.TargetType)
}

func TestResolveJoinChainManyToMany(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	plan, err := resolver.ResolveJoinChain("articles", "tags.label")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)

	pivot := plan.Steps[0]
	assert.Equal(t, "article_tags", pivot.TargetTable)
	assert.Equal(t, "articles_to_article_tags_article_tags", pivot.Alias)
	assert.Equal(t, "articles.id = articles_to_article_tags_article_tags.article_id", pivot.Condition)
	assert.True(t, pivot.ToMany)

	target := plan.Steps[1]
	assert.Equal(t, "tags", target.TargetTable)
	assert.Equal(t, "article_tags_to_tags_tags", target.Alias)
	assert.Equal(t, "articles_to_article_tags_article_tags.tag_id = article_tags_to_tags_tags.id", target.Condition)
	assert.True(t, target.ToMany)

	assert.Equal(t, "article_tags_to_tags_tags", plan.TargetAlias)
}

func TestResolveJoinChainPolymorphic(t *testing.T) {
	resolver := NewResolver(forumCatalog())

	plan, err := resolver.ResolveJoinChain("comments", "articles.title")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, "comments_to_articles_articles", step.Alias)
	assert.Equal(t,
		"comments.commentable_id = comments_to_articles_articles.id AND comments.commentable_type = 'articles'",
		step.Condition)
	assert.True(t, step.Polymorphic)
	assert.False(t, step.ToMany)
}

func TestResolveJoinChainVia(t *testing.T) {
	resolver := NewResolver(forumCatalog())

	plan, err := resolver.ResolveJoinChain("articles", "comments.body")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, "articles_to_comments_comments", step.Alias)
	assert.Equal(t,
		"articles.id = articles_to_comments_comments.commentable_id AND articles_to_comments_comments.commentable_type = 'articles'",
		step.Condition)
	assert.True(t, step.ToMany)
	assert.True(t, step.Polymorphic)
}

func TestResolveJoinChainPrefersManySideOverForeignKey(t *testing.T) {
	// users both own teams (hasMany) and belong to a team; the many side wins.
	catalog := schema.NewCatalog([]schema.Entity{
		{
			Name: "users",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "team_id", Indexed: true, BelongsTo: "teams", Alias: "team"},
			},
			Relationships: []schema.Relationship{
				{Name: "owned_teams", Kind: schema.KindHasMany, Target: "teams", ForeignKey: "owner_id"},
			},
		},
		{
			Name: "teams",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "name", Indexed: true},
				{Name: "owner_id", Indexed: true},
			},
		},
	})
	resolver := NewResolver(catalog)

	plan, err := resolver.ResolveJoinChain("users", "teams.name")
	require.NoError(t, err)

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "users.id = users_to_teams_teams.owner_id", plan.Steps[0].Condition)
	assert.True(t, plan.Steps[0].ToMany)
}

func TestResolveJoinChainFieldNotIndexed(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	_, err := resolver.ResolveJoinChain("articles", "companies.phone")
	require.Error(t, err)

	var notIndexed *FieldNotIndexedError
	require.True(t, errors.As(err, &notIndexed))
	assert.Equal(t, "companies", notIndexed.Type)
	assert.Equal(t, "phone", notIndexed.Field)
	assert.Contains(t, err.Error(), "indexed: true")
}

func TestResolveJoinChainFieldNotFound(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	_, err := resolver.ResolveJoinChain("articles", "companies.revenue")
	require.Error(t, err)

	var notFound *FieldNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "companies", notFound.Type)
	assert.Equal(t, "revenue", notFound.Field)
}

func TestResolveJoinChainUnknownRootType(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	_, err := resolver.ResolveJoinChain("ghosts", "companies.name")
	require.Error(t, err)

	var notFound *SchemaNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghosts", notFound.Type)
}

func TestResolveJoinChainUnknownSegmentType(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	_, err := resolver.ResolveJoinChain("articles", "ghosts.name")
	require.Error(t, err)

	var notFound *SchemaNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghosts", notFound.Type)
}

func TestResolveJoinChainNoRelationshipPath(t *testing.T) {
	// companies declares no outgoing edges at all.
	resolver := NewResolver(newsroomCatalog())

	_, err := resolver.ResolveJoinChain("companies", "articles.title")
	require.Error(t, err)

	var notFound *RelationshipNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "companies", notFound.From)
	assert.Equal(t, "articles", notFound.To)
}

func TestResolveJoinChainCircularReference(t *testing.T) {
	catalog := schema.NewCatalog([]schema.Entity{
		{
			Name:   "users",
			Fields: []schema.Field{{Name: "id", Indexed: true}},
			Relationships: []schema.Relationship{
				{Name: "posts", Kind: schema.KindHasMany, Target: "posts", ForeignKey: "user_id"},
			},
		},
		{
			Name: "posts",
			Fields: []schema.Field{
				{Name: "id", Indexed: true},
				{Name: "user_id", Indexed: true, BelongsTo: "users", Alias: "user"},
			},
		},
		{
			Name:   "teams",
			Fields: []schema.Field{{Name: "id", Indexed: true}},
		},
	})
	resolver := NewResolver(catalog)

	_, err := resolver.ResolveJoinChain("users", "teams.id")
	require.Error(t, err)

	var circular *CircularReferenceError
	require.True(t, errors.As(err, &circular))
	assert.Equal(t, []string{"users", "posts", "users"}, circular.Cycle)
	assert.Contains(t, err.Error(), "users -> posts -> users")
}

func TestResolveJoinChainRequiresRelationshipSegment(t *testing.T) {
	resolver := NewResolver(newsroomCatalog())

	_, err := resolver.ResolveJoinChain("articles", "title")
	require.Error(t, err)
}
