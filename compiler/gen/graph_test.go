package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgen/relgen/compiler/load"
)

const blogSchema = `table! {
    users (id) {
        id -> Int4,
        name -> Text,
    }
}

table! {
    posts (id) {
        id -> Int4,
        user_id -> Int4,
        title -> Text,
    }
}

joinable!(posts -> users (user_id));

allow_tables_to_appear_in_same_query!(users, posts);
`

func parseSchema(t *testing.T, src string) *load.SchemaSpec {
	t.Helper()
	spec, err := load.Parse([]byte(src))
	require.NoError(t, err)
	return spec
}

func TestNewGraph(t *testing.T) {
	c := MustNewConfig(WithSource([]byte(blogSchema)), WithGeneratedRoot("db"), WithPackage("example.com/db"))
	g, err := NewGraph(c, parseSchema(t, blogSchema))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	assert.Zero(t, g.Skipped)

	posts := g.Table("posts")
	require.NotNil(t, posts)
	require.Len(t, posts.Relations, 1)
	r := posts.Relations[0]
	assert.Equal(t, "user_id", r.Column)
	assert.Equal(t, "users", r.RefTable)
	assert.Equal(t, "id", r.RefColumn)
	assert.Same(t, posts.Field("user_id"), r.Field)

	assert.Nil(t, g.Table("comments"))
}

func TestNewGraphIgnoreList(t *testing.T) {
	c := MustNewConfig(
		WithSource([]byte(blogSchema)),
		WithGeneratedRoot("db"),
		WithPackage("example.com/db"),
		WithIgnoreTables("POSTS"),
	)
	g, err := NewGraph(c, parseSchema(t, blogSchema))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "users", g.Nodes[0].Name)
	assert.Equal(t, 1, g.Skipped)
}

func TestNewGraphSingleTable(t *testing.T) {
	c := MustNewConfig(
		WithSource([]byte(blogSchema)),
		WithGeneratedRoot("db"),
		WithPackage("example.com/db"),
		WithTable("posts"),
	)
	g, err := NewGraph(c, parseSchema(t, blogSchema))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, 1, g.Skipped)

	// The referenced table is outside the scope but the relation survives,
	// so the scoped run emits the same finders as a full run.
	posts := g.Table("posts")
	require.Len(t, posts.Relations, 1)
	assert.Equal(t, "users", posts.Relations[0].RefTable)
}

func TestNewGraphTableNotFound(t *testing.T) {
	c := MustNewConfig(
		WithSchemaPath("schema.rs"),
		WithSource([]byte(blogSchema)),
		WithGeneratedRoot("db"),
		WithPackage("example.com/db"),
		WithTable("comments"),
	)
	_, err := NewGraph(c, parseSchema(t, blogSchema))
	require.Error(t, err)
	assert.True(t, IsSchemaNotFound(err))
	assert.Contains(t, err.Error(), `table "comments" not found`)
}

func TestNewGraphAllIgnored(t *testing.T) {
	c := MustNewConfig(
		WithSource([]byte(blogSchema)),
		WithGeneratedRoot("db"),
		WithPackage("example.com/db"),
		WithIgnoreTables("users", "posts"),
	)
	_, err := NewGraph(c, parseSchema(t, blogSchema))
	require.Error(t, err)
	assert.True(t, IsSchemaNotFound(err))
}

func TestNewGraphNamingCollision(t *testing.T) {
	src := `table! {
    status (id) {
        id -> Int4,
    }
}

table! {
    statuses (id) {
        id -> Int4,
    }
}
`
	c := MustNewConfig(WithSource([]byte(src)), WithGeneratedRoot("db"), WithPackage("example.com/db"))
	_, err := NewGraph(c, parseSchema(t, src))
	require.Error(t, err)
	assert.True(t, IsNamingCollision(err))
	var nce *NamingCollisionError
	require.ErrorAs(t, err, &nce)
	assert.Equal(t, "Status", nce.Symbol)
	assert.Equal(t, [2]string{"status", "statuses"}, nce.Tables)
}

func TestNewGraphSkipsDanglingRelation(t *testing.T) {
	src := `table! {
    posts (id) {
        id -> Int4,
        author_id -> Int4,
    }
}
`
	c := MustNewConfig(WithSource([]byte(src)), WithGeneratedRoot("db"), WithPackage("example.com/db"))
	g, err := NewGraph(c, parseSchema(t, src))
	require.NoError(t, err)
	assert.Empty(t, g.Table("posts").Relations)
}
