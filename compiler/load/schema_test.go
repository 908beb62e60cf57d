package load

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicSchema = `
table! {
    city_boundaries (id) {
        id -> Int4,
        name -> Text,
        geom -> Nullable<Bytea>,
    }
}

table! {
    users (id) {
        id -> Int4,
        email -> Varchar,
        active -> Bool,
        created_at -> Int8,
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
`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(basicSchema))
	require.NoError(t, err)
	require.Len(t, spec.Tables, 3)

	t.Run("TableNames", func(t *testing.T) {
		assert.Equal(t, "city_boundaries", spec.Tables[0].Name)
		assert.Equal(t, "users", spec.Tables[1].Name)
		assert.Equal(t, "posts", spec.Tables[2].Name)
	})

	t.Run("ColumnOrder", func(t *testing.T) {
		cols := spec.Tables[0].Columns
		require.Len(t, cols, 3)
		assert.Equal(t, "id", cols[0].Name)
		assert.Equal(t, "name", cols[1].Name)
		assert.Equal(t, "geom", cols[2].Name)
	})

	t.Run("Nullable", func(t *testing.T) {
		geom := spec.Tables[0].Columns[2]
		assert.True(t, geom.Nullable)
		assert.Equal(t, "Bytea", geom.Type)

		name := spec.Tables[0].Columns[1]
		assert.False(t, name.Nullable)
		assert.Equal(t, "Text", name.Type)
	})

	t.Run("PrimaryKey", func(t *testing.T) {
		assert.Equal(t, []string{"id"}, spec.Tables[0].PrimaryKey)
		assert.True(t, spec.Tables[0].Columns[0].PrimaryKey)
		assert.False(t, spec.Tables[0].Columns[1].PrimaryKey)
	})

	t.Run("AutoIncrementDefault", func(t *testing.T) {
		// A single integer primary key is default-having (SERIAL convention).
		assert.True(t, spec.Tables[0].Columns[0].HasDefault)
	})

	t.Run("TimestampDefault", func(t *testing.T) {
		users := spec.Tables[1]
		var createdAt *Column
		for _, c := range users.Columns {
			if c.Name == "created_at" {
				createdAt = c
			}
		}
		require.NotNil(t, createdAt)
		assert.True(t, createdAt.HasDefault)
	})

	t.Run("Joinable", func(t *testing.T) {
		require.NotEmpty(t, spec.Relations)
		rel := spec.Relations[0]
		assert.Equal(t, "posts", rel.Table)
		assert.Equal(t, "user_id", rel.Column)
		assert.Equal(t, "users", rel.RefTable)
		assert.Equal(t, "id", rel.RefColumn)
	})

	t.Run("NoDuplicateInferredRelation", func(t *testing.T) {
		// posts.user_id is declared via joinable! and must not be inferred again.
		count := 0
		for _, r := range spec.Relations {
			if r.Table == "posts" && r.Column == "user_id" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestParseAttributes(t *testing.T) {
	spec, err := Parse([]byte(`
table! {
    events (id) {
        id -> Int4,
        #[has_default]
        kind -> Text,
        #[no_default]
        created_at -> Int8,
    }
}
`))
	require.NoError(t, err)
	require.Len(t, spec.Tables, 1)
	cols := spec.Tables[0].Columns
	assert.True(t, cols[1].HasDefault, "#[has_default] forces the flag on")
	assert.False(t, cols[2].HasDefault, "#[no_default] overrides the created_at convention")
}

func TestParseInferredRelation(t *testing.T) {
	spec, err := Parse([]byte(`
table! {
    users (id) {
        id -> Int4,
        name -> Text,
    }
}

table! {
    comments (id) {
        id -> Int4,
        user_id -> Int4,
        body -> Text,
    }
}
`))
	require.NoError(t, err)
	require.Len(t, spec.Relations, 1)
	assert.Equal(t, "comments", spec.Relations[0].Table)
	assert.Equal(t, "users", spec.Relations[0].RefTable)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"UnclosedTable", "table! {\n users (id) {\n id -> Int4,\n"},
		{"MalformedColumn", "table! {\n users (id) {\n id => Int4,\n }\n}\n"},
		{"MalformedHeader", "table! {\n users id {\n id -> Int4,\n }\n}\n"},
		{"UnknownTopLevel", "create table users (id int);\n"},
		{"UnknownAttribute", "table! {\n users (id) {\n #[sparkles]\n id -> Int4,\n }\n}\n"},
		{"DuplicateTable", "table! {\n users (id) {\n id -> Int4,\n }\n}\ntable! {\n users (id) {\n id -> Int4,\n }\n}\n"},
		{"DuplicateColumn", "table! {\n users (id) {\n id -> Int4,\n id -> Int8,\n }\n}\n"},
		{"UndeclaredPrimaryKey", "table! {\n users (uid) {\n id -> Int4,\n }\n}\n"},
		{"EmptyTable", "table! {\n users (id) {\n }\n}\n"},
		{"MalformedJoinable", "joinable!(posts => users (user_id));\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, IsParseError(err), "expected ParseError, got %v", err)
			assert.True(t, errors.Is(err, ErrParse))
		})
	}
}

func TestParseErrorNamesConstruct(t *testing.T) {
	_, err := Parse([]byte("table! {\n users (id) {\n id ~> Int4,\n }\n}\n"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "id ~> Int4")
	assert.Equal(t, 3, pe.Line)
}

func TestParseFile(t *testing.T) {
	spec, err := ParseFile("testdata/schema.rs")
	require.NoError(t, err)
	require.Len(t, spec.Tables, 3)
	assert.Equal(t, "users", spec.Tables[0].Name)
	assert.Equal(t, "posts", spec.Tables[1].Name)
	assert.Equal(t, "comments", spec.Tables[2].Name)
	// Three declared joinable! relations, none duplicated by inference.
	assert.Len(t, spec.Relations, 3)

	posts := spec.Tables[1]
	body := posts.Columns[3]
	assert.Equal(t, "body", body.Name)
	assert.True(t, body.Nullable)
	assert.Equal(t, "Text", body.Type)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile("testdata/absent.rs")
	require.Error(t, err)
	assert.False(t, IsParseError(err))
}
