package sql

import (
	"bytes"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgen/relgen/compiler/gen"
	"github.com/relgen/relgen/compiler/load"
)

const usersSchema = `table! {
    users (id) {
        id -> Int4,
        name -> Text,
        email -> Nullable<Varchar>,
        admin -> Bool,
        created_at -> Int8,
        updated_at -> Int8,
    }
}

table! {
    posts (id) {
        id -> Int4,
        user_id -> Int4,
        title -> Text,
        published -> Bool,
    }
}

joinable!(posts -> users (user_id));
`

func newTestEmitter(t *testing.T, schema string) (*Emitter, *gen.Graph) {
	t.Helper()
	cfg := gen.MustNewConfig(
		gen.WithSource([]byte(schema)),
		gen.WithGeneratedRoot("db"),
		gen.WithPackage("example.com/project/db"),
	)
	spec, err := load.Parse([]byte(schema))
	require.NoError(t, err)
	graph, err := gen.NewGraph(cfg, spec)
	require.NoError(t, err)
	g := gen.NewGenerator(cfg)
	e := NewEmitter(g)
	g.WithEmitter(e)
	return e, graph
}

func renderFile(t *testing.T, f *jen.File) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	return buf.String()
}

func TestGenEntity(t *testing.T) {
	e, graph := newTestEmitter(t, usersSchema)
	src := renderFile(t, e.GenEntity(graph.Table("users")))

	assert.Contains(t, src, "// Code generated by relgen. DO NOT EDIT.")
	assert.Contains(t, src, "package db")
	assert.Contains(t, src, `const UsersTable = "users"`)
	assert.Contains(t, src, `const UsersPrimaryKey = "id"`)
	assert.Contains(t, src, `var UsersColumns = []string{"id", "name", "email", "admin", "created_at", "updated_at"}`)
	assert.Contains(t, src, "type User struct {")
	assert.Contains(t, src, "`db:\"id\" json:\"id\"`")
	assert.Contains(t, src, "`db:\"email\" json:\"email,omitempty\"`")
	assert.Contains(t, src, "*string")
	assert.Contains(t, src, "CreatedAt")
}

func TestGenEntityNoSingleKey(t *testing.T) {
	const schema = `table! {
    follows (follower_id, followed_id) {
        follower_id -> Int4,
        followed_id -> Int4,
    }
}
`
	e, graph := newTestEmitter(t, schema)
	src := renderFile(t, e.GenEntity(graph.Table("follows")))
	assert.Contains(t, src, `const FollowsTable = "follows"`)
	assert.NotContains(t, src, "FollowsPrimaryKey")
}

func TestGenInsertable(t *testing.T) {
	e, graph := newTestEmitter(t, usersSchema)
	src := renderFile(t, e.GenInsertable(graph.Table("users")))

	assert.Contains(t, src, "package insertable")
	assert.Contains(t, src, "type NewUser struct {")
	// The defaulted primary key is omitted; everything else stays.
	assert.NotContains(t, src, "\tID ")
	assert.Contains(t, src, "Name")
	assert.Contains(t, src, "Email")
	assert.Contains(t, src, "CreatedAt")
}

func TestGenInsertableEmpty(t *testing.T) {
	const schema = `table! {
    pings (id) {
        id -> BigSerial,
    }
}
`
	e, graph := newTestEmitter(t, schema)
	src := renderFile(t, e.GenInsertable(graph.Table("pings")))
	assert.Contains(t, src, "type NewPing struct{}")
}

func TestGenModel(t *testing.T) {
	e, graph := newTestEmitter(t, usersSchema)
	src := renderFile(t, e.GenModel(graph.Table("users")))

	assert.Contains(t, src, "package models")
	assert.Contains(t, src, "type UserModel struct {")
	assert.Contains(t, src, "func NewUserModel(drv *sql.Driver) *UserModel")
	assert.Contains(t, src, "func usersSpec() sql.TableSpec")
	assert.Contains(t, src, `Table:   db.UsersTable`)
	assert.Contains(t, src, "func scanUser(rows")
	assert.Contains(t, src, "&v.UpdatedAt)")

	for _, method := range []string{
		"func (m *UserModel) GetAll(ctx context.Context) ([]db.User, error)",
		"func (m *UserModel) GetByID(ctx context.Context, id int32) (db.User, error)",
		"func (m *UserModel) Create(ctx context.Context, payload insertable.NewUser) (db.User, error)",
		"func (m *UserModel) UpdateByID(ctx context.Context, id int32, payload insertable.NewUser) (db.User, error)",
		"func (m *UserModel) DeleteByID(ctx context.Context, id int32) error",
		"func (m *UserModel) Count(ctx context.Context) (int64, error)",
		"func (m *UserModel) CreatedAfter(ctx context.Context, ts int64) ([]db.User, error)",
		"func (m *UserModel) CreatedBetween(ctx context.Context, start int64, end int64) ([]db.User, error)",
		"func (m *UserModel) Recent(ctx context.Context, limit int64) ([]db.User, error)",
		"func (m *UserModel) UpdatedAfter(ctx context.Context, ts int64) ([]db.User, error)",
		"func (m *UserModel) RecentlyUpdated(ctx context.Context, limit int64) ([]db.User, error)",
		"func (m *UserModel) SetAdmin(ctx context.Context, id int32, value bool) (db.User, error)",
	} {
		assert.Contains(t, src, method)
	}

	// The admin setter touches updated_at with an epoch timestamp.
	assert.Contains(t, src, `[]string{"admin", "updated_at"}`)
	assert.Contains(t, src, "time.Now().Unix()")
}

func TestGenModelRelationFinder(t *testing.T) {
	e, graph := newTestEmitter(t, usersSchema)
	src := renderFile(t, e.GenModel(graph.Table("posts")))

	assert.Contains(t, src, "func (m *PostModel) GetByUserID(ctx context.Context, v int32) ([]db.Post, error)")
	assert.Contains(t, src, `sql.Where(sql.EQ("user_id", v))`)
	assert.Contains(t, src, "sql.OrderAsc(db.PostsPrimaryKey)")
	// No created_at column, so no time finders.
	assert.NotContains(t, src, "CreatedAfter")
	// The published setter exists but cannot touch a missing updated_at.
	assert.Contains(t, src, "func (m *PostModel) SetPublished")
	assert.Contains(t, src, `[]string{"published"}`)
}

func TestGenModelCreateArgs(t *testing.T) {
	e, graph := newTestEmitter(t, usersSchema)
	src := renderFile(t, e.GenModel(graph.Table("users")))
	assert.Contains(t, src, `[]string{"name", "email", "admin", "created_at", "updated_at"}`)
	assert.Contains(t, src, "payload.Name")
	assert.Contains(t, src, "payload.Email")
}

// Naming regression: every symbol and file derives from the exact table
// name; only the struct name is singularized.
func TestGenCityBoundaries(t *testing.T) {
	const schema = `table! {
    city_boundaries (id) {
        id -> Int4,
        name -> Text,
        geom -> Nullable<Bytea>,
    }
}
`
	e, graph := newTestEmitter(t, schema)
	tbl := graph.Table("city_boundaries")
	require.NotNil(t, tbl)
	assert.Equal(t, "city_boundaries.go", tbl.Names.FileName)

	entity := renderFile(t, e.GenEntity(tbl))
	assert.Contains(t, entity, `const CityBoundariesTable = "city_boundaries"`)
	assert.Contains(t, entity, `const CityBoundariesPrimaryKey = "id"`)
	assert.Contains(t, entity, "type CityBoundary struct {")
	// Nullable blob stays a value slice; nil already scans from NULL.
	assert.Contains(t, entity, "Geom []byte")
	assert.NotContains(t, entity, "*[]byte")

	ins := renderFile(t, e.GenInsertable(tbl))
	assert.Contains(t, ins, "type NewCityBoundary struct {")
	assert.NotContains(t, ins, "\tID ")

	model := renderFile(t, e.GenModel(tbl))
	assert.Contains(t, model, "type CityBoundaryModel struct {")
	assert.Contains(t, model, "func (m *CityBoundaryModel) GetAll(ctx context.Context) ([]db.CityBoundary, error)")
}

func TestEmitterName(t *testing.T) {
	e, _ := newTestEmitter(t, usersSchema)
	assert.Equal(t, "sql", e.Name())
}
