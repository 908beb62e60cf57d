package gen

import (
	"github.com/relgen/relgen/compiler/load"
)

// Graph is the immutable catalog one generation run works from: the tables
// that survived filtering, with names resolved, types mapped and relations
// attached. Construction fails on the first planning error; a Graph in hand
// means emission can proceed.
type Graph struct {
	Config *Config
	// Nodes holds the tables to generate, in declaration order.
	Nodes []*Type
	// Skipped counts tables excluded by the ignore list or a single-table
	// scope.
	Skipped int
}

// NewGraph builds the catalog from a parsed schema. It applies the ignore
// list and single-table scope, resolves names, maps column types and
// attaches relations. All planning errors surface here, before any file is
// written.
func NewGraph(c *Config, spec *load.SchemaSpec) (*Graph, error) {
	g := &Graph{Config: c}
	var (
		byName  = make(map[string]*Type, len(spec.Tables))
		symbols = make(map[string]string, len(spec.Tables)*2)
		found   bool
	)
	for _, t := range spec.Tables {
		if c.ignored(t.Name) {
			g.Skipped++
			continue
		}
		if c.Table != "" && t.Name != c.Table {
			g.Skipped++
			continue
		}
		found = found || t.Name == c.Table
		typ, err := newType(t)
		if err != nil {
			return nil, err
		}
		// Row structs, table consts and model types all live in flat
		// package namespaces; any shared derived identifier is a collision.
		for _, sym := range [...]string{typ.Names.Symbol, typ.Names.StructName} {
			if prev, ok := symbols[sym]; ok && prev != t.Name {
				return nil, NewNamingCollisionError(sym, prev, t.Name)
			}
			symbols[sym] = t.Name
		}
		byName[t.Name] = typ
		g.Nodes = append(g.Nodes, typ)
	}
	if c.Table != "" && !found {
		return nil, NewTableNotFoundError(c.SchemaPath, c.Table)
	}
	if len(g.Nodes) == 0 {
		return nil, NewSchemaNotFoundError(c.SchemaPath)
	}

	declared := make(map[string]bool, len(spec.Tables))
	for _, t := range spec.Tables {
		declared[t.Name] = true
	}
	for _, r := range spec.Relations {
		t := byName[r.Table]
		if t == nil || !declared[r.RefTable] {
			continue
		}
		f := t.Field(r.Column)
		if f == nil {
			continue
		}
		t.Relations = append(t.Relations, &Relation{
			Column:    r.Column,
			Field:     f,
			RefTable:  r.RefTable,
			RefColumn: r.RefColumn,
		})
	}
	return g, nil
}

// Table returns the catalog node for a table name, or nil.
func (g *Graph) Table(name string) *Type {
	for _, t := range g.Nodes {
		if t.Name == name {
			return t
		}
	}
	return nil
}
