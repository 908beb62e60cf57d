// Package load parses a declarative schema definition into a typed catalog
// of table and column descriptors. The source format is the macro-style
// declaration file of the upstream toolchain:
//
//	table! {
//	    city_boundaries (id) {
//	        id -> Int4,
//	        name -> Text,
//	        geom -> Nullable<Bytea>,
//	    }
//	}
//
//	joinable!(posts -> users (user_id));
//
// The loader is the single owner of descriptor semantics: nullability,
// primary-key membership and the has-default flag are all decided here and
// treated as immutable for the rest of a generation run.
package load

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Table describes one declared table: its exact name, the declared column
// order, and the primary-key column set.
type Table struct {
	// Name is the raw table name, case-sensitive as declared.
	Name string
	// PrimaryKey holds the column names listed in the table header.
	PrimaryKey []string
	// Columns holds the columns in declaration order.
	Columns []*Column
}

// Column describes one declared column.
type Column struct {
	// Name is the column name as declared.
	Name string
	// Type is the declared schema type with any Nullable wrapper stripped.
	Type string
	// Nullable reports whether the declaration wrapped the type in Nullable<...>.
	Nullable bool
	// HasDefault reports whether the column is populated by the database when
	// omitted from an insert. See the package policy in applyDefaults.
	HasDefault bool
	// PrimaryKey reports whether the column is part of the primary key.
	PrimaryKey bool

	// explicitDefault marks columns whose has-default flag was set by an
	// attribute rather than by convention.
	explicitDefault bool
}

// Relation describes a foreign-key relation, either declared through a
// joinable! macro or inferred from a *_id column naming convention.
type Relation struct {
	// Table is the child table holding the foreign key.
	Table string
	// Column is the foreign-key column on the child table.
	Column string
	// RefTable is the parent table the key points at.
	RefTable string
	// RefColumn is the referenced column on the parent; always "id" for
	// macro-declared relations.
	RefColumn string
}

// SchemaSpec is the parsed form of one schema definition source.
type SchemaSpec struct {
	Tables    []*Table
	Relations []*Relation
}

// ErrParse is the sentinel for schema parse failures.
var ErrParse = errors.New("load: invalid schema definition")

// ParseError reports a malformed construct in the schema source.
type ParseError struct {
	Line      int
	Construct string
	Message   string
}

// Error returns the error string.
func (e *ParseError) Error() string {
	if e.Construct != "" {
		return fmt.Sprintf("load: schema parse error at line %d in %q: %s", e.Line, e.Construct, e.Message)
	}
	return fmt.Sprintf("load: schema parse error at line %d: %s", e.Line, e.Message)
}

// Is reports whether the target matches the parse sentinel.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsParseError reports whether the error is a ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

var (
	tableOpenRe = regexp.MustCompile(`^table!\s*\{$`)
	headerRe    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*\(([^)]*)\)\s*\{$`)
	columnRe    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*->\s*([A-Za-z_][A-Za-z0-9_]*(?:<[A-Za-z_][A-Za-z0-9_]*>)?)\s*,?$`)
	attrRe      = regexp.MustCompile(`^#\[([a-z_]+)\]$`)
	joinableRe  = regexp.MustCompile(`^joinable!\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*->\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)\s*\)\s*;?$`)
	nullableRe  = regexp.MustCompile(`^Nullable<([^>]+)>$`)
)

// ParseFile reads and parses the schema definition at path.
func ParseFile(path string) (*SchemaSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read schema %s: %w", path, err)
	}
	return Parse(src)
}

// Parse parses schema definition source into a SchemaSpec. Declared column
// order is preserved. Unrecognized non-blank constructs outside of known
// macros fail with a ParseError naming the construct.
func Parse(src []byte) (*SchemaSpec, error) {
	spec := &SchemaSpec{}
	seen := make(map[string]int) // table name -> line declared

	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	const (
		stateTop = iota
		stateTable   // after "table! {"
		stateColumns // inside the column block
	)
	state := stateTop
	line := 0
	var (
		cur          *Table
		pendingAttrs []string
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		switch state {
		case stateTop:
			switch {
			case tableOpenRe.MatchString(text):
				cur = &Table{}
				state = stateTable
			case strings.HasPrefix(text, "joinable!"):
				m := joinableRe.FindStringSubmatch(text)
				if m == nil {
					return nil, &ParseError{Line: line, Construct: text, Message: "malformed joinable! declaration"}
				}
				spec.Relations = append(spec.Relations, &Relation{
					Table:     m[1],
					Column:    m[3],
					RefTable:  m[2],
					RefColumn: "id",
				})
			case strings.HasPrefix(text, "allow_tables_to_appear_in_same_query!"):
				// Emitted by the upstream toolchain; carries no catalog information.
			default:
				return nil, &ParseError{Line: line, Construct: text, Message: "unrecognized top-level construct"}
			}
		case stateTable:
			m := headerRe.FindStringSubmatch(text)
			if m == nil {
				return nil, &ParseError{Line: line, Construct: text, Message: "expected table header of the form `name (pk) {`"}
			}
			cur.Name = m[1]
			if prev, ok := seen[cur.Name]; ok {
				return nil, &ParseError{Line: line, Construct: cur.Name, Message: fmt.Sprintf("table already declared at line %d", prev)}
			}
			seen[cur.Name] = line
			for _, pk := range strings.Split(m[2], ",") {
				if pk = strings.TrimSpace(pk); pk != "" {
					cur.PrimaryKey = append(cur.PrimaryKey, pk)
				}
			}
			state = stateColumns
		case stateColumns:
			switch {
			case text == "}":
				// Closing the column block; the table block close is the next "}".
				if err := finishTable(cur, line); err != nil {
					return nil, err
				}
				spec.Tables = append(spec.Tables, cur)
				cur = nil
				state = stateTop
				// Consume the table-block close on a following line, if split.
				// A same-line "} }" never occurs in the emitted format.
				if !consumeClose(sc, &line) {
					return nil, &ParseError{Line: line, Message: "unexpected end of input: table block not closed"}
				}
			case attrRe.MatchString(text):
				pendingAttrs = append(pendingAttrs, attrRe.FindStringSubmatch(text)[1])
			default:
				m := columnRe.FindStringSubmatch(text)
				if m == nil {
					return nil, &ParseError{Line: line, Construct: text, Message: "malformed column declaration"}
				}
				col := &Column{Name: m[1], Type: m[2]}
				if nm := nullableRe.FindStringSubmatch(col.Type); nm != nil {
					col.Nullable = true
					col.Type = strings.TrimSpace(nm[1])
				}
				for _, attr := range pendingAttrs {
					switch attr {
					case "has_default":
						col.HasDefault = true
					case "no_default":
						col.HasDefault = false
					default:
						return nil, &ParseError{Line: line, Construct: "#[" + attr + "]", Message: "unknown column attribute"}
					}
				}
				col.explicitDefault = len(pendingAttrs) > 0
				pendingAttrs = nil
				cur.Columns = append(cur.Columns, col)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load: scan schema: %w", err)
	}
	if state != stateTop {
		return nil, &ParseError{Line: line, Message: "unexpected end of input: table block not closed"}
	}
	inferRelations(spec)
	return spec, nil
}

// consumeClose advances the scanner past blank lines to the table-block
// closing brace. Returns false on unexpected end of input.
func consumeClose(sc *bufio.Scanner, line *int) bool {
	for sc.Scan() {
		*line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		return text == "}"
	}
	return false
}

// finishTable validates the parsed table and applies default-having policy.
func finishTable(t *Table, line int) error {
	if len(t.Columns) == 0 {
		return &ParseError{Line: line, Construct: t.Name, Message: "table declares no columns"}
	}
	byName := make(map[string]*Column, len(t.Columns))
	for _, c := range t.Columns {
		if byName[c.Name] != nil {
			return &ParseError{Line: line, Construct: t.Name + "." + c.Name, Message: "column declared twice"}
		}
		byName[c.Name] = c
	}
	for _, pk := range t.PrimaryKey {
		c := byName[pk]
		if c == nil {
			return &ParseError{Line: line, Construct: t.Name, Message: fmt.Sprintf("primary key column %q not declared", pk)}
		}
		c.PrimaryKey = true
	}
	applyDefaults(t)
	return nil
}

// integerTypes are the declared types treated as auto-increment capable.
var integerTypes = map[string]bool{
	"Int2": true, "Int4": true, "Int8": true,
	"SmallInt": true, "Integer": true, "BigInt": true,
	"Serial": true, "BigSerial": true,
}

// applyDefaults decides the has-default flag for columns without an explicit
// #[has_default] / #[no_default] attribute, following the upstream schema
// conventions: a single integer primary key is auto-increment (SERIAL), and
// integer or timestamp created_at / updated_at columns carry a database
// default.
func applyDefaults(t *Table) {
	for _, c := range t.Columns {
		if c.explicitDefault {
			continue
		}
		switch {
		case c.PrimaryKey && len(t.PrimaryKey) == 1 && integerTypes[c.Type]:
			c.HasDefault = true
		case (c.Name == "created_at" || c.Name == "updated_at") && timestampLike(c.Type):
			c.HasDefault = true
		}
	}
}

func timestampLike(typ string) bool {
	switch typ {
	case "Int8", "BigInt", "Timestamp", "Timestamptz", "Date", "Time":
		return true
	}
	return false
}

// inferRelations adds relations for *_id columns whose stem (or its naive
// plural) names another table, skipping pairs already declared via joinable!.
func inferRelations(spec *SchemaSpec) {
	tables := make(map[string]*Table, len(spec.Tables))
	for _, t := range spec.Tables {
		tables[t.Name] = t
	}
	declared := make(map[[2]string]bool, len(spec.Relations))
	for _, r := range spec.Relations {
		declared[[2]string{r.Table, r.Column}] = true
	}
	for _, t := range spec.Tables {
		for _, c := range t.Columns {
			if c.Name == "id" || !strings.HasSuffix(c.Name, "_id") {
				continue
			}
			stem := strings.TrimSuffix(c.Name, "_id")
			target := ""
			switch {
			case tables[stem] != nil:
				target = stem
			case tables[stem+"s"] != nil:
				target = stem + "s"
			default:
				continue
			}
			if declared[[2]string{t.Name, c.Name}] {
				continue
			}
			spec.Relations = append(spec.Relations, &Relation{
				Table:     t.Name,
				Column:    c.Name,
				RefTable:  target,
				RefColumn: "id",
			})
		}
	}
}
