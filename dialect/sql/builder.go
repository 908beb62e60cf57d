package sql

import (
	"strconv"
	"strings"

	"github.com/relgen/relgen/dialect"
)

// TableSpec carries the table metadata one generated model operates on.
// Table and column names come from generated constants.
type TableSpec struct {
	// Table is the table name.
	Table string
	// ID is the single primary-key column, empty for composite or absent
	// keys. By-ID operations require it.
	ID string
	// Columns holds every column in declaration order; it is the select
	// list and the scan order.
	Columns []string
}

// Pred is one WHERE predicate. Predicates combine with AND.
type Pred struct {
	Column string
	Op     string
	Arg    any
}

// EQ matches rows whose column equals v.
func EQ(column string, v any) Pred { return Pred{Column: column, Op: "=", Arg: v} }

// GT matches rows whose column is strictly greater than v.
func GT(column string, v any) Pred { return Pred{Column: column, Op: ">", Arg: v} }

// GTE matches rows whose column is greater than or equal to v.
func GTE(column string, v any) Pred { return Pred{Column: column, Op: ">=", Arg: v} }

// LT matches rows whose column is strictly less than v.
func LT(column string, v any) Pred { return Pred{Column: column, Op: "<", Arg: v} }

// LTE matches rows whose column is less than or equal to v.
func LTE(column string, v any) Pred { return Pred{Column: column, Op: "<=", Arg: v} }

// queryOpts is the resolved form of the QueryOption list.
type queryOpts struct {
	preds   []Pred
	orderBy string
	desc    bool
	limit   int64
}

// QueryOption refines a Query call.
type QueryOption func(*queryOpts)

// Where adds predicates, combined with AND.
func Where(preds ...Pred) QueryOption {
	return func(q *queryOpts) { q.preds = append(q.preds, preds...) }
}

// OrderAsc orders the result by column, ascending.
func OrderAsc(column string) QueryOption {
	return func(q *queryOpts) { q.orderBy, q.desc = column, false }
}

// OrderDesc orders the result by column, descending.
func OrderDesc(column string) QueryOption {
	return func(q *queryOpts) { q.orderBy, q.desc = column, true }
}

// Limit caps the result size. Non-positive values mean no limit.
func Limit(n int64) QueryOption {
	return func(q *queryOpts) { q.limit = n }
}

// placeholder renders the n-th (1-based) bind parameter for the dialect.
func placeholder(dialectName string, n int) string {
	if dialectName == dialect.Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// returningSupported reports whether the dialect supports INSERT/UPDATE
// RETURNING.
func returningSupported(dialectName string) bool {
	return dialectName == dialect.Postgres || dialectName == dialect.SQLite
}

// selectStmt builds a SELECT over the full column list with the resolved
// query options.
func selectStmt(dialectName string, spec TableSpec, q queryOpts) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(spec.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(spec.Table)
	for i, p := range q.preds {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(p.Column)
		b.WriteString(" ")
		b.WriteString(p.Op)
		b.WriteString(" ")
		b.WriteString(placeholder(dialectName, i+1))
		args = append(args, p.Arg)
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
		if q.desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(q.limit, 10))
	}
	return b.String(), args
}

// selectByIDStmt builds the single-row lookup.
func selectByIDStmt(dialectName string, spec TableSpec) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(spec.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(spec.Table)
	b.WriteString(" WHERE ")
	b.WriteString(spec.ID)
	b.WriteString(" = ")
	b.WriteString(placeholder(dialectName, 1))
	return b.String()
}

// insertStmt builds the INSERT for the given columns, with a RETURNING
// clause over the full column list where the dialect supports it. An empty
// column list becomes a defaults-only insert.
func insertStmt(dialectName string, spec TableSpec, cols []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(spec.Table)
	switch {
	case len(cols) == 0 && dialectName == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	case len(cols) == 0:
		b.WriteString(" DEFAULT VALUES")
	default:
		b.WriteString(" (")
		b.WriteString(strings.Join(cols, ", "))
		b.WriteString(") VALUES (")
		for i := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(placeholder(dialectName, i+1))
		}
		b.WriteString(")")
	}
	if returningSupported(dialectName) {
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(spec.Columns, ", "))
	}
	return b.String()
}

// updateStmt builds the UPDATE for the given columns; the id parameter
// binds last.
func updateStmt(dialectName string, spec TableSpec, cols []string) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(spec.Table)
	b.WriteString(" SET ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteString(" = ")
		b.WriteString(placeholder(dialectName, i+1))
	}
	b.WriteString(" WHERE ")
	b.WriteString(spec.ID)
	b.WriteString(" = ")
	b.WriteString(placeholder(dialectName, len(cols)+1))
	return b.String()
}

// deleteStmt builds the by-ID DELETE.
func deleteStmt(dialectName string, spec TableSpec) string {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(spec.Table)
	b.WriteString(" WHERE ")
	b.WriteString(spec.ID)
	b.WriteString(" = ")
	b.WriteString(placeholder(dialectName, 1))
	return b.String()
}

// existsStmt builds the pre-mutation existence check.
func existsStmt(dialectName string, spec TableSpec) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(spec.ID)
	b.WriteString(" FROM ")
	b.WriteString(spec.Table)
	b.WriteString(" WHERE ")
	b.WriteString(spec.ID)
	b.WriteString(" = ")
	b.WriteString(placeholder(dialectName, 1))
	return b.String()
}

// countStmt builds the row count.
func countStmt(spec TableSpec) string {
	return "SELECT COUNT(*) FROM " + spec.Table
}
