package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/relgen/relgen"
)

// ScanFunc scans the current row into a value. Generated models supply one
// per table, scanning in declared column order.
type ScanFunc[T any] func(*sql.Rows) (T, error)

// All returns every row, ordered by the primary key ascending when the spec
// has one.
func All[T any](ctx context.Context, d *Driver, spec TableSpec, scan ScanFunc[T]) ([]T, error) {
	var opts []QueryOption
	if spec.ID != "" {
		opts = append(opts, OrderAsc(spec.ID))
	}
	return Query(ctx, d, spec, scan, opts...)
}

// Query returns the rows matching the options, scanned with scan.
func Query[T any](ctx context.Context, d *Driver, spec TableSpec, scan ScanFunc[T], opts ...QueryOption) ([]T, error) {
	var q queryOpts
	for _, o := range opts {
		o(&q)
	}
	stmt, args := selectStmt(d.Dialect(), spec, q)
	rows, err := d.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query %s: %w", spec.Table, err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("dialect/sql: scan %s: %w", spec.Table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/sql: query %s: %w", spec.Table, err)
	}
	return out, nil
}

// ByID returns the row with the given primary key, or a NotFoundError.
func ByID[T any](ctx context.Context, d *Driver, spec TableSpec, id any, scan ScanFunc[T]) (T, error) {
	var zero T
	rows, err := d.QueryContext(ctx, selectByIDStmt(d.Dialect(), spec), id)
	if err != nil {
		return zero, fmt.Errorf("dialect/sql: query %s: %w", spec.Table, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, fmt.Errorf("dialect/sql: query %s: %w", spec.Table, err)
		}
		return zero, relgen.NewNotFoundErrorWithID(spec.Table, id)
	}
	v, err := scan(rows)
	if err != nil {
		return zero, fmt.Errorf("dialect/sql: scan %s: %w", spec.Table, err)
	}
	return v, nil
}

// Create inserts the column/value pairs inside a transaction and returns
// the stored row with database defaults applied. Uniqueness breaches map to
// UniqueViolationError, everything else to an OpError; the transaction is
// rolled back in both cases.
func Create[T any](ctx context.Context, d *Driver, spec TableSpec, cols []string, args []any, scan ScanFunc[T]) (T, error) {
	var zero T
	dialectName := d.Dialect()
	if !returningSupported(dialectName) && spec.ID == "" {
		return zero, relgen.NewOpError(spec.Table, relgen.OpCreate,
			errors.New("row refetch requires a single primary-key column on "+dialectName))
	}
	tx, err := d.DB().BeginTx(ctx, nil)
	if err != nil {
		return zero, relgen.NewOpError(spec.Table, relgen.OpCreate, err)
	}
	v, err := createTx(ctx, tx, dialectName, spec, cols, args, scan)
	if err != nil {
		_ = tx.Rollback()
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, relgen.NewOpError(spec.Table, relgen.OpCreate, err)
	}
	return v, nil
}

func createTx[T any](ctx context.Context, tx *sql.Tx, dialectName string, spec TableSpec, cols []string, args []any, scan ScanFunc[T]) (T, error) {
	var zero T
	stmt := insertStmt(dialectName, spec, cols)
	if returningSupported(dialectName) {
		v, ok, err := queryOne(ctx, tx, stmt, args, scan)
		if err != nil {
			return zero, mapWriteErr(spec.Table, relgen.OpCreate, err)
		}
		if !ok {
			return zero, relgen.NewOpError(spec.Table, relgen.OpCreate, errors.New("insert returned no row"))
		}
		return v, nil
	}
	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return zero, mapWriteErr(spec.Table, relgen.OpCreate, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return zero, relgen.NewOpError(spec.Table, relgen.OpCreate, err)
	}
	v, ok, err := queryOne(ctx, tx, selectByIDStmt(dialectName, spec), []any{id}, scan)
	if err != nil {
		return zero, relgen.NewOpError(spec.Table, relgen.OpCreate, err)
	}
	if !ok {
		return zero, relgen.NewOpError(spec.Table, relgen.OpCreate, errors.New("inserted row not found on refetch"))
	}
	return v, nil
}

// UpdateByID overwrites the given columns of one row inside a transaction
// and returns the updated row. A missing row returns a NotFoundError before
// any write happens.
func UpdateByID[T any](ctx context.Context, d *Driver, spec TableSpec, id any, cols []string, args []any, scan ScanFunc[T]) (T, error) {
	var zero T
	dialectName := d.Dialect()
	tx, err := d.DB().BeginTx(ctx, nil)
	if err != nil {
		return zero, relgen.NewOpError(spec.Table, relgen.OpUpdate, err)
	}
	if err := existsTx(ctx, tx, dialectName, spec, id, relgen.OpUpdate); err != nil {
		_ = tx.Rollback()
		return zero, err
	}
	if len(cols) > 0 {
		if _, err := tx.ExecContext(ctx, updateStmt(dialectName, spec, cols), append(append([]any{}, args...), id)...); err != nil {
			_ = tx.Rollback()
			return zero, mapWriteErr(spec.Table, relgen.OpUpdate, err)
		}
	}
	v, ok, err := queryOne(ctx, tx, selectByIDStmt(dialectName, spec), []any{id}, scan)
	if err != nil || !ok {
		_ = tx.Rollback()
		if err == nil {
			err = errors.New("updated row not found on refetch")
		}
		return zero, relgen.NewOpError(spec.Table, relgen.OpUpdate, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, relgen.NewOpError(spec.Table, relgen.OpUpdate, err)
	}
	return v, nil
}

// DeleteByID removes one row inside a transaction. A missing row returns a
// NotFoundError and nothing is deleted.
func DeleteByID(ctx context.Context, d *Driver, spec TableSpec, id any) error {
	dialectName := d.Dialect()
	tx, err := d.DB().BeginTx(ctx, nil)
	if err != nil {
		return relgen.NewOpError(spec.Table, relgen.OpDelete, err)
	}
	if err := existsTx(ctx, tx, dialectName, spec, id, relgen.OpDelete); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, deleteStmt(dialectName, spec), id); err != nil {
		_ = tx.Rollback()
		return relgen.NewOpError(spec.Table, relgen.OpDelete, err)
	}
	if err := tx.Commit(); err != nil {
		return relgen.NewOpError(spec.Table, relgen.OpDelete, err)
	}
	return nil
}

// Count returns the number of rows in the table.
func Count(ctx context.Context, d *Driver, spec TableSpec) (int64, error) {
	rows, err := d.QueryContext(ctx, countStmt(spec))
	if err != nil {
		return 0, relgen.NewOpError(spec.Table, relgen.OpCount, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, relgen.NewOpError(spec.Table, relgen.OpCount, err)
		}
		return 0, relgen.NewOpError(spec.Table, relgen.OpCount, errors.New("count returned no row"))
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, relgen.NewOpError(spec.Table, relgen.OpCount, err)
	}
	return n, nil
}

// existsTx verifies the target row exists before a mutation touches it.
func existsTx(ctx context.Context, tx *sql.Tx, dialectName string, spec TableSpec, id any, op relgen.Op) error {
	var tmp any
	err := tx.QueryRowContext(ctx, existsStmt(dialectName, spec), id).Scan(&tmp)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return relgen.NewNotFoundErrorWithID(spec.Table, id)
	case err != nil:
		return relgen.NewOpError(spec.Table, op, err)
	}
	return nil
}

// queryOne runs a statement expected to yield at most one row.
func queryOne[T any](ctx context.Context, tx *sql.Tx, stmt string, args []any, scan ScanFunc[T]) (T, bool, error) {
	var zero T
	rows, err := tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return zero, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return zero, false, rows.Err()
	}
	v, err := scan(rows)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// mapWriteErr translates a driver error from a write statement into the
// runtime taxonomy.
func mapWriteErr(table string, op relgen.Op, err error) error {
	if isUniqueViolation(err) {
		return relgen.NewUniqueViolationError(table, err)
	}
	return relgen.NewOpError(table, op, err)
}
