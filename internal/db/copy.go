package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-inserts rows into a table using the COPY protocol.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// Scope selects the rows a ReplaceRows call owns, e.g. every review of one
// business.
type Scope struct {
	Column string
	Value  any
}

// ReplaceRows deletes every row of table matching scope and copies rows in
// their place, in one transaction. An empty rows slice clears the scope.
func ReplaceRows(ctx context.Context, pool Pool, table string, scope Scope, columns []string, rows [][]any) (int64, error) {
	if scope.Column == "" {
		return 0, eris.New("db: replace: no scope column specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		sanitizeTable(table), pgx.Identifier{scope.Column}.Sanitize())
	if _, err := tx.Exec(ctx, deleteSQL, scope.Value); err != nil {
		return 0, eris.Wrapf(err, "db: replace: delete from %s", table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: replace: COPY INTO %s", table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return n, nil
}
