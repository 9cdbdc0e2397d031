package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes a keyed merge, e.g. reviews keyed by
// (business_id, review_id).
type UpsertConfig struct {
	Table        string   // target table, optionally schema-qualified
	Columns      []string // column order of every row
	ConflictKeys []string // unique key; must be a subset of Columns
	UpdateCols   []string // overwritten on conflict; nil means every non-key column
}

// BulkUpsert merges rows into cfg.Table through a COPY-loaded temp table and a
// single INSERT ... ON CONFLICT DO UPDATE. Rows repeating a key within the
// batch collapse to the last one, as a re-exported review replaces the
// earlier copy. Returns the number of rows written.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return 0, eris.New("db: upsert: no conflict keys specified")
	}

	keyIdx, err := columnIndexes(cfg.Columns, cfg.ConflictKeys)
	if err != nil {
		return 0, err
	}
	rows = lastPerKey(rows, keyIdx)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	staging := stagingTable(cfg.Table)
	if _, err := tx.Exec(ctx, fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{staging}.Sanitize(), sanitizeTable(cfg.Table),
	)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create staging table for %s", cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{staging}, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into staging table for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, mergeSQL(cfg, staging))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// mergeSQL builds the INSERT ... SELECT ... ON CONFLICT statement. With no
// column left to update the conflict is ignored.
func mergeSQL(cfg UpsertConfig, staging string) string {
	cols := quoteAndJoin(cfg.Columns)
	action := "DO NOTHING"
	if set := updateColumns(cfg); len(set) > 0 {
		clauses := make([]string, len(set))
		for i, col := range set {
			q := pgx.Identifier{col}.Sanitize()
			clauses[i] = q + " = EXCLUDED." + q
		}
		action = "DO UPDATE SET " + strings.Join(clauses, ", ")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) %s",
		sanitizeTable(cfg.Table), cols, cols,
		pgx.Identifier{staging}.Sanitize(), quoteAndJoin(cfg.ConflictKeys), action)
}

func updateColumns(cfg UpsertConfig) []string {
	if cfg.UpdateCols != nil {
		return cfg.UpdateCols
	}
	keys := make(map[string]bool, len(cfg.ConflictKeys))
	for _, k := range cfg.ConflictKeys {
		keys[k] = true
	}
	var out []string
	for _, c := range cfg.Columns {
		if !keys[c] {
			out = append(out, c)
		}
	}
	return out
}

func columnIndexes(columns, want []string) ([]int, error) {
	pos := make(map[string]int, len(columns))
	for i, c := range columns {
		pos[c] = i
	}
	out := make([]int, len(want))
	for i, w := range want {
		idx, ok := pos[w]
		if !ok {
			return nil, eris.Errorf("db: upsert: conflict key %q is not an inserted column", w)
		}
		out[i] = idx
	}
	return out, nil
}

// lastPerKey drops every row whose key reappears later in the batch. Order
// of the surviving rows is preserved.
func lastPerKey(rows [][]any, keyIdx []int) [][]any {
	last := make(map[string]int, len(rows))
	keys := make([]string, len(rows))
	for i, row := range rows {
		parts := make([]string, len(keyIdx))
		for j, idx := range keyIdx {
			parts[j] = fmt.Sprint(row[idx])
		}
		keys[i] = strings.Join(parts, "\x00")
		last[keys[i]] = i
	}
	if len(last) == len(rows) {
		return rows
	}
	out := make([][]any, 0, len(last))
	for i, row := range rows {
		if last[keys[i]] == i {
			out = append(out, row)
		}
	}
	return out
}

func stagingTable(table string) string {
	return "_merge_" + strings.ReplaceAll(table, ".", "_")
}

// sanitizeTable quotes a table name, splitting an optional schema prefix.
func sanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
