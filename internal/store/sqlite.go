package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/review-insights/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas are per connection; one connection keeps them in force and
	// serialises writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	types       TEXT NOT NULL DEFAULT '[]',
	manual_type TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reviews (
	business_id  TEXT NOT NULL,
	review_id    TEXT NOT NULL,
	position     INTEGER NOT NULL,
	text         TEXT NOT NULL DEFAULT '',
	rating       TEXT NOT NULL DEFAULT 'null',
	published_at TEXT NOT NULL DEFAULT '',
	themes       TEXT NOT NULL DEFAULT 'null',
	PRIMARY KEY (business_id, review_id)
);

CREATE TABLE IF NOT EXISTS insights (
	business_id TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL DEFAULT '',
	data        TEXT NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'queued',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reviews_business_position ON reviews(business_id, position);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_business ON runs(business_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Businesses ---

func (s *SQLiteStore) UpsertBusiness(ctx context.Context, b *model.Business) error {
	if b.ID == "" {
		return eris.New("sqlite: upsert business: empty id")
	}
	types, err := encodeTypes(b.Types)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO businesses (id, name, types, manual_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			types = excluded.types,
			manual_type = CASE WHEN excluded.manual_type = '' THEN businesses.manual_type ELSE excluded.manual_type END,
			updated_at = excluded.updated_at`,
		b.ID, b.Name, string(types), b.ManualType, now, now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert business %s", b.ID)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, types, manual_type, created_at, updated_at FROM businesses WHERE id = ?`, id)
	b, err := scanBusiness(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "business %s", id)
	}
	return b, err
}

func (s *SQLiteStore) ListBusinesses(ctx context.Context, limit, offset int) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, types, manual_type, created_at, updated_at FROM businesses
		 ORDER BY name, id LIMIT ? OFFSET ?`,
		listLimit(limit), max(offset, 0),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list businesses iterate")
}

func (s *SQLiteStore) SetManualType(ctx context.Context, id string, businessType model.BusinessType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE businesses SET manual_type = ?, updated_at = ? WHERE id = ?`,
		string(businessType), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set manual type %s", id)
	}
	return checkRowsAffected(res, "business", id)
}

// --- Reviews ---

func (s *SQLiteStore) ReplaceReviews(ctx context.Context, businessID string, reviews []model.Review) (int, error) {
	rows, err := encodeReviews(reviews)
	if err != nil {
		return 0, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE business_id = ?`, businessID); err != nil {
			return eris.Wrapf(err, "sqlite: delete reviews %s", businessID)
		}
		return insertReviews(ctx, tx, businessID, rows, false)
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *SQLiteStore) UpsertReviews(ctx context.Context, businessID string, reviews []model.Review) (int, error) {
	rows, err := encodeReviews(reviews)
	if err != nil {
		return 0, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM reviews WHERE business_id = ?`, businessID,
		).Scan(&next); err != nil {
			return eris.Wrapf(err, "sqlite: next review position %s", businessID)
		}
		for i := range rows {
			rows[i].Position += next
		}
		return insertReviews(ctx, tx, businessID, rows, true)
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func insertReviews(ctx context.Context, tx *sql.Tx, businessID string, rows []reviewRow, upsert bool) error {
	query := `INSERT INTO reviews (business_id, review_id, position, text, rating, published_at, themes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT (business_id, review_id) DO UPDATE SET
			position = excluded.position, text = excluded.text, rating = excluded.rating,
			published_at = excluded.published_at, themes = excluded.themes`
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert review")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.values(businessID)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert review %s", r.ReviewID)
		}
	}
	return nil
}

func (s *SQLiteStore) ListReviews(ctx context.Context, businessID string) ([]model.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT review_id, text, rating, published_at, themes FROM reviews
		 WHERE business_id = ? ORDER BY position, review_id`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reviews")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Review
	for rows.Next() {
		var id, text, rating, publishedAt, themes string
		if err := rows.Scan(&id, &text, &rating, &publishedAt, &themes); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		r, err := decodeReview(id, text, []byte(rating), publishedAt, []byte(themes))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list reviews iterate")
}

// --- Insights ---

func (s *SQLiteStore) UpsertInsight(ctx context.Context, rec *model.InsightRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal insight")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO insights (business_id, run_id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (business_id) DO UPDATE SET
			run_id = excluded.run_id, data = excluded.data, updated_at = excluded.updated_at`,
		rec.BusinessID, rec.RunID, string(data), rec.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert insight %s", rec.BusinessID)
}

func (s *SQLiteStore) GetInsight(ctx context.Context, businessID string) (*model.InsightRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM insights WHERE business_id = ?`, businessID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get insight %s", businessID)
	}
	var rec model.InsightRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal insight")
	}
	return &rec, nil
}

// --- Runs ---

func (s *SQLiteStore) CreateRun(ctx context.Context, businessID string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, business_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, businessID, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:         id,
		BusinessID: businessID,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, elapsed time.Duration) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, "", elapsed)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error, elapsed time.Duration) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, errorText(cause), elapsed)
}

func (s *SQLiteStore) finishRun(ctx context.Context, runID string, status model.RunStatus, msg string, elapsed time.Duration) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, duration_ms = ?, updated_at = ? WHERE id = ?`,
		string(status), msg, elapsed.Milliseconds(), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, business_id, status, error, duration_ms, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, business_id, status, error, duration_ms, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.BusinessID != "" {
		query += ` AND business_id = ?`
		args = append(args, filter.BusinessID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	if err := fn(tx); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBusiness(row scannable) (*model.Business, error) {
	var b model.Business
	var types string
	if err := row.Scan(&b.ID, &b.Name, &types, &b.ManualType, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan business")
	}
	var err error
	if b.Types, err = decodeTypes([]byte(types)); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.BusinessID, &r.Status, &r.Error, &r.DurationMs, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	return &r, nil
}
