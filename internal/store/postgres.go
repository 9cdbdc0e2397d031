package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/review-insights/internal/db"
	"github.com/sells-group/review-insights/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"get_business":      `SELECT id, name, types, manual_type, created_at, updated_at FROM businesses WHERE id = $1`,
	"list_reviews":      `SELECT review_id, text, rating, published_at, themes FROM reviews WHERE business_id = $1 ORDER BY position, review_id`,
	"get_insight":       `SELECT data FROM insights WHERE business_id = $1`,
	"insert_run":        `INSERT INTO runs (id, business_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_run":           `SELECT id, business_id, status, error, duration_ms, created_at, updated_at FROM runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	types       JSONB NOT NULL DEFAULT '[]',
	manual_type TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	business_id  TEXT NOT NULL,
	review_id    TEXT NOT NULL,
	position     INTEGER NOT NULL,
	text         TEXT NOT NULL DEFAULT '',
	rating       JSONB NOT NULL DEFAULT 'null',
	published_at TEXT NOT NULL DEFAULT '',
	themes       JSONB NOT NULL DEFAULT 'null',
	PRIMARY KEY (business_id, review_id)
);

CREATE TABLE IF NOT EXISTS insights (
	business_id TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL DEFAULT '',
	data        JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	business_id TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'queued',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reviews_business_position ON reviews(business_id, position);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_business ON runs(business_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// --- Businesses ---

func (s *PostgresStore) UpsertBusiness(ctx context.Context, b *model.Business) error {
	if b.ID == "" {
		return eris.New("postgres: upsert business: empty id")
	}
	types, err := encodeTypes(b.Types)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO businesses (id, name, types, manual_type, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			types = EXCLUDED.types,
			manual_type = CASE WHEN EXCLUDED.manual_type = '' THEN businesses.manual_type ELSE EXCLUDED.manual_type END,
			updated_at = EXCLUDED.updated_at`,
		b.ID, b.Name, types, b.ManualType, now, now,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert business %s", b.ID)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

func (s *PostgresStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	var types []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, types, manual_type, created_at, updated_at FROM businesses WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &types, &b.ManualType, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "business %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get business %s", id)
	}
	if b.Types, err = decodeTypes(types); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) ListBusinesses(ctx context.Context, limit, offset int) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, types, manual_type, created_at, updated_at FROM businesses
		 ORDER BY name, id LIMIT $1 OFFSET $2`,
		listLimit(limit), max(offset, 0),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list businesses")
	}
	defer rows.Close()

	var out []model.Business
	for rows.Next() {
		var b model.Business
		var types []byte
		if err := rows.Scan(&b.ID, &b.Name, &types, &b.ManualType, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan business")
		}
		if b.Types, err = decodeTypes(types); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list businesses iterate")
}

func (s *PostgresStore) SetManualType(ctx context.Context, id string, businessType model.BusinessType) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE businesses SET manual_type = $1, updated_at = $2 WHERE id = $3`,
		string(businessType), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set manual type %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "business %s", id)
	}
	return nil
}

// --- Reviews ---

func (s *PostgresStore) ReplaceReviews(ctx context.Context, businessID string, reviews []model.Review) (int, error) {
	rows, err := encodeReviews(reviews)
	if err != nil {
		return 0, err
	}
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = r.values(businessID)
	}
	if _, err := db.ReplaceRows(ctx, s.pool, "reviews",
		db.Scope{Column: "business_id", Value: businessID}, reviewColumns, values); err != nil {
		return 0, eris.Wrapf(err, "postgres: replace reviews %s", businessID)
	}
	return len(rows), nil
}

func (s *PostgresStore) UpsertReviews(ctx context.Context, businessID string, reviews []model.Review) (int, error) {
	rows, err := encodeReviews(reviews)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var next int
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM reviews WHERE business_id = $1`, businessID,
	).Scan(&next); err != nil {
		return 0, eris.Wrapf(err, "postgres: next review position %s", businessID)
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		r.Position += next
		values[i] = r.values(businessID)
	}
	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "reviews",
		Columns:      reviewColumns,
		ConflictKeys: []string{"business_id", "review_id"},
	}, values); err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert reviews %s", businessID)
	}
	return len(rows), nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, businessID string) ([]model.Review, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT review_id, text, rating, published_at, themes FROM reviews
		 WHERE business_id = $1 ORDER BY position, review_id`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reviews")
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var id, text, publishedAt string
		var rating, themes []byte
		if err := rows.Scan(&id, &text, &rating, &publishedAt, &themes); err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		r, err := decodeReview(id, text, rating, publishedAt, themes)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list reviews iterate")
}

// --- Insights ---

func (s *PostgresStore) UpsertInsight(ctx context.Context, rec *model.InsightRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal insight")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO insights (business_id, run_id, data, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (business_id) DO UPDATE SET run_id = $2, data = $3, updated_at = $4`,
		rec.BusinessID, rec.RunID, data, rec.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: upsert insight %s", rec.BusinessID)
}

func (s *PostgresStore) GetInsight(ctx context.Context, businessID string) (*model.InsightRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM insights WHERE business_id = $1`, businessID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get insight %s", businessID)
	}
	var rec model.InsightRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal insight")
	}
	return &rec, nil
}

// --- Runs ---

func (s *PostgresStore) CreateRun(ctx context.Context, businessID string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, business_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, businessID, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:         id,
		BusinessID: businessID,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, elapsed time.Duration) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, "", elapsed)
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error, elapsed time.Duration) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, errorText(cause), elapsed)
}

func (s *PostgresStore) finishRun(ctx context.Context, runID string, status model.RunStatus, msg string, elapsed time.Duration) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, duration_ms = $3, updated_at = $4 WHERE id = $5`,
		string(status), msg, elapsed.Milliseconds(), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	r, err := scanPostgresRun(s.pool.QueryRow(ctx,
		`SELECT id, business_id, status, error, duration_ms, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "get run %s", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, business_id, status, error, duration_ms, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.BusinessID != "" {
		query += fmt.Sprintf(` AND business_id = $%d`, argIdx)
		args = append(args, filter.BusinessID)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var status string
	if err := row.Scan(&r.ID, &r.BusinessID, &status, &r.Error, &r.DurationMs, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}
