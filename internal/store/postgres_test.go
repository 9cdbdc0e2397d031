package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-insights/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS businesses`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertBusiness(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`(?s)INSERT INTO businesses .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("b1", "Le Bistrot", []byte(`["restaurant"]`), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	b := &model.Business{ID: "b1", Name: "Le Bistrot", Types: []string{"restaurant"}}
	require.NoError(t, s.UpsertBusiness(context.Background(), b))
	assert.False(t, b.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertBusiness_EmptyID(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	err := s.UpsertBusiness(context.Background(), &model.Business{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestPostgresStore_GetBusiness(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, types, manual_type, created_at, updated_at FROM businesses WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "types", "manual_type", "created_at", "updated_at"}).
			AddRow("b1", "Salon Marie", []byte(`["hair_care"]`), "salon_coiffure", now, now))

	got, err := s.GetBusiness(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Salon Marie", got.Name)
	assert.Equal(t, []string{"hair_care"}, got.Types)
	assert.Equal(t, "salon_coiffure", got.ManualType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetBusiness_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM businesses WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetBusiness(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetManualType_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE businesses SET manual_type`).
		WithArgs("serrurier", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetManualType(context.Background(), "missing", model.BusinessSerrurier)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceReviews(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "reviews" WHERE "business_id" = \$1`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCopyFrom(pgx.Identifier{"reviews"}, reviewColumns).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := s.ReplaceReviews(context.Background(), "b1", []model.Review{
		{ID: "r1", Text: "Super", Rating: model.NumericRating(5)},
		{ID: "r2", Text: "Bof", Rating: model.TextRating("TWO")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertReviews(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), -1\) \+ 1 FROM reviews`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(4))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_merge_reviews"}, reviewColumns).WillReturnResult(1)
	mock.ExpectExec(`ON CONFLICT \("business_id", "review_id"\)`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.UpsertReviews(context.Background(), "b1", []model.Review{{ID: "r9", Text: "Nouveau"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertReviews_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.UpsertReviews(context.Background(), "b1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReviews(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT review_id, text, rating, published_at, themes FROM reviews`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"review_id", "text", "rating", "published_at", "themes"}).
			AddRow("r1", "Trop cher", []byte(`"ONE"`), "2026-02-01", []byte(`[{"name":"Prix"}]`)).
			AddRow("r2", "Correct", []byte(`3`), "", []byte(`null`)))

	got, err := s.ListReviews(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ONE", *got[0].Rating.Text)
	assert.Equal(t, []model.ReviewTheme{{Name: "Prix"}}, got[0].Themes)
	assert.Equal(t, 3.0, *got[1].Rating.Number)
	assert.Nil(t, got[1].Themes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertInsight(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`(?s)INSERT INTO insights .* ON CONFLICT \(business_id\) DO UPDATE`).
		WithArgs("b1", "run-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := &model.InsightRecord{BusinessID: "b1", RunID: "run-1"}
	require.NoError(t, s.UpsertInsight(context.Background(), rec))
	assert.False(t, rec.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInsight_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM insights`).
		WithArgs("b1").
		WillReturnError(pgx.ErrNoRows)

	rec, err := s.GetInsight(context.Background(), "b1")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInsight(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM insights`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"business_id":"b1","run_id":"run-7","enriched":true,"report":{"overview":{"total_reviews":12}}}`)))

	rec, err := s.GetInsight(context.Background(), "b1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "run-7", rec.RunID)
	assert.True(t, rec.Enriched)
	assert.Equal(t, 12, rec.Report.Overview.TotalReviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "b1", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "b1")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, error = \$2, duration_ms = \$3`).
		WithArgs("failed", "boom", int64(250), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailRun(context.Background(), "run-1", errors.New("boom"), 250*time.Millisecond))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("analyzing", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusAnalyzing)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, business_id, status, error, duration_ms, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM runs WHERE true AND status = \$1 AND business_id = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("complete", "b1", 10, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "business_id", "status", "error", "duration_ms", "created_at", "updated_at"}).
			AddRow("run-1", "b1", "complete", "", int64(900), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{
		Status: model.RunStatusComplete, BusinessID: "b1", Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, int64(900), runs[0].DurationMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
