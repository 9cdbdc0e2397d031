package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewCols = []string{"business_id", "review_id", "text", "rating"}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "reviews",
		Columns:      reviewCols,
		ConflictKeys: []string{"business_id", "review_id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "reviews",
		ConflictKeys: []string{"business_id"},
	}, [][]any{{"b1", "r1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:   "reviews",
		Columns: reviewCols,
	}, [][]any{{"b1", "r1", "ok", "5"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_merge_reviews"}, reviewCols).WillReturnResult(2)
	mock.ExpectExec(`ON CONFLICT \("business_id", "review_id"\) DO UPDATE SET "text" = EXCLUDED."text", "rating" = EXCLUDED."rating"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "reviews",
		Columns:      reviewCols,
		ConflictKeys: []string{"business_id", "review_id"},
	}, [][]any{{"b1", "r1", "Super", "5"}, {"b1", "r2", "Bof", "2"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_merge_reviews"}, reviewCols).WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "reviews",
		Columns:      reviewCols,
		ConflictKeys: []string{"business_id", "review_id"},
	}, [][]any{{"b1", "r1", "Super", "5"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into staging table for reviews")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"reviews", `"reviews"`},
		{"insights.reviews", `"insights"."reviews"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, quoteAndJoin([]string{"id", "name", "value"}))
}

func TestBulkUpsert_UnknownConflictKey(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{
		Table:        "reviews",
		Columns:      reviewCols,
		ConflictKeys: []string{"business_id", "external_id"},
	}, [][]any{{"b1", "r1", "ok", "5"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `conflict key "external_id"`)
}

func TestBulkUpsert_RepeatedKeyKeepsLastRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_merge_reviews"}, reviewCols).WillReturnResult(2)
	mock.ExpectExec("ON CONFLICT").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "reviews",
		Columns:      reviewCols,
		ConflictKeys: []string{"business_id", "review_id"},
	}, [][]any{
		{"b1", "r1", "Avant", "3"},
		{"b1", "r2", "Bof", "2"},
		{"b1", "r1", "Après", "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastPerKey(t *testing.T) {
	rows := [][]any{
		{"b1", "r1", "Avant"},
		{"b2", "r1", "Autre commerce"},
		{"b1", "r2", "Bof"},
		{"b1", "r1", "Après"},
	}
	got := lastPerKey(rows, []int{0, 1})
	assert.Equal(t, [][]any{
		{"b2", "r1", "Autre commerce"},
		{"b1", "r2", "Bof"},
		{"b1", "r1", "Après"},
	}, got)

	unique := rows[:3]
	assert.Equal(t, unique, lastPerKey(unique, []int{0, 1}))
}

func TestMergeSQL(t *testing.T) {
	sql := mergeSQL(UpsertConfig{
		Table:        "reviews",
		Columns:      []string{"business_id", "review_id", "text"},
		ConflictKeys: []string{"business_id", "review_id"},
	}, "_merge_reviews")
	assert.Equal(t, `INSERT INTO "reviews" ("business_id", "review_id", "text") SELECT "business_id", "review_id", "text" FROM "_merge_reviews" ON CONFLICT ("business_id", "review_id") DO UPDATE SET "text" = EXCLUDED."text"`, sql)

	sql = mergeSQL(UpsertConfig{
		Table:        "reviews",
		Columns:      []string{"business_id", "review_id"},
		ConflictKeys: []string{"business_id", "review_id"},
	}, "_merge_reviews")
	assert.True(t, strings.HasSuffix(sql, "DO NOTHING"), sql)
}
