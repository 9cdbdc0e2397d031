package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "reviews", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"reviews"}, []string{"a", "b"}).WillReturnResult(3)

	rows := [][]any{{1, "x"}, {2, "y"}, {3, "z"}}
	n, err := CopyFrom(context.Background(), mock, "reviews", []string{"a", "b"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"reviews"}, []string{"a", "b"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "reviews", []string{"a", "b"}, [][]any{{1, "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO reviews")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "reviews" WHERE "business_id" = \$1`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectCopyFrom(pgx.Identifier{"reviews"}, []string{"business_id", "text"}).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := ReplaceRows(context.Background(), mock, "reviews", Scope{Column: "business_id", Value: "b1"},
		[]string{"business_id", "text"}, [][]any{{"b1", "x"}, {"b1", "y"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_EmptyClearsScope(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "reviews"`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectCommit()

	n, err := ReplaceRows(context.Background(), mock, "reviews", Scope{Column: "business_id", Value: "b1"},
		[]string{"business_id", "text"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_DeleteError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "reviews"`).WithArgs("b1").WillReturnError(fmt.Errorf("locked"))
	mock.ExpectRollback()

	_, err = ReplaceRows(context.Background(), mock, "reviews", Scope{Column: "business_id", Value: "b1"},
		[]string{"business_id"}, [][]any{{"b1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete from reviews")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_NoScope(t *testing.T) {
	_, err := ReplaceRows(context.TODO(), nil, "reviews", Scope{}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scope column")
}
