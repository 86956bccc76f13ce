package dbexec

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardExecutorQueryContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM articles").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	exec := NewStandardExecutor(db, true)
	rows, err := exec.QueryContext(context.Background(), "SELECT id FROM articles")
	require.NoError(t, err)
	defer rows.Close()

	results, err := ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0]["id"])

	assert.True(t, exec.SupportsWindowFunctions())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStandardExecutorNilDB(t *testing.T) {
	exec := NewStandardExecutor(nil, false)
	_, err := exec.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, exec.SupportsWindowFunctions())
}

func TestTxExecutorSharesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM people").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	exec := NewTxExecutor(tx, true)
	rows, err := exec.QueryContext(context.Background(), "SELECT id FROM people")
	require.NoError(t, err)
	_, err = ScanRows(rows)
	require.NoError(t, err)
	rows.Close()

	// The executor never ends the transaction; the caller does.
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxExecutorNilTx(t *testing.T) {
	exec := NewTxExecutor(nil, false)
	_, err := exec.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrTxDone)
}

func TestScanRowsNormalizesBytes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, []byte("Ada")))

	rows, err := db.QueryContext(context.Background(), "SELECT id, name FROM people")
	require.NoError(t, err)
	defer rows.Close()

	results, err := ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ada", results[0]["name"])
}

func TestScanRowsEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := db.QueryContext(context.Background(), "SELECT id FROM people")
	require.NoError(t, err)
	defer rows.Close()

	results, err := ScanRows(rows)
	require.NoError(t, err)
	assert.Empty(t, results)
}
