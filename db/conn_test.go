package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockConn(t *testing.T) (*sqliteConn, sqlmock.Sqlmock) {
	t.Helper()

	handle, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	conn, err := handle.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &sqliteConn{conn: conn}, mock
}

func TestConnQueryLimit(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectQuery("SELECT id FROM tags").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))

	rows, err := conn.QueryMany(ctx, 2, "SELECT id FROM tags")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestConnQueryOneUsesFirstRow(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectQuery("SELECT id, name FROM tags").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "faq").AddRow(8, "rules"))

	row, err := conn.QueryOne(ctx, "SELECT id, name FROM tags")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.EqualValues(t, 7, row["id"])
}

func TestConnExecuteManyTransaction(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	const query = "INSERT INTO tags (id) VALUES (?)"
	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(query)
	prepared.ExpectExec().WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	prepared.ExpectExec().WithArgs(2).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := conn.ExecuteMany(ctx, query, [][]any{{1}, {2}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnExecuteManyRollsBack(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	const query = "INSERT INTO tags (id) VALUES (?)"
	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(query)
	prepared.ExpectExec().WithArgs(1).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := conn.ExecuteMany(ctx, query, [][]any{{1}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnExecute(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectExec("DELETE FROM tags WHERE id = ?").
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, conn.Execute(ctx, "DELETE FROM tags WHERE id = ?", 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
