package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) Database {
	t.Helper()

	database, err := Open(context.Background(), Config{
		Type:   "sqlite",
		SQLite: SQLiteConfig{Database: filepath.Join(t.TempDir(), "test.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(context.Background()) })
	return database
}

// asString normalizes driver-dependent TEXT scans.
func asString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	database := newTestSQLite(t)

	conn, release, err := database.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	require.NoError(t, conn.Execute(ctx,
		"CREATE TABLE tags (id INTEGER PRIMARY KEY, name TEXT NOT NULL)"))

	require.NoError(t, conn.ExecuteMany(ctx,
		"INSERT INTO tags (id, name) VALUES (?, ?)",
		[][]any{{1, "hello"}, {2, "rules"}, {3, "faq"}},
	))

	row, err := conn.QueryOne(ctx, "SELECT name FROM tags WHERE id = ?", 2)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "rules", asString(row["name"]))

	row, err = conn.QueryOne(ctx, "SELECT name FROM tags WHERE id = ?", 99)
	require.NoError(t, err)
	assert.Nil(t, row)

	all, err := conn.QueryAll(ctx, "SELECT id, name FROM tags ORDER BY id")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.EqualValues(t, 1, all[0]["id"])
	assert.Equal(t, "faq", asString(all[2]["name"]))

	some, err := conn.QueryMany(ctx, 2, "SELECT id FROM tags ORDER BY id")
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestSQLitePing(t *testing.T) {
	ctx := context.Background()
	database := newTestSQLite(t)
	assert.NoError(t, database.Ping(ctx))
}

func TestSQLiteClosed(t *testing.T) {
	ctx := context.Background()
	database := newTestSQLite(t)

	require.NoError(t, database.Close(ctx))
	// Closing twice is fine.
	require.NoError(t, database.Close(ctx))

	_, _, err := database.Acquire(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, database.Ping(ctx), ErrClosed)
}

func TestOpenNone(t *testing.T) {
	ctx := context.Background()

	for _, typ := range []string{"", "none"} {
		database, err := Open(ctx, Config{Type: typ})
		require.NoError(t, err)

		_, _, err = database.Acquire(ctx)
		assert.ErrorIs(t, err, ErrNoDatabase)
		assert.ErrorIs(t, database.Ping(ctx), ErrNoDatabase)
		assert.NoError(t, database.Close(ctx))
	}
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestExpandPathEmpty(t *testing.T) {
	_, err := expandPath("")
	assert.Error(t, err)
}
