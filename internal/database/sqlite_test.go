package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/require"
)

type pair struct {
	ID   int64
	Name string
}

func scanPair(s Scanner) (pair, error) {
	var p pair
	err := s.Scan(&p.ID, &p.Name)
	return p, err
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Run(context.Background(), sq.Expr(`CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)`))
	require.NoError(t, err)
	return db
}

func TestQueryGetRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// zero matches -> empty, non-nil
	rows, err := Query(ctx, db, sq.Select("id", "name").From("items"), scanPair)
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)

	res, err := db.Run(ctx, sq.Insert("items").Columns("name").Values("first"))
	require.NoError(t, err)
	require.Equal(t, int64(1), res.LastInsertID)
	require.Equal(t, int64(1), res.RowsAffected)

	_, err = db.Run(ctx, sq.Insert("items").Columns("name").Values("second"))
	require.NoError(t, err)

	rows, err = Query(ctx, db, sq.Select("id", "name").From("items").OrderBy("id"), scanPair)
	require.NoError(t, err)
	require.Equal(t, []pair{{1, "first"}, {2, "second"}}, rows)

	got, ok, err := Get(ctx, db, sq.Select("id", "name").From("items").Where(sq.Eq{"id": 2}), scanPair)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", got.Name)

	_, ok, err = Get(ctx, db, sq.Select("id", "name").From("items").Where(sq.Eq{"id": 99}), scanPair)
	require.NoError(t, err)
	require.False(t, ok, "missing row is reported as absent, not as an error")

	res, err = db.Run(ctx, sq.Update("items").Set("name", "renamed").Where(sq.Eq{"id": 99}))
	require.NoError(t, err)
	require.Equal(t, int64(0), res.RowsAffected)
}

func TestStorageErrors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := Query(ctx, db, sq.Select("id").From("no_such_table"), scanPair)
	var se *StorageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "query", se.Op)

	_, err = db.Run(ctx, sq.Insert("items").Columns("name").Values(nil))
	require.True(t, errors.As(err, &se))
	require.Equal(t, "run", se.Op)

	_, _, err = Get(ctx, db, sq.Expr("SELEC nonsense"), scanPair)
	require.True(t, errors.As(err, &se))

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.Close())
	require.Error(t, db.Ping(ctx))
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.Run(ctx, sq.Expr(`CREATE TABLE children (id INTEGER PRIMARY KEY, item_id INTEGER REFERENCES items(id))`))
	require.NoError(t, err)

	_, err = db.Run(ctx, sq.Insert("children").Columns("item_id").Values(42))
	require.Error(t, err)
}
