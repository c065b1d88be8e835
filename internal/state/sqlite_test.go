package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCatalog(names ...string) *core.Catalog {
	c := &core.Catalog{}
	for _, n := range names {
		c.Databases = append(c.Databases, core.Database{
			Name: n,
			Tables: []core.Table{{
				Name:          "t",
				Fields:        []core.Field{{Name: "f", Type: "int", RepeatedCount: 1}},
				Relationships: []core.Relationship{{LinkName: "self", TableName: "t"}},
			}},
		})
	}
	return c
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrNoSnapshot)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	saved, err := store.Save(ctx, testCatalog("campus", "catalog"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.True(t, saved.FetchedAt.Equal(loaded.FetchedAt))
	if diff := cmp.Diff(testCatalog("campus", "catalog"), loaded.Catalog); diff != "" {
		t.Errorf("loaded catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Save(ctx, testCatalog("old"))
	require.NoError(t, err)
	second, err := store.Save(ctx, testCatalog("new"))
	require.NoError(t, err)

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM catalog_snapshots`).Scan(&count))
	assert.Equal(t, 1, count)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, loaded.ID)
	assert.Equal(t, "new", loaded.Catalog.Databases[0].Name)
}

func TestSQLiteStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Save(ctx, testCatalog("campus"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, core.ErrNoSnapshot)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore()

	_, err := store.Save(ctx, testCatalog("x"))
	assert.Error(t, err)
	_, err = store.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx))
	assert.Error(t, store.Migrate())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_SaveRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM catalog_snapshots`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO catalog_snapshots`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := NewSQLiteStoreWithDB(db)
	_, err = store.Save(context.Background(), testCatalog("campus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadCorruptPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"id", "fetched_at", "payload"}).
		AddRow("snap-1", time.Now(), "{not json")
	mock.ExpectQuery(`SELECT id, fetched_at, payload FROM catalog_snapshots`).WillReturnRows(rows)

	store := NewSQLiteStoreWithDB(db)
	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snap-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
