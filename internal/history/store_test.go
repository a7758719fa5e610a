package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecentRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := Record{
		ID:         "b1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Status:     StatusSucceeded,
		Entries:    3,
		Locales: []LocaleCount{
			{Locale: "zh", FaceCount: 40, BinaryCount: 40},
			{Locale: "en", FaceCount: 2, BinaryCount: 3},
		},
	}
	second := Record{
		ID:           "b2",
		StartedAt:    start.Add(time.Hour),
		FinishedAt:   start.Add(time.Hour + time.Second),
		Status:       StatusFailed,
		ErrorKind:    "missing_source",
		ErrorMessage: "missing source: preflight: source: /x.ttf",
		Entries:      0,
	}
	require.NoError(t, store.RecordBuild(ctx, first))
	require.NoError(t, store.RecordBuild(ctx, second))

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "b2", records[0].ID)
	require.Equal(t, StatusFailed, records[0].Status)
	require.Equal(t, "missing_source", records[0].ErrorKind)
	require.Empty(t, records[0].Locales)

	require.Equal(t, first.ID, records[1].ID)
	require.True(t, first.StartedAt.Equal(records[1].StartedAt))
	require.Equal(t, 90*time.Second, records[1].Duration())
	require.Equal(t, first.Locales, records[1].Locales)
}

func TestRecentHonoursLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.RecordBuild(ctx, Record{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
			Status:     StatusSucceeded,
		}))
	}
	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "c", records[0].ID)
	require.Equal(t, "b", records[1].ID)
}

func TestRecordBuildRejectsDuplicateAndEmptyIDs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rec := Record{ID: "dup", StartedAt: time.Now(), FinishedAt: time.Now(), Status: StatusSucceeded}
	require.NoError(t, store.RecordBuild(ctx, rec))
	require.Error(t, store.RecordBuild(ctx, rec))
	require.Error(t, store.RecordBuild(ctx, Record{}))
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.RecordBuild(ctx, Record{ID: "keep", StartedAt: time.Now(), FinishedAt: time.Now(), Status: StatusSucceeded}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_version SET version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(context.Background(), path)
	require.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
}
