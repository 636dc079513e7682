package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func TestStoreSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','allocations')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["allocations"])
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)

	created := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	run, allocs := sampleRun("01HRUN0000000000000000000A", created)
	require.NoError(t, s.RecordRun(ctx, run, allocs))

	got, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.True(t, got.Created.Equal(created))
	got.Created = run.Created
	assert.Equal(t, run, got)

	gotAllocs, err := s.ListAllocations(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, allocs, gotAllocs)
}

func TestStoreDuplicateRunRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)

	run, allocs := sampleRun("dup", time.Now())
	require.NoError(t, s.RecordRun(ctx, run, allocs))
	assert.Error(t, s.RecordRun(ctx, run, allocs[:1]))

	got, err := s.ListAllocations(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStoreListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		run, allocs := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.RecordRun(ctx, run, allocs))
	}

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].RunID)
	assert.Equal(t, "r1", all[2].RunID)

	recent, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r3", recent[0].RunID)
	assert.Equal(t, "r2", recent[1].RunID)
}

func TestStoreGetRunNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `run "missing" not found`)
}

func TestNewStoreUnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := NewStore("mysql", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported journal driver")
}

func TestStoreRepeatedAssetName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestStore(t)

	run, allocs := sampleRun("same-name", time.Now())
	allocs[1].Asset = allocs[0].Asset
	require.NoError(t, s.RecordRun(ctx, run, allocs))

	got, err := s.ListAllocations(ctx, "same-name")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, 1, got[1].Position)
	assert.Equal(t, "AAPL", got[1].Asset)
}
