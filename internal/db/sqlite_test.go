package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cblogserver/backend/internal/config"
	"github.com/cblogserver/backend/internal/platform/retry"
)

func newFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.db")
	require.NoError(t, CreateSchema(path, true))
	return path
}

func newFixturePool(t *testing.T, size int) *SQLitePool {
	t.Helper()
	pool, err := NewSQLitePool(newFixtureDB(t), size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func column(t *testing.T, rows Rows, name string) []any {
	t.Helper()
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Get(name)
		require.True(t, ok, "column %q missing", name)
		values = append(values, v)
	}
	return values
}

func TestSQLitePool_SelectPostByID(t *testing.T) {
	pool := newFixturePool(t, 2)

	rows, err := pool.Query(context.Background(), SelectPostByID, int64(42))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"title", "content", "date_created", "image", "author"}, rows[0].Columns())
	title, _ := rows[0].Get("title")
	assert.Equal(t, "The answer", title)

	rows, err = pool.Query(context.Background(), SelectPostByID, int64(7))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSQLitePool_BlogQueries(t *testing.T) {
	pool := newFixturePool(t, 2)
	ctx := context.Background()

	tests := []struct {
		name   string
		query  string
		args   []any
		column string
		want   []any
	}{
		{"posts by tag", SelectPostIDsByTagID, []any{int64(1)}, "post_id", []any{int64(1), int64(2), int64(42)}},
		{"posts by category", SelectPostIDsByCategoryID, []any{int64(2)}, "post_id", []any{int64(2), int64(42)}},
		{"tag names", SelectTagCounts, nil, "tag", []any{"go", "sql", "unused", "web"}},
		{"tag counts", SelectTagCounts, nil, "tagCount", []any{int64(3), int64(2), int64(0), int64(1)}},
		{"category counts", SelectCategoryCounts, nil, "categoryCount", []any{int64(2), int64(2)}},
		{"preview of post", SelectPreviewsByPostID, []any{int64(42)}, "preview", []any{"Posts can have any id."}},
		{"all previews", SelectAllPreviews, nil, "id", []any{int64(1), int64(2), int64(3), int64(42)}},
		{"tags of post", SelectTagCountsByPostID, []any{int64(42)}, "name", []any{"go", "sql"}},
		{"categories of post", SelectCategoriesByPostID, []any{int64(42)}, "category", []any{"engineering", "notes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := pool.Query(ctx, tt.query, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, rows, tt.column))
		})
	}
}

func TestSQLitePool_TagCountsSumToAssignments(t *testing.T) {
	pool := newFixturePool(t, 2)
	ctx := context.Background()

	rows, err := pool.Query(ctx, SelectTagCounts)
	require.NoError(t, err)
	var sum int64
	for _, count := range column(t, rows, "tagCount") {
		n := count.(int64)
		assert.GreaterOrEqual(t, n, int64(0))
		sum += n
	}

	total, err := pool.Query(ctx, `SELECT COUNT(*) AS n FROM post_tag;`)
	require.NoError(t, err)
	n, _ := total[0].Get("n")
	assert.Equal(t, n, sum)
}

func TestSQLitePool_BoundParameterIsInert(t *testing.T) {
	pool := newFixturePool(t, 2)
	ctx := context.Background()

	rows, err := pool.Query(ctx, SelectPostByID, "1; DROP TABLE post;")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = pool.Query(ctx, `SELECT COUNT(*) AS n FROM post;`)
	require.NoError(t, err)
	n, _ := rows[0].Get("n")
	assert.Equal(t, int64(4), n)
}

func TestSQLitePool_RespectsCap(t *testing.T) {
	const size = 4
	pool := newFixturePool(t, size)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := pool.Query(context.Background(), SelectPostByID, id)
			errs <- err
		}(int64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	stats := pool.Stats()
	assert.Equal(t, size, stats.MaxOpen)
	assert.Equal(t, 0, stats.InUse)
	assert.LessOrEqual(t, stats.PeakInUse, size)
	assert.GreaterOrEqual(t, stats.PeakInUse, 1)
}

func TestSQLitePool_QueryErrors(t *testing.T) {
	pool := newFixturePool(t, 1)

	_, err := pool.Query(context.Background(), `SELECT * FROM missing_table;`)
	require.Error(t, err)
	assert.Equal(t, 0, pool.Stats().InUse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pool.Query(ctx, SelectTagCounts)
	assert.Error(t, err)
}

func TestSQLitePool_IsReadOnly(t *testing.T) {
	pool := newFixturePool(t, 1)
	_, err := pool.Query(context.Background(), `DELETE FROM post;`)
	assert.Error(t, err)
}

func TestProber_SQLite(t *testing.T) {
	prober := NewProber(retry.Policy{MaxAttempts: 1}, nil)

	cfg := &config.Configuration{DB: config.Database{Driver: config.DriverSQLite, Database: newFixtureDB(t)}}
	assert.NoError(t, prober.Probe(context.Background(), cfg))

	missing := &config.Configuration{DB: config.Database{
		Driver:   config.DriverSQLite,
		Hostname: "localhost",
		Database: filepath.Join(t.TempDir(), "missing.db"),
	}}
	err := prober.Probe(context.Background(), missing)
	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, missing.DB.Database, connErr.Database)
}

func TestOpen_SQLite(t *testing.T) {
	pool, err := Open(&config.Configuration{DB: config.Database{Driver: config.DriverSQLite, Database: newFixtureDB(t)}})
	require.NoError(t, err)
	defer pool.Close()
	assert.Equal(t, MaxConnections, pool.Stats().MaxOpen)
}
