package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romangod6/company-sitemaps/config"
	"github.com/romangod6/company-sitemaps/internal/models"
	"github.com/romangod6/company-sitemaps/internal/sitemap"
	"github.com/romangod6/company-sitemaps/internal/storage"
	"github.com/romangod6/company-sitemaps/internal/utils"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Sitemap.BaseURL = "https://example.com"
	cfg.Sitemap.OutputDir = filepath.Join(t.TempDir(), "public")
	cfg.Sitemap.ShardCount = 3
	cfg.Sitemap.ShardSource = config.ShardSourceStatic
	cfg.Sitemap.URLsPerSitemap = 2
	cfg.Sitemap.BatchSize = 2
	cfg.Log.Dir = filepath.Join(t.TempDir(), "logs")
	cfg.Log.Level = "info"
	return cfg
}

func nopLoggers(string) (Logger, error) {
	return utils.NewNopLogger(), nil
}

func clock() time.Time {
	return time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)
}

func seededStore(t *testing.T, n int) storage.Store {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "runner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Initialize())

	for i := 0; i < n; i++ {
		require.NoError(t, store.CreateCompany(context.Background(), &models.Company{Status: "active"}))
	}
	return store
}

func TestShardsFor(t *testing.T) {
	assert.Equal(t, 0, ShardsFor(0, 50000))
	assert.Equal(t, 1, ShardsFor(1, 50000))
	assert.Equal(t, 1, ShardsFor(50000, 50000))
	assert.Equal(t, 2, ShardsFor(50001, 50000))
	assert.Equal(t, 52, ShardsFor(2600000, 0))
}

func TestRunRoot_StaticShardCount(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg, nil, WithClock(clock), WithLoggerFactory(nopLoggers))

	run, err := r.RunRoot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, []string{sitemap.FileName}, run.Files)
	assert.Equal(t, 5, run.Entries)

	set, err := sitemap.ReadURLSet(filepath.Join(cfg.Sitemap.OutputDir, sitemap.FileName))
	require.NoError(t, err)
	assert.Len(t, set.URLs, 5)
}

func TestRunRoot_DatabaseShardCount(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sitemap.ShardSource = config.ShardSourceDatabase
	store := seededStore(t, 5)
	r := New(cfg, store, WithClock(clock), WithLoggerFactory(nopLoggers))

	run, err := r.RunRoot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, run.Entries)

	stored, err := store.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.RunStatusCompleted, stored.Status)
}

func TestRunRoot_DatabaseShardCountWithoutStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sitemap.ShardSource = config.ShardSourceDatabase
	r := New(cfg, nil, WithClock(clock), WithLoggerFactory(nopLoggers))

	run, err := r.RunRoot(context.Background())
	require.ErrorIs(t, err, ErrNoStore)
	assert.Equal(t, models.RunStatusError, run.Status)
}

func TestRunRoot_RecordsFailure(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	cfg.Sitemap.OutputDir = filepath.Join(blocker, "public")
	store := seededStore(t, 0)
	r := New(cfg, store, WithClock(clock), WithLoggerFactory(nopLoggers))

	run, err := r.RunRoot(context.Background())
	require.ErrorIs(t, err, sitemap.ErrCreateDirectory)

	stored, err := store.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.RunStatusError, stored.Status)
	assert.Len(t, stored.Errors, 1)
}

func TestRunShards(t *testing.T) {
	cfg := testConfig(t)
	store := seededStore(t, 5)
	r := New(cfg, store, WithClock(clock), WithLoggerFactory(nopLoggers))

	run, err := r.RunShards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, run.Entries)
	assert.Equal(t, []string{
		"sitemaps/sitemap-static.xml",
		"sitemaps/sitemap-companies-1.xml",
		"sitemaps/sitemap-companies-2.xml",
		"sitemaps/sitemap-companies-3.xml",
		"sitemaps/sitemap-index.xml",
		"sitemap.xml",
	}, run.Files)

	for _, f := range run.Files {
		_, err := os.Stat(filepath.Join(cfg.Sitemap.OutputDir, filepath.FromSlash(f)))
		assert.NoError(t, err, f)
	}

	root, err := sitemap.ReadURLSet(filepath.Join(cfg.Sitemap.OutputDir, sitemap.FileName))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, sitemap.Summarize(root).ShardIndices)

	runs, err := store.ListRuns(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunShards_WithoutStore(t *testing.T) {
	r := New(testConfig(t), nil, WithLoggerFactory(nopLoggers))

	_, err := r.RunShards(context.Background())
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestRegenerate_FallsBackToRoot(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg, nil, WithClock(clock), WithLoggerFactory(nopLoggers))

	run, err := r.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunKindRoot, run.Kind)
}

func TestNew_DefaultLoggerWritesRunLog(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg, nil, WithClock(clock))

	_, err := r.RunRoot(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(cfg.Log.Dir, models.RunKindRoot))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
