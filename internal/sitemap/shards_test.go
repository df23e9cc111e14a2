package sitemap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/romangod6/company-sitemaps/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) LogInfo(string, ...interface{})  {}
func (nopLogger) LogDebug(string, ...interface{}) {}

type sliceSource struct {
	companies []*models.Company
	calls     int
	err       error
}

func (s *sliceSource) ListCompanies(_ context.Context, afterID int64, limit int) ([]*models.Company, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Company
	for _, c := range s.companies {
		if c.ID > afterID {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func companies(n int) []*models.Company {
	out := make([]*models.Company, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &models.Company{ID: int64(i), Status: "active"})
	}
	return out
}

func shardOpts(dir string) ShardOptions {
	return ShardOptions{
		BaseURL:        "https://example.com",
		OutputDir:      dir,
		URLsPerSitemap: 3,
		BatchSize:      2,
		Now:            fixedClock,
	}
}

func TestGenerateShards_SplitsCompanies(t *testing.T) {
	dir := t.TempDir()
	src := &sliceSource{companies: companies(7)}

	res, err := GenerateShards(context.Background(), src, shardOpts(dir), nopLogger{})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Companies)
	assert.Equal(t, 3, res.Shards)
	assert.Equal(t, []string{StaticFile, CompanyFile(1), CompanyFile(2), CompanyFile(3)}, res.Files)
	assert.Equal(t, 4, src.calls)

	sizes := []int{3, 3, 1}
	for i, want := range sizes {
		set, err := ReadURLSet(filepath.Join(dir, ShardDir, CompanyFile(i+1)))
		require.NoError(t, err)
		assert.Len(t, set.URLs, want)
	}

	last, err := ReadURLSet(filepath.Join(dir, ShardDir, CompanyFile(3)))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/company/7", last.URLs[0].Loc)

	f, err := os.Open(filepath.Join(dir, ShardDir, IndexFile))
	require.NoError(t, err)
	defer f.Close()
	idx, err := DecodeIndex(f)
	require.NoError(t, err)
	require.Len(t, idx.Sitemaps, 4)
	assert.Equal(t, "https://example.com/sitemaps/sitemap-static.xml", idx.Sitemaps[0].Loc)
	assert.Equal(t, "https://example.com/sitemaps/sitemap-companies-3.xml", idx.Sitemaps[3].Loc)
	assert.Equal(t, "2024-03-09", idx.Sitemaps[0].LastMod)
}

func TestGenerateShards_StaticPages(t *testing.T) {
	dir := t.TempDir()
	res, err := GenerateShards(context.Background(), &sliceSource{}, shardOpts(dir), nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Shards)
	assert.Equal(t, []string{StaticFile}, res.Files)

	set, err := ReadURLSet(filepath.Join(dir, ShardDir, StaticFile))
	require.NoError(t, err)
	require.Len(t, set.URLs, len(DefaultStaticPages))
	assert.Equal(t, "https://example.com", set.URLs[0].Loc)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
	assert.Equal(t, "https://example.com/help-center", set.URLs[6].Loc)
	assert.Equal(t, "weekly", set.URLs[6].ChangeFreq)
}

func TestGenerateShards_RemovesStaleShards(t *testing.T) {
	dir := t.TempDir()
	shardDir := filepath.Join(dir, ShardDir)
	require.NoError(t, os.MkdirAll(shardDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(shardDir, CompanyFile(9)), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(shardDir, "notes.txt"), []byte("keep"), 0644))

	_, err := GenerateShards(context.Background(), &sliceSource{companies: companies(1)}, shardOpts(dir), nopLogger{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(shardDir, CompanyFile(9)))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(filepath.Join(shardDir, "notes.txt"))
	assert.NoError(t, err)
}

func TestGenerateShards_SourceError(t *testing.T) {
	src := &sliceSource{err: errors.New("connection refused")}
	_, err := GenerateShards(context.Background(), src, shardOpts(t.TempDir()), nopLogger{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
}

func TestGenerateShards_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateShards(ctx, &sliceSource{companies: companies(3)}, shardOpts(t.TempDir()), nopLogger{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompanyEntry(t *testing.T) {
	reg := time.Date(2015, time.June, 1, 10, 0, 0, 0, time.UTC)

	active := CompanyEntry("https://example.com", &models.Company{ID: 4, URLTitle: "acme", RegisteredAt: &reg, Status: "ACTIVE"}, "2024-03-09")
	assert.Equal(t, models.URL{
		Loc:        "https://example.com/company/acme",
		LastMod:    "2015-06-01",
		ChangeFreq: "monthly",
		Priority:   "0.8",
	}, active)

	dissolved := CompanyEntry("https://example.com", &models.Company{ID: 5, Status: "dissolved"}, "2024-03-09")
	assert.Equal(t, "https://example.com/company/5", dissolved.Loc)
	assert.Equal(t, "2024-03-09", dissolved.LastMod)
	assert.Equal(t, "0.5", dissolved.Priority)
}
