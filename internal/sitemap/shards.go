package sitemap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/romangod6/company-sitemaps/internal/models"
)

const (
	DefaultURLsPerSitemap = 50000
	DefaultBatchSize      = 10000
)

// CompanySource pages through companies in ascending id order, returning at
// most limit companies with an id greater than afterID.
type CompanySource interface {
	ListCompanies(ctx context.Context, afterID int64, limit int) ([]*models.Company, error)
}

type Logger interface {
	LogInfo(format string, v ...interface{})
	LogDebug(format string, v ...interface{})
}

type StaticPage struct {
	Path       string  `mapstructure:"path" json:"path"`
	ChangeFreq string  `mapstructure:"changefreq" json:"changefreq"`
	Priority   float64 `mapstructure:"priority" json:"priority"`
}

// DefaultStaticPages are the fixed pages of the company directory site.
var DefaultStaticPages = []StaticPage{
	{Path: "", ChangeFreq: models.ChangeFreqDaily, Priority: 1.0},
	{Path: "/about", ChangeFreq: models.ChangeFreqWeekly, Priority: 0.8},
	{Path: "/contact", ChangeFreq: models.ChangeFreqWeekly, Priority: 0.8},
	{Path: "/privacy-policy", ChangeFreq: models.ChangeFreqMonthly, Priority: 0.5},
	{Path: "/terms-of-service", ChangeFreq: models.ChangeFreqMonthly, Priority: 0.5},
	{Path: "/faq", ChangeFreq: models.ChangeFreqWeekly, Priority: 0.7},
	{Path: "/help-center", ChangeFreq: models.ChangeFreqWeekly, Priority: 0.7},
}

type ShardOptions struct {
	BaseURL        string
	OutputDir      string
	URLsPerSitemap int
	BatchSize      int
	StaticPages    []StaticPage
	Now            func() time.Time
}

func (o *ShardOptions) setDefaults() {
	if o.URLsPerSitemap <= 0 {
		o.URLsPerSitemap = DefaultURLsPerSitemap
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.StaticPages == nil {
		o.StaticPages = DefaultStaticPages
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type ShardResult struct {
	Date string
	// Files are the written file names, relative to the sitemaps directory,
	// in the order they appear in the index.
	Files     []string
	Shards    int
	Companies int
}

// CompanyEntry maps a company to its sitemap entry. Companies without a
// registration date get the run date.
func CompanyEntry(baseURL string, c *models.Company, date string) models.URL {
	lastMod := date
	if c.RegisteredAt != nil {
		lastMod = c.RegisteredAt.Format(DateLayout)
	}
	priority := 0.5
	if c.IsActive() {
		priority = 0.8
	}
	return models.URL{
		Loc:        baseURL + "/company/" + c.Slug(),
		LastMod:    lastMod,
		ChangeFreq: models.ChangeFreqMonthly,
		Priority:   FormatPriority(priority),
	}
}

// GenerateShards writes the static sitemap, one company sitemap per
// URLsPerSitemap companies and the sitemap index into OutputDir/sitemaps.
// Stale sitemap-*.xml files in that directory are removed first.
func GenerateShards(ctx context.Context, source CompanySource, opts ShardOptions, logger Logger) (*ShardResult, error) {
	opts.setDefaults()
	date := opts.Now().Format(DateLayout)
	dir := filepath.Join(opts.OutputDir, ShardDir)

	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	if err := removeStale(dir, logger); err != nil {
		return nil, err
	}

	res := &ShardResult{Date: date}

	static := make([]models.URL, 0, len(opts.StaticPages))
	for _, p := range opts.StaticPages {
		static = append(static, models.URL{
			Loc:        opts.BaseURL + p.Path,
			LastMod:    date,
			ChangeFreq: p.ChangeFreq,
			Priority:   FormatPriority(p.Priority),
		})
	}
	if err := writeURLSet(filepath.Join(dir, StaticFile), static); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, StaticFile)

	batch := make([]models.URL, 0, opts.URLsPerSitemap)
	flush := func() error {
		name := CompanyFile(res.Shards + 1)
		logger.LogInfo("Writing sitemap file: %s (%d urls)", name, len(batch))
		if err := writeURLSet(filepath.Join(dir, name), batch); err != nil {
			return err
		}
		res.Shards++
		res.Files = append(res.Files, name)
		batch = batch[:0]
		return nil
	}

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		started := time.Now()
		companies, err := source.ListCompanies(ctx, afterID, opts.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("list companies after id %d: %w", afterID, err)
		}
		if len(companies) == 0 {
			break
		}

		for _, c := range companies {
			batch = append(batch, CompanyEntry(opts.BaseURL, c, date))
			if len(batch) == opts.URLsPerSitemap {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}

		afterID = companies[len(companies)-1].ID
		res.Companies += len(companies)
		logger.LogDebug("Processed batch of %d companies in %s (total %d)",
			len(companies), time.Since(started), res.Companies)

		if len(companies) < opts.BatchSize {
			break
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	prefix := opts.BaseURL + "/" + ShardDir + "/"
	err := writeFile(filepath.Join(dir, IndexFile), func(w *Writer) {
		w.StartIndex()
		for _, name := range res.Files {
			w.Sitemap(models.SitemapFile{Loc: prefix + name, LastMod: date})
		}
		w.EndIndex()
	})
	if err != nil {
		return nil, err
	}

	logger.LogInfo("Wrote %d company sitemaps for %d companies", res.Shards, res.Companies)
	return res, nil
}

func writeURLSet(path string, urls []models.URL) error {
	return writeFile(path, func(w *Writer) {
		w.StartURLSet()
		for _, u := range urls {
			w.URL(u)
		}
		w.EndURLSet()
	})
}

func removeStale(dir string, logger Logger) error {
	matches, err := filepath.Glob(filepath.Join(dir, "sitemap-*.xml"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFile, err)
		}
		logger.LogDebug("Removed stale sitemap %s", filepath.Base(m))
	}
	return nil
}
