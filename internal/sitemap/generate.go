package sitemap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/romangod6/company-sitemaps/internal/models"
)

const (
	// FileName is the name of the root sitemap written into the output directory.
	FileName = "sitemap.xml"
	// ShardDir is the directory, relative to the base URL and the output
	// directory, that holds the static, index and company sitemaps.
	ShardDir = "sitemaps"

	StaticFile = "sitemap-static.xml"
	IndexFile  = "sitemap-index.xml"

	DateLayout        = "2006-01-02"
	DefaultShardCount = 52
)

// CompanyFile returns the file name of the i-th company shard (1-based).
func CompanyFile(i int) string {
	return fmt.Sprintf("sitemap-companies-%d.xml", i)
}

type Options struct {
	BaseURL    string
	OutputDir  string
	ShardCount int
	// Now defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Path    string
	Date    string
	Entries int
}

// RootEntries lists the entries of the root sitemap in emission order: the
// static sitemap, the sitemap index, then company shards 1..shardCount.
func RootEntries(baseURL string, shardCount int, date string) []models.URL {
	prefix := baseURL + "/" + ShardDir + "/"
	entries := make([]models.URL, 0, 2+shardCount)
	entries = append(entries,
		models.URL{
			Loc:        prefix + StaticFile,
			LastMod:    date,
			ChangeFreq: models.ChangeFreqWeekly,
			Priority:   FormatPriority(1.0),
		},
		models.URL{
			Loc:        prefix + IndexFile,
			LastMod:    date,
			ChangeFreq: models.ChangeFreqDaily,
			Priority:   FormatPriority(0.8),
		},
	)
	for i := 1; i <= shardCount; i++ {
		entries = append(entries, models.URL{
			Loc:        prefix + CompanyFile(i),
			LastMod:    date,
			ChangeFreq: models.ChangeFreqDaily,
			Priority:   FormatPriority(0.8),
		})
	}
	return entries
}

// Generate writes OutputDir/sitemap.xml, creating the directory when missing
// and truncating any previous file. The base URL is written as given.
func Generate(opts Options) (*Result, error) {
	if opts.ShardCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShardCount, opts.ShardCount)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	date := now().Format(DateLayout)

	if err := ensureDir(opts.OutputDir); err != nil {
		return nil, err
	}

	entries := RootEntries(opts.BaseURL, opts.ShardCount, date)
	path := filepath.Join(opts.OutputDir, FileName)
	err := writeFile(path, func(w *Writer) {
		w.StartURLSet()
		for _, e := range entries {
			w.URL(e)
		}
		w.EndURLSet()
	})
	if err != nil {
		return nil, err
	}

	return &Result{Path: path, Date: date, Entries: len(entries)}, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateDirectory, err)
	}
	return nil
}

func writeFile(path string, fill func(*Writer)) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteFile, cerr)
		}
	}()

	w := NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	return nil
}
