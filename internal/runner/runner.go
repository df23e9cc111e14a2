// Package runner executes sitemap generation runs and records them in storage.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/romangod6/company-sitemaps/config"
	"github.com/romangod6/company-sitemaps/internal/models"
	"github.com/romangod6/company-sitemaps/internal/sitemap"
	"github.com/romangod6/company-sitemaps/internal/storage"
	"github.com/romangod6/company-sitemaps/internal/utils"
)

// ErrNoStore is returned by operations that need the company database when
// none is configured.
var ErrNoStore = errors.New("no database configured")

type Logger interface {
	LogInfo(format string, v ...interface{})
	LogError(format string, v ...interface{})
	LogDebug(format string, v ...interface{})
	Close() error
}

type Runner struct {
	cfg       *config.Config
	store     storage.Store
	newLogger func(name string) (Logger, error)
	now       func() time.Time
}

type Option func(*Runner)

// WithClock sets the clock used for sitemap dates.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithLoggerFactory replaces the per-run file logger.
func WithLoggerFactory(f func(name string) (Logger, error)) Option {
	return func(r *Runner) { r.newLogger = f }
}

// New creates a Runner. store may be nil, in which case runs are not recorded
// and database-backed operations fail with ErrNoStore.
func New(cfg *config.Config, store storage.Store, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
	r.newLogger = func(name string) (Logger, error) {
		return utils.NewRunLogger(cfg.Log.Dir, name, cfg.Log.Level)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunRoot regenerates the root sitemap.xml.
func (r *Runner) RunRoot(ctx context.Context) (*models.GenerationRun, error) {
	run := models.NewGenerationRun(models.RunKindRoot)
	logger := r.openLogger(run)
	defer logger.Close()

	r.createRun(ctx, run, logger)

	shards, err := r.rootShardCount(ctx)
	if err == nil {
		logger.LogInfo("Generating %s for %s with %d company shards", sitemap.FileName, r.cfg.Sitemap.BaseURL, shards)
		var res *sitemap.Result
		res, err = r.generateRoot(shards)
		if err == nil {
			run.Files = append(run.Files, sitemap.FileName)
			run.Entries = res.Entries
		}
	}

	return r.finish(run, err, logger)
}

// RunShards writes the static, company and index sitemaps from the database
// and then rewrites the root sitemap with the number of shards written.
func (r *Runner) RunShards(ctx context.Context) (*models.GenerationRun, error) {
	run := models.NewGenerationRun(models.RunKindShards)
	logger := r.openLogger(run)
	defer logger.Close()

	if r.store == nil {
		return r.finish(run, ErrNoStore, logger)
	}
	r.createRun(ctx, run, logger)

	started := time.Now()
	res, err := sitemap.GenerateShards(ctx, r.store, sitemap.ShardOptions{
		BaseURL:        r.cfg.Sitemap.BaseURL,
		OutputDir:      r.cfg.Sitemap.OutputDir,
		URLsPerSitemap: r.cfg.Sitemap.URLsPerSitemap,
		BatchSize:      r.cfg.Sitemap.BatchSize,
		Now:            r.now,
	}, logger)
	if err == nil {
		for _, f := range res.Files {
			run.Files = append(run.Files, path.Join(sitemap.ShardDir, f))
		}
		run.Files = append(run.Files, path.Join(sitemap.ShardDir, sitemap.IndexFile))
		run.Entries = res.Companies

		_, err = r.generateRoot(res.Shards)
		if err == nil {
			run.Files = append(run.Files, sitemap.FileName)
		}
	}
	logger.LogInfo("Total time: %.2f seconds", time.Since(started).Seconds())

	return r.finish(run, err, logger)
}

// Regenerate rebuilds everything the configuration allows: the shard files
// and root sitemap when a database is configured, the root sitemap otherwise.
func (r *Runner) Regenerate(ctx context.Context) (*models.GenerationRun, error) {
	if r.store != nil {
		return r.RunShards(ctx)
	}
	return r.RunRoot(ctx)
}

func (r *Runner) rootShardCount(ctx context.Context) (int, error) {
	if r.cfg.Sitemap.ShardSource != config.ShardSourceDatabase {
		return r.cfg.Sitemap.ShardCount, nil
	}
	if r.store == nil {
		return 0, ErrNoStore
	}

	count, err := r.store.CountCompanies(ctx)
	if err != nil {
		return 0, err
	}
	return ShardsFor(count, r.cfg.Sitemap.URLsPerSitemap), nil
}

// ShardsFor returns how many company sitemaps hold count companies.
func ShardsFor(count, perSitemap int) int {
	if perSitemap <= 0 {
		perSitemap = sitemap.DefaultURLsPerSitemap
	}
	return (count + perSitemap - 1) / perSitemap
}

func (r *Runner) generateRoot(shards int) (*sitemap.Result, error) {
	return sitemap.Generate(sitemap.Options{
		BaseURL:    r.cfg.Sitemap.BaseURL,
		OutputDir:  r.cfg.Sitemap.OutputDir,
		ShardCount: shards,
		Now:        r.now,
	})
}

func (r *Runner) openLogger(run *models.GenerationRun) Logger {
	logger, err := r.newLogger(run.Kind)
	if err != nil {
		fallback := utils.NewConsoleLogger(r.cfg.Log.Level)
		fallback.LogError("Failed to create run logger: %v", err)
		return fallback
	}
	logger.LogInfo("Starting %s generation run %s", run.Kind, run.ID)
	return logger
}

func (r *Runner) createRun(ctx context.Context, run *models.GenerationRun, logger Logger) {
	if r.store == nil {
		return
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		logger.LogError("Failed to record run %s: %v", run.ID, err)
	}
}

func (r *Runner) finish(run *models.GenerationRun, err error, logger Logger) (*models.GenerationRun, error) {
	run.Finish(err)

	if r.store != nil {
		// The caller's context may already be canceled; the outcome is still recorded.
		if updateErr := r.store.UpdateRun(context.Background(), run); updateErr != nil {
			logger.LogError("Error updating run status: %v", updateErr)
		}
	}

	if err != nil {
		logger.LogError("Generation run %s failed: %v", run.ID, err)
		return run, fmt.Errorf("%s generation failed: %w", run.Kind, err)
	}

	logger.LogInfo("Successfully generated %d files in %s directory!", len(run.Files), r.cfg.Sitemap.OutputDir)
	return run, nil
}
