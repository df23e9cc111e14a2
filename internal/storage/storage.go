package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/company-sitemaps/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Company operations
	CountCompanies(ctx context.Context) (int, error)
	ListCompanies(ctx context.Context, afterID int64, limit int) ([]*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error

	// Generation run operations
	CreateRun(ctx context.Context, run *models.GenerationRun) error
	UpdateRun(ctx context.Context, run *models.GenerationRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.GenerationRun, error)
}

// Open connects to the database selected by driver ("postgres" or "sqlite3").
func Open(driver, url string) (Store, error) {
	switch driver {
	case "postgres", "postgresql":
		return NewPostgresStore(url)
	case "sqlite3", "sqlite":
		return NewSQLiteStore(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
