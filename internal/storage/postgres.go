package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/company-sitemaps/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an already opened connection pool.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS companies (
            id BIGSERIAL PRIMARY KEY,
            url_title VARCHAR(512),
            company_reg_date TIMESTAMP,
            company_status VARCHAR(128)
        )`,
		`CREATE TABLE IF NOT EXISTS generation_runs (
            id UUID PRIMARY KEY,
            kind VARCHAR(32) NOT NULL,
            status VARCHAR(32) NOT NULL,
            files TEXT[],
            entries INTEGER NOT NULL DEFAULT 0,
            errors TEXT[],
            started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            finished_at TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_generation_runs_started_at ON generation_runs(started_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CountCompanies(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, afterID int64, limit int) ([]*models.Company, error) {
	query := `
        SELECT id, url_title, company_reg_date, company_status
        FROM companies
        WHERE id > $1
        ORDER BY id ASC
        LIMIT $2
    `

	rows, err := s.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

func (s *PostgresStore) CreateCompany(ctx context.Context, company *models.Company) error {
	query := `
        INSERT INTO companies (url_title, company_reg_date, company_status)
        VALUES ($1, $2, $3)
        RETURNING id
    `

	return s.db.QueryRowContext(ctx, query,
		nullString(company.URLTitle),
		company.RegisteredAt,
		nullString(company.Status),
	).Scan(&company.ID)
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.GenerationRun) error {
	query := `
        INSERT INTO generation_runs (id, kind, status, files, entries, errors, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Kind,
		run.Status,
		pq.Array(run.Files),
		run.Entries,
		pq.Array(run.Errors),
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.GenerationRun) error {
	query := `
        UPDATE generation_runs
        SET status = $2, files = $3, entries = $4, errors = $5, finished_at = $6
        WHERE id = $1
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		pq.Array(run.Files),
		run.Entries,
		pq.Array(run.Errors),
		run.FinishedAt,
	)

	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	query := `
        SELECT id, kind, status, files, entries, errors, started_at, finished_at
        FROM generation_runs
        WHERE id = $1
    `

	run, err := scanPostgresRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.GenerationRun, error) {
	query := `
        SELECT id, kind, status, files, entries, errors, started_at, finished_at
        FROM generation_runs
        ORDER BY started_at DESC
        LIMIT $1 OFFSET $2
    `

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.GenerationRun
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPostgresRun(row rowScanner) (*models.GenerationRun, error) {
	run := &models.GenerationRun{}
	var files, errs []string
	var finished sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.Status,
		pq.Array(&files),
		&run.Entries,
		pq.Array(&errs),
		&run.StartedAt,
		&finished,
	)
	if err != nil {
		return nil, err
	}

	if files == nil {
		files = []string{}
	}
	run.Files = files
	run.Errors = errs
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}

func scanCompanies(rows *sql.Rows) ([]*models.Company, error) {
	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		var urlTitle, status sql.NullString
		var regDate sql.NullTime

		if err := rows.Scan(&company.ID, &urlTitle, &regDate, &status); err != nil {
			return nil, err
		}

		company.URLTitle = urlTitle.String
		company.Status = status.String
		if regDate.Valid {
			company.RegisteredAt = &regDate.Time
		}
		companies = append(companies, company)
	}

	return companies, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
