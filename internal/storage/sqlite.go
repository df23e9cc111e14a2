package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/company-sitemaps/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS companies (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            url_title TEXT,
            company_reg_date DATETIME,
            company_status TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS generation_runs (
            id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            status TEXT NOT NULL,
            files TEXT,
            entries INTEGER NOT NULL DEFAULT 0,
            errors TEXT,
            started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            finished_at DATETIME
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

func (s *SQLiteStore) CountCompanies(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, afterID int64, limit int) ([]*models.Company, error) {
	query := `
        SELECT id, url_title, company_reg_date, company_status
        FROM companies
        WHERE id > ?
        ORDER BY id ASC
        LIMIT ?
    `

	rows, err := s.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

func (s *SQLiteStore) CreateCompany(ctx context.Context, company *models.Company) error {
	query := `
        INSERT INTO companies (url_title, company_reg_date, company_status)
        VALUES (?, ?, ?)
    `

	res, err := s.db.ExecContext(ctx, query,
		nullString(company.URLTitle),
		company.RegisteredAt,
		nullString(company.Status),
	)
	if err != nil {
		return err
	}

	company.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.GenerationRun) error {
	query := `
        INSERT INTO generation_runs (id, kind, status, files, entries, errors, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	files, errs, err := encodeLists(run)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		run.ID.String(),
		run.Kind,
		run.Status,
		files,
		run.Entries,
		errs,
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.GenerationRun) error {
	query := `
        UPDATE generation_runs
        SET status = ?, files = ?, entries = ?, errors = ?, finished_at = ?
        WHERE id = ?
    `

	files, errs, err := encodeLists(run)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		run.Status,
		files,
		run.Entries,
		errs,
		run.FinishedAt,
		run.ID.String(),
	)

	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*models.GenerationRun, error) {
	query := `
        SELECT id, kind, status, files, entries, errors, started_at, finished_at
        FROM generation_runs
        WHERE id = ?
    `

	run, err := scanSQLiteRun(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.GenerationRun, error) {
	query := `
        SELECT id, kind, status, files, entries, errors, started_at, finished_at
        FROM generation_runs
        ORDER BY started_at DESC
        LIMIT ? OFFSET ?
    `

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.GenerationRun
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeLists(run *models.GenerationRun) (string, string, error) {
	files, err := json.Marshal(run.Files)
	if err != nil {
		return "", "", err
	}
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return "", "", err
	}
	return string(files), string(errs), nil
}

func scanSQLiteRun(row rowScanner) (*models.GenerationRun, error) {
	run := &models.GenerationRun{}
	var idStr string
	var files, errs sql.NullString
	var finished sql.NullTime

	err := row.Scan(
		&idStr,
		&run.Kind,
		&run.Status,
		&files,
		&run.Entries,
		&errs,
		&run.StartedAt,
		&finished,
	)
	if err != nil {
		return nil, err
	}

	if run.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
	}
	if files.Valid {
		if err := json.Unmarshal([]byte(files.String), &run.Files); err != nil {
			return nil, fmt.Errorf("decode run files: %w", err)
		}
	}
	if run.Files == nil {
		run.Files = []string{}
	}
	if errs.Valid {
		if err := json.Unmarshal([]byte(errs.String), &run.Errors); err != nil {
			return nil, fmt.Errorf("decode run errors: %w", err)
		}
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}
