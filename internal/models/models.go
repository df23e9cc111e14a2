package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID           int64      `json:"id"`
	URLTitle     string     `json:"url_title,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	Status       string     `json:"status,omitempty"`
}

// Slug returns the path segment used for the company page.
func (c *Company) Slug() string {
	if c.URLTitle != "" {
		return c.URLTitle
	}
	return strconv.FormatInt(c.ID, 10)
}

// IsActive reports whether the company status is "active", ignoring case.
func (c *Company) IsActive() bool {
	return strings.EqualFold(c.Status, "active")
}

const (
	RunKindRoot   = "root"
	RunKindShards = "shards"

	RunStatusRunning   = "Running"
	RunStatusCompleted = "Completed"
	RunStatusError     = "Error"
)

type GenerationRun struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Files      []string   `json:"files"`
	Entries    int        `json:"entries"`
	Errors     []string   `json:"errors,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// NewGenerationRun creates a running generation record with a generated UUID.
func NewGenerationRun(kind string) *GenerationRun {
	return &GenerationRun{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    RunStatusRunning,
		Files:     []string{},
		StartedAt: time.Now().UTC(),
	}
}

// Finish marks the run completed, or errored when err is non-nil.
func (r *GenerationRun) Finish(err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	if err != nil {
		r.Status = RunStatusError
		r.Errors = append(r.Errors, err.Error())
		return
	}
	r.Status = RunStatusCompleted
}
