package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/company-sitemaps/internal/models"
	"github.com/romangod6/company-sitemaps/internal/runner"
	"github.com/romangod6/company-sitemaps/internal/sitemap"
	"github.com/romangod6/company-sitemaps/internal/storage"
)

// Generator runs sitemap generation. *runner.Runner implements it.
type Generator interface {
	RunRoot(ctx context.Context) (*models.GenerationRun, error)
	RunShards(ctx context.Context) (*models.GenerationRun, error)
}

type Handler struct {
	store     storage.Store
	gen       Generator
	outputDir string
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func NewHandler(store storage.Store, gen Generator, outputDir string) *Handler {
	return &Handler{store: store, gen: gen, outputDir: outputDir}
}

func (h *Handler) GenerateRoot(c *gin.Context) {
	h.generate(c, h.gen.RunRoot)
}

func (h *Handler) GenerateShards(c *gin.Context) {
	h.generate(c, h.gen.RunShards)
}

func (h *Handler) generate(c *gin.Context, fn func(context.Context) (*models.GenerationRun, error)) {
	run, err := fn(c.Request.Context())
	if errors.Is(err, runner.ErrNoStore) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Database not configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate sitemaps", "run": run})
		return
	}

	c.JSON(http.StatusCreated, run)
}

func (h *Handler) GetSummary(c *gin.Context) {
	set, err := sitemap.ReadURLSet(filepath.Join(h.outputDir, sitemap.FileName))
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Sitemap not generated yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read sitemap"})
		return
	}

	c.JSON(http.StatusOK, sitemap.Summarize(set))
}

func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Database not configured"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	runs, err := h.store.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch runs"})
		return
	}

	if runs == nil {
		runs = []*models.GenerationRun{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  runs,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid run ID"})
		return
	}

	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Database not configured"})
		return
	}

	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch run"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
