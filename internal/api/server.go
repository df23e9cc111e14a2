package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/company-sitemaps/internal/sitemap"
	"github.com/romangod6/company-sitemaps/internal/storage"
)

type Server struct {
	router *gin.Engine
	server *http.Server
}

// NewServer builds the API. store may be nil when no database is configured.
func NewServer(port int, store storage.Store, gen Generator, outputDir string) *Server {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler := NewHandler(store, gen, outputDir)

	// Generated files
	router.StaticFile("/"+sitemap.FileName, filepath.Join(outputDir, sitemap.FileName))
	router.Static("/"+sitemap.ShardDir, filepath.Join(outputDir, sitemap.ShardDir))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		sitemaps := api.Group("/sitemaps")
		{
			sitemaps.POST("/generate", handler.GenerateRoot)
			sitemaps.POST("/shards", handler.GenerateShards)
			sitemaps.GET("/summary", handler.GetSummary)
		}

		runs := api.Group("/runs")
		{
			runs.GET("", handler.ListRuns)
			runs.GET("/:id", handler.GetRun)
		}
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
