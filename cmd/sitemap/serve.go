package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/romangod6/company-sitemaps/internal/api"
	"github.com/romangod6/company-sitemaps/internal/runner"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve generated sitemaps and regenerate them periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			r := runner.New(cfg, store)
			server := api.NewServer(cfg.Server.Port, store, r, cfg.Sitemap.OutputDir)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var wg sync.WaitGroup

			// Setup periodic regeneration
			wg.Add(1)
			go func() {
				defer wg.Done()
				ticker := time.NewTicker(cfg.GetRegenerateInterval())
				defer ticker.Stop()

				regenerate(ctx, r)
				for {
					select {
					case <-ticker.C:
						log.Println("Starting periodic regeneration...")
						regenerate(ctx, r)
					case <-ctx.Done():
						return
					}
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.Printf("Starting API server on port %d", cfg.Server.Port)
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("API server stopped: %w", err)
				}
			}()

			err = waitForShutdown(ctx, cancel, server, errCh)
			// Regeneration must finish before the deferred store.Close runs.
			wg.Wait()
			return err
		},
	}
}

func regenerate(ctx context.Context, r *runner.Runner) {
	run, err := r.Regenerate(ctx)
	if err != nil {
		log.Printf("Regeneration failed: %v", err)
		return
	}
	log.Printf("Regeneration %s completed: %d files", run.ID, len(run.Files))
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server, errCh <-chan error) error {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case <-sigChan:
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	log.Println("Shutting down...")
	cancel()

	// Graceful server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
		if runErr == nil {
			runErr = err
		}
	}
	if runErr == nil {
		log.Println("Server shut down gracefully")
	}
	return runErr
}
