package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookrec/internal/bookcmd"
	"github.com/lehigh-university-libraries/bookrec/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var src bookcmd.SourceFlags
	var port string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the recommendation API server",
		Long: `Builds the catalog once and serves it over HTTP on the specified port.

Endpoints:
  GET /api/genres
  GET /api/recommendations?mode=author|genre&value=...&page_bucket=<300|300-499|500+&limit=N
  GET /api/books/{isbn}
  GET /healthcheck`,
		Example: `  # Start server on default port 8888
  bookrec serve

  # Serve a prebuilt snapshot on a custom port
  bookrec serve --snapshot books.parquet --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := src.Load()
			if err != nil {
				return err
			}

			handler := handlers.New(cat)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(origins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Recommendation API available", "addr", addr, "url", "http://localhost"+addr, "books", cat.Len())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	src.Register(cmd)
	cmd.Flags().StringVarP(&port, "port", "p", getEnv("PORT", "8888"), "Port to listen on")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", splitList(os.Getenv("BOOKREC_CORS_ORIGINS")), "Allowed CORS origins (default any)")

	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
