package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/bookrec/internal/bookcmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	// Load .env file if present (ignore errors). Subcommands read their flag
	// defaults from the environment, so this has to happen before they are built.
	_ = godotenv.Load()

	var verbose bool

	cmd := &cobra.Command{
		Use:   "bookrec",
		Short: "Book recommender ranked by Bayesian average rating",
		Long: `Bookrec merges a Goodreads books export with a categories export, cleans up
genres, and recommends books by author or genre ranked by a Bayesian average
that discounts ratings backed by few reviews.

It can answer queries from the command line or serve them over HTTP.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := getLogLevelFromEnv()
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(bookcmd.NewRecommendCmd())
	cmd.AddCommand(bookcmd.NewGenresCmd())
	cmd.AddCommand(bookcmd.NewStatsCmd())
	cmd.AddCommand(bookcmd.NewExportCmd())
	cmd.AddCommand(bookcmd.NewInspectCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func getLogLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
