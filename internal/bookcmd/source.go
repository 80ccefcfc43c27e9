// Package bookcmd implements the cobra commands that build the book catalog and query it.
package bookcmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/lehigh-university-libraries/bookrec/internal/dataset"
	"github.com/lehigh-university-libraries/bookrec/internal/genre"
	"github.com/spf13/cobra"
)

// SourceFlags selects where the catalog is built from: the two CSV sources,
// or a snapshot written by the export command.
type SourceFlags struct {
	BooksPath      string
	CategoriesPath string
	SnapshotPath   string
	GenreMapPath   string
	MinGenreCount  int
	Strict         bool
}

// Register adds the source flags to cmd. Defaults come from the environment.
func (f *SourceFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.BooksPath, "books", getEnv("BOOKREC_BOOKS", "goodreads_books.csv"), "Path to the primary books CSV (metadata and ratings)")
	cmd.Flags().StringVar(&f.CategoriesPath, "categories", getEnv("BOOKREC_CATEGORIES", "categories_books.csv"), "Path to the categories CSV")
	cmd.Flags().StringVar(&f.SnapshotPath, "snapshot", os.Getenv("BOOKREC_SNAPSHOT"), "Load a catalog snapshot (.parquet or .jsonl) instead of the CSV sources")
	cmd.Flags().StringVar(&f.GenreMapPath, "genre-map", os.Getenv("BOOKREC_GENRE_MAP"), "YAML file extending or replacing the built-in genre aliases")
	cmd.Flags().IntVar(&f.MinGenreCount, "min-genre-count", getEnvInt("BOOKREC_MIN_GENRE_COUNT", catalog.DefaultMinGenreCount), "Drop genres shared by fewer books than this")
	cmd.Flags().BoolVar(&f.Strict, "strict", false, "Fail on the first unparsable rating, ratings count or page count instead of skipping the row")
}

// Load runs the pipeline once and returns the immutable catalog.
func (f *SourceFlags) Load() (*catalog.Catalog, error) {
	opts := catalog.DefaultOptions()
	opts.MinGenreCount = f.MinGenreCount
	opts.Strict = f.Strict

	if f.GenreMapPath != "" {
		m, err := genre.LoadFile(f.GenreMapPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Loaded genre map", "path", f.GenreMapPath, "aliases", m.Len())
		opts.Genres = m
	}

	if f.SnapshotPath != "" {
		slog.Info("Loading catalog snapshot", "path", f.SnapshotPath)
		books, err := dataset.ReadSnapshot[catalog.Book](f.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return catalog.FromBooks(books, opts)
	}

	slog.Info("Loading sources", "books", f.BooksPath, "categories", f.CategoriesPath)
	books, err := dataset.NewLoader(f.BooksPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	categories, err := dataset.NewLoader(f.CategoriesPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return catalog.Build(books, categories, opts)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring invalid integer in environment", "key", key, "value", v)
		return fallback
	}
	return n
}
