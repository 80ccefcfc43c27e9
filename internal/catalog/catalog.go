package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lehigh-university-libraries/bookrec/internal/dataset"
	"github.com/lehigh-university-libraries/bookrec/internal/genre"
)

// ErrEmpty is returned when no book survives the pipeline.
var ErrEmpty = errors.New("catalog is empty")

// Options configures the build pipeline.
type Options struct {
	Schema        Schema
	Genres        *genre.Mapping
	MinGenreCount int
	Strict        bool
}

// DefaultOptions returns the built-in schema, genre table and threshold.
func DefaultOptions() Options {
	return Options{
		Schema:        DefaultSchema(),
		Genres:        genre.Default(),
		MinGenreCount: DefaultMinGenreCount,
	}
}

func (o Options) withDefaults() Options {
	if o.Schema.Key == "" {
		o.Schema = DefaultSchema()
	}
	if o.Genres == nil {
		o.Genres = genre.Default()
	}
	if o.MinGenreCount <= 0 {
		o.MinGenreCount = DefaultMinGenreCount
	}
	return o
}

// Catalog is the read-only book table. It is safe for concurrent readers;
// nothing mutates it after Build returns.
type Catalog struct {
	books  []Book
	genres []string
	counts map[string]int
	byISBN map[string]int
	stats  Stats

	merge  *MergeReport
	filter FilterReport
}

// Build runs the whole pipeline over the two loaded sources.
func Build(primary, secondary *dataset.Table, opts Options) (*Catalog, error) {
	opts = opts.withDefaults()

	merged, report, err := Merge(primary, secondary, MergeOptions{Schema: opts.Schema, Strict: opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("failed to merge sources: %w", err)
	}

	c, err := assemble(merged, opts)
	if err != nil {
		return nil, err
	}
	c.merge = report
	return c, nil
}

// FromBooks builds a catalog from already merged books, such as a snapshot.
// Normalization, filtering and scoring are re-run; over a snapshot of a built
// catalog they change nothing.
func FromBooks(books []Book, opts Options) (*Catalog, error) {
	return assemble(books, opts.withDefaults())
}

func assemble(merged []Book, opts Options) (*Catalog, error) {
	normalized := NormalizeGenres(merged, opts.Genres)
	filtered, genres, filter := FilterByFrequency(normalized, opts.MinGenreCount)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no book has a genre shared by at least %d books", ErrEmpty, opts.MinGenreCount)
	}
	scored, stats := Score(filtered)

	c := &Catalog{
		books:  scored,
		genres: genres,
		counts: CountGenres(scored),
		byISBN: make(map[string]int, len(scored)),
		stats:  stats,
		filter: filter,
	}
	for i, b := range scored {
		c.byISBN[b.ISBN10] = i
	}

	slog.Info("Catalog ready", "books", len(c.books), "genres", len(c.genres), "C", stats.C, "m", stats.M)
	if len(scored) > 0 {
		slog.Debug("First book sample",
			"isbn10", scored[0].ISBN10,
			"title", scored[0].Title,
			"category", scored[0].Category,
			"bayes_average", scored[0].BayesAverage)
	}

	return c, nil
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	return len(c.books)
}

// Books returns a copy of all books in catalog order.
func (c *Catalog) Books() []Book {
	return slices.Clone(c.books)
}

// Lookup finds a book by its ISBN-10 key.
func (c *Catalog) Lookup(isbn10 string) (Book, bool) {
	i, ok := c.byISBN[isbn10]
	if !ok {
		return Book{}, false
	}
	return c.books[i], true
}

// Genres returns the selectable genres in ascending order.
func (c *Catalog) Genres() []string {
	return slices.Clone(c.genres)
}

// GenreCounts returns each genre with its book count, in genre order.
func (c *Catalog) GenreCounts() []GenreCount {
	out := make([]GenreCount, len(c.genres))
	for i, g := range c.genres {
		out[i] = GenreCount{Genre: g, Count: c.counts[g]}
	}
	return out
}

// Stats returns the frozen ranking constants.
func (c *Catalog) Stats() Stats {
	return c.stats
}

// MergeReport returns the merge diagnostics, or nil for a snapshot-built catalog.
func (c *Catalog) MergeReport() *MergeReport {
	return c.merge
}

// FilterReport returns the frequency filter diagnostics.
func (c *Catalog) FilterReport() FilterReport {
	return c.filter
}
