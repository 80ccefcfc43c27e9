package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bookrec/internal/dataset"
	"github.com/lehigh-university-libraries/bookrec/internal/isbn"
)

var (
	// ErrSchema marks a source missing a required column.
	ErrSchema = errors.New("schema error")
	// ErrData marks a critical field that could not be cast (strict mode only).
	ErrData = errors.New("data error")
)

// MaxRating is the top of the star scale.
const MaxRating = 5

// Schema names the columns of both sources. The primary source holds book
// metadata and ratings, the secondary holds categories and descriptions.
type Schema struct {
	// Key is the unified join column name. PrimaryKey and SecondaryKey are
	// renamed to it before the merge.
	Key          string
	PrimaryKey   string
	SecondaryKey string

	// Columns removed before the merge: wider ISBN forms, source-local ids,
	// and secondary duplicates of primary fields.
	PrimaryDrop   []string
	SecondaryDrop []string

	// Primary columns
	Title           string
	Authors         string
	AverageRating   string
	RatingsCount    string
	NumPages        string
	PublishedYear   string
	PublicationDate string

	// Secondary columns
	Category    string
	Description string
	Thumbnail   string
}

// DefaultSchema matches the Goodreads books export (primary) and the
// 7k-books-with-metadata categories export (secondary).
func DefaultSchema() Schema {
	return Schema{
		Key:          "isbn10",
		PrimaryKey:   "isbn",
		SecondaryKey: "isbn10",

		PrimaryDrop:   []string{"isbn13", "bookID"},
		SecondaryDrop: []string{"isbn13", "authors", "title", "average_rating", "num_pages", "published_year", "ratings_count"},

		Title:           "title",
		Authors:         "authors",
		AverageRating:   "average_rating",
		RatingsCount:    "ratings_count",
		NumPages:        "num_pages",
		PublishedYear:   "published_year",
		PublicationDate: "publication_date",

		Category:    "categories",
		Description: "description",
		Thumbnail:   "thumbnail",
	}
}

// PrimaryColumns lists the columns the primary source must carry, by their
// source names.
func (s Schema) PrimaryColumns() []string {
	return []string{s.PrimaryKey, s.Title, s.Authors, s.AverageRating, s.RatingsCount, s.NumPages}
}

// SecondaryColumns lists the columns the secondary source must carry.
func (s Schema) SecondaryColumns() []string {
	return []string{s.SecondaryKey, s.Category}
}

// MergeReport counts what the merge kept and why rows were excluded.
type MergeReport struct {
	PrimaryRows   int `json:"primary_rows" yaml:"primary_rows"`
	SecondaryRows int `json:"secondary_rows" yaml:"secondary_rows"`
	Joined        int `json:"joined" yaml:"joined"`

	MissingKey         int            `json:"missing_key" yaml:"missing_key"`
	DuplicateKey       int            `json:"duplicate_key" yaml:"duplicate_key"`
	UnmatchedPrimary   int            `json:"unmatched_primary" yaml:"unmatched_primary"`
	UnmatchedSecondary int            `json:"unmatched_secondary" yaml:"unmatched_secondary"`
	InvalidFields      map[string]int `json:"invalid_fields,omitempty" yaml:"invalid_fields,omitempty"`

	// Joined keys that are not checksum-valid ISBN-10s. They are kept.
	NonstandardKeys int `json:"nonstandard_keys" yaml:"nonstandard_keys"`
}

// InvalidRows returns the number of joined rows dropped for unparsable fields.
func (r *MergeReport) InvalidRows() int {
	n := 0
	for _, c := range r.InvalidFields {
		n += c
	}
	return n
}

// MergeOptions configures Merge.
type MergeOptions struct {
	Schema Schema
	// Strict fails the merge on the first unparsable critical field instead
	// of excluding the row.
	Strict bool
}

// Merge inner-joins the two sources on the ISBN-10 key and casts typed fields.
// Output follows the primary source's row order.
func Merge(primary, secondary *dataset.Table, opts MergeOptions) ([]Book, *MergeReport, error) {
	s := opts.Schema

	if err := requireColumns(primary, s.PrimaryColumns()...); err != nil {
		return nil, nil, err
	}
	if err := requireColumns(secondary, s.SecondaryColumns()...); err != nil {
		return nil, nil, err
	}

	primary = primary.Rename(s.PrimaryKey, s.Key).Drop(s.PrimaryDrop...)
	secondary = secondary.Rename(s.SecondaryKey, s.Key).Drop(s.SecondaryDrop...)

	report := &MergeReport{
		PrimaryRows:   primary.Len(),
		SecondaryRows: secondary.Len(),
		InvalidFields: make(map[string]int),
	}

	right := make(map[string][]string, secondary.Len())
	for _, row := range secondary.Rows {
		key := isbn.Normalize(secondary.Value(row, s.Key))
		if key == "" {
			report.MissingKey++
			continue
		}
		if _, dup := right[key]; dup {
			report.DuplicateKey++
			continue
		}
		right[key] = row
	}

	books := make([]Book, 0, min(primary.Len(), len(right)))
	matched := make(map[string]bool, len(right))
	seen := make(map[string]bool, primary.Len())

	for i, row := range primary.Rows {
		key := isbn.Normalize(primary.Value(row, s.Key))
		if key == "" {
			report.MissingKey++
			continue
		}
		if seen[key] {
			report.DuplicateKey++
			continue
		}
		seen[key] = true

		other, ok := right[key]
		if !ok {
			report.UnmatchedPrimary++
			continue
		}
		matched[key] = true

		book, column, err := castRow(primary, row, secondary, other, s)
		if err != nil {
			if opts.Strict {
				return nil, nil, fmt.Errorf("%w: %s row %d (isbn %s): column %s: %w", ErrData, primary.Name, i+2, key, column, err)
			}
			report.InvalidFields[column]++
			continue
		}
		book.ISBN10 = key
		if !isbn.Valid10(key) {
			report.NonstandardKeys++
		}
		books = append(books, book)
	}

	report.UnmatchedSecondary = len(right) - len(matched)
	report.Joined = len(books)

	if n := report.InvalidRows(); n > 0 {
		slog.Warn("Excluded rows with unparsable fields", "rows", n, "by_column", report.InvalidFields)
	}
	slog.Info("Merged sources",
		"primary_rows", report.PrimaryRows,
		"secondary_rows", report.SecondaryRows,
		"joined", report.Joined,
		"missing_key", report.MissingKey,
		"duplicate_key", report.DuplicateKey)

	return books, report, nil
}

func requireColumns(t *dataset.Table, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing required columns %s", ErrSchema, t.Name, strings.Join(missing, ", "))
	}
	return nil
}

// castRow builds a book from a joined pair of rows. On failure it reports
// which critical column could not be cast.
func castRow(primary *dataset.Table, left []string, secondary *dataset.Table, right []string, s Schema) (Book, string, error) {
	rating, err := parseRating(primary.Value(left, s.AverageRating))
	if err != nil {
		return Book{}, s.AverageRating, err
	}
	count, err := parseCount(primary.Value(left, s.RatingsCount))
	if err != nil {
		return Book{}, s.RatingsCount, err
	}
	pages, err := parseCount(primary.Value(left, s.NumPages))
	if err != nil {
		return Book{}, s.NumPages, err
	}

	return Book{
		Title:         strings.TrimSpace(primary.Value(left, s.Title)),
		Authors:       strings.TrimSpace(primary.Value(left, s.Authors)),
		AverageRating: rating,
		RatingsCount:  count,
		NumPages:      pages,
		PublishedYear: publishedYear(primary, left, s),
		Category:      strings.TrimSpace(secondary.Value(right, s.Category)),
		Description:   optional(secondary.Value(right, s.Description)),
		Thumbnail:     optional(secondary.Value(right, s.Thumbnail)),
	}, "", nil
}

func parseRating(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < 0 || f > MaxRating {
		return 0, fmt.Errorf("rating %q out of range", v)
	}
	return f, nil
}

// parseCount accepts plain integers and integral floats such as "652.0".
func parseCount(v string) (int, error) {
	v = strings.TrimSpace(v)
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, err
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("count %q is negative", v)
	}
	return n, nil
}

// publishedYear reads the year column if the primary has one, else the year
// of an M/D/YYYY publication date. It is not critical: unparsable years are 0.
func publishedYear(t *dataset.Table, row []string, s Schema) int {
	if t.Has(s.PublishedYear) {
		if y, err := parseCount(t.Value(row, s.PublishedYear)); err == nil {
			return y
		}
		return 0
	}
	date := strings.TrimSpace(t.Value(row, s.PublicationDate))
	if i := strings.LastIndex(date, "/"); i >= 0 {
		date = date[i+1:]
	}
	y, err := strconv.Atoi(date)
	if err != nil || y < 0 {
		return 0
	}
	return y
}

// optional maps empty and NaN spellings to nil.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if isMissing(v) {
		return nil
	}
	return &v
}

func isMissing(v string) bool {
	return v == "" || strings.EqualFold(v, "nan")
}
