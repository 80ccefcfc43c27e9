package bookcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/lehigh-university-libraries/bookrec/internal/query"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatCSV  = "csv"
	formatYAML = "yaml"
)

const descriptionWidth = 300

func checkFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("unsupported format: %s (expected one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// writeBooks renders recommendations. Genre suggestions only appear in text
// output; structured formats stay a plain list of books.
func writeBooks(w io.Writer, format string, req query.Request, books []catalog.Book, suggestions []string) error {
	switch format {
	case formatText:
		return printTextBooks(w, req, books, suggestions)
	case formatJSON:
		return writeJSON(w, books)
	case formatCSV:
		return printCSVBooks(w, books)
	case formatYAML:
		return writeYAML(w, books)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextBooks(w io.Writer, req query.Request, books []catalog.Book, suggestions []string) error {
	if strings.TrimSpace(req.Value) == "" {
		_, err := fmt.Fprintf(w, "Fill in the %s to get a recommendation!\n", req.Mode)
		return err
	}
	if len(books) == 0 {
		fmt.Fprintf(w, "No books found for %s %q with %s pages.\n", req.Mode, req.Value, req.PageBucket)
		if len(suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
		return nil
	}

	for i, b := range books {
		fmt.Fprintf(w, "Book #%d\n", i+1)
		fmt.Fprintln(w, strings.Repeat("-", 80))
		fmt.Fprintln(w, strings.Repeat("⭐", b.RoundedRating))
		fmt.Fprintf(w, "Recommendation: %s by %s\n", b.Title, b.Authors)
		if desc := b.GetDescription(); desc != "" {
			fmt.Fprintf(w, "Description:    %s\n", truncate(desc, descriptionWidth))
		}
		fmt.Fprintf(w, "Genre:          %s\n", b.Category)
		fmt.Fprintf(w, "Page count:     %d\n", b.NumPages)
		fmt.Fprintf(w, "ISBN 10:        %s\n", b.ISBN10)
		if thumb := b.GetThumbnail(); thumb != "" {
			fmt.Fprintf(w, "Cover:          %s\n", thumb)
		}
		fmt.Fprintf(w, "Rating:         %.2f (%d ratings, weighted %.2f)\n", b.AverageRating, b.RatingsCount, b.BayesAverage)
		fmt.Fprintln(w)
	}

	return nil
}

func printCSVBooks(w io.Writer, books []catalog.Book) error {
	writer := csv.NewWriter(w)

	header := []string{"rank", "isbn10", "title", "authors", "category", "num_pages", "average_rating", "ratings_count", "bayes_average", "rounded_rating"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, b := range books {
		row := []string{
			strconv.Itoa(i + 1),
			b.ISBN10,
			b.Title,
			b.Authors,
			b.Category,
			strconv.Itoa(b.NumPages),
			fmt.Sprintf("%.2f", b.AverageRating),
			strconv.Itoa(b.RatingsCount),
			fmt.Sprintf("%.4f", b.BayesAverage),
			strconv.Itoa(b.RoundedRating),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeGenres(w io.Writer, format string, counts []catalog.GenreCount) error {
	switch format {
	case formatText:
		for _, gc := range counts {
			fmt.Fprintf(w, "%-40s %d\n", gc.Genre, gc.Count)
		}
		return nil
	case formatJSON:
		return writeJSON(w, counts)
	case formatCSV:
		writer := csv.NewWriter(w)
		if err := writer.Write([]string{"genre", "count"}); err != nil {
			return err
		}
		for _, gc := range counts {
			if err := writer.Write([]string{gc.Genre, strconv.Itoa(gc.Count)}); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	case formatYAML:
		return writeYAML(w, counts)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSummary(w io.Writer, format string, s Summary) error {
	switch format {
	case formatText:
		printSummary(w, s)
		return nil
	case formatJSON:
		return writeJSON(w, s)
	case formatYAML:
		return writeYAML(w, s)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Catalog Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Books:          %d\n", s.Books)
	fmt.Fprintf(w, "Genres:         %d\n", s.Genres)
	fmt.Fprintf(w, "C (p25 count):  %.2f\n", s.Stats.C)
	fmt.Fprintf(w, "m (mean):       %.4f\n", s.Stats.M)

	if m := s.Merge; m != nil {
		fmt.Fprintln(w, "\nMerge:")
		fmt.Fprintf(w, "  Primary rows:        %d\n", m.PrimaryRows)
		fmt.Fprintf(w, "  Secondary rows:      %d\n", m.SecondaryRows)
		fmt.Fprintf(w, "  Joined:              %d\n", m.Joined)
		fmt.Fprintf(w, "  Missing key:         %d\n", m.MissingKey)
		fmt.Fprintf(w, "  Duplicate key:       %d\n", m.DuplicateKey)
		fmt.Fprintf(w, "  Unmatched primary:   %d\n", m.UnmatchedPrimary)
		fmt.Fprintf(w, "  Unmatched secondary: %d\n", m.UnmatchedSecondary)
		fmt.Fprintf(w, "  Nonstandard ISBNs:   %d\n", m.NonstandardKeys)

		if len(m.InvalidFields) > 0 {
			fmt.Fprintf(w, "  Invalid rows:        %d\n", m.InvalidRows())
			var fields []string
			for field := range m.InvalidFields {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Fprintf(w, "    %s: %d\n", field, m.InvalidFields[field])
			}
		}
	}

	f := s.Filter
	fmt.Fprintln(w, "\nGenre filter:")
	fmt.Fprintf(w, "  Minimum count:       %d\n", f.MinGenreCount)
	fmt.Fprintf(w, "  Records:             %d -> %d\n", f.RecordsIn, f.RecordsOut)
	fmt.Fprintf(w, "  Genres:              %d -> %d\n", f.GenresIn, f.GenresOut)
	fmt.Fprintf(w, "  Missing genre:       %d\n", f.MissingGenre)
	fmt.Fprintf(w, "  Infrequent genre:    %d\n", f.InfrequentRows)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
