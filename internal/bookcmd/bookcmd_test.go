package bookcmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/lehigh-university-libraries/bookrec/internal/query"
	"github.com/spf13/cobra"
)

const booksCSV = "bookID,title,authors,average_rating,isbn,isbn13,language_code,  num_pages,ratings_count,text_reviews_count,publication_date,publisher\n" +
	"1,Small Gods,Terry Pratchett,4.3,0000000001,9780000000001,eng,250,5000,10,1/1/1992,Harper\n" +
	"2,Mort,Terry Pratchett,4.2,0000000002,9780000000002,eng,320,3000,10,1/1/1987,Harper\n" +
	"3,Eric,Terry Pratchett/Josh Kirby,3.9,0000000003,9780000000003,eng,150,400,10,1/1/1990,Gollancz\n" +
	"4,Dune,Frank Herbert,4.5,0000000004,9780000000004,eng,600,9000,10,1/1/1965,Ace\n" +
	"5,Emma,Jane Austen,4.0,0000000005,9780000000005,eng,480,200,10,1/1/1815,Penguin\n" +
	"6,Odes,John Keats,4.1,0000000006,9780000000006,eng,100,50,10,1/1/1819,Penguin\n"

const categoriesCSV = "isbn13,isbn10,title,subtitle,authors,categories,thumbnail,description,published_year,average_rating,num_pages,ratings_count\n" +
	"9780000000001,0000000001,Small Gods,,Terry Pratchett,Fiction,http://books.example/1,A god returns as a tortoise.,1992,4.3,250,5000\n" +
	"9780000000002,0000000002,Mort,,Terry Pratchett,Fiction,,,1987,4.2,320,3000\n" +
	"9780000000003,0000000003,Eric,,Terry Pratchett,Fiction,,,1990,3.9,150,400\n" +
	"9780000000004,0000000004,Dune,,Frank Herbert,Fiction,,A desert planet.,1965,4.5,600,9000\n" +
	"9780000000005,0000000005,Emma,,Jane Austen,Fiction,,,1815,4.0,480,200\n" +
	"9780000000006,0000000006,Odes,,John Keats,Poetry,,,1819,4.1,100,50\n"

func writeSources(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	books := filepath.Join(dir, "books.csv")
	categories := filepath.Join(dir, "categories.csv")
	if err := os.WriteFile(books, []byte(booksCSV), 0644); err != nil {
		t.Fatalf("Failed to create books file: %v", err)
	}
	if err := os.WriteFile(categories, []byte(categoriesCSV), 0644); err != nil {
		t.Fatalf("Failed to create categories file: %v", err)
	}
	return books, categories
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeISBNs(t *testing.T, out string) []string {
	t.Helper()
	var books []catalog.Book
	if err := json.Unmarshal([]byte(out), &books); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	isbns := make([]string, len(books))
	for i, b := range books {
		isbns[i] = b.ISBN10
	}
	return isbns
}

func TestRecommendJSON(t *testing.T) {
	books, categories := writeSources(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "author under 300 pages",
			args: []string{"--by", "author", "--value", "PRATCHETT", "--pages", "<300"},
			want: []string{"0000000001", "0000000003"},
		},
		{
			name: "genre 500 plus",
			args: []string{"--by", "genre", "--value", "Fiction", "--pages", "500+"},
			want: []string{"0000000004"},
		},
		{
			name: "genre is exact",
			args: []string{"--by", "genre", "--value", "fiction", "--pages", "500+"},
			want: []string{},
		},
		{
			name: "filtered genre is gone",
			args: []string{"--by", "genre", "--value", "Poetry", "--pages", "<300"},
			want: []string{},
		},
		{
			name: "limit truncates",
			args: []string{"--by", "author", "--value", "pratchett", "--pages", "<300", "--limit", "1"},
			want: []string{"0000000001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--books", books, "--categories", categories, "--format", "json"}, tt.args...)
			out, err := run(t, NewRecommendCmd(), args...)
			if err != nil {
				t.Fatalf("recommend failed: %v", err)
			}

			got := decodeISBNs(t, out)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRecommendText(t *testing.T) {
	books, categories := writeSources(t)

	out, err := run(t, NewRecommendCmd(), "--books", books, "--categories", categories,
		"--by", "author", "--value", "pratchett", "--pages", "<300")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}

	for _, want := range []string{
		"Book #1",
		"Recommendation: Small Gods by Terry Pratchett",
		"⭐⭐⭐⭐\n",
		"Description:    A god returns as a tortoise.",
		"Cover:          http://books.example/1",
		"Book #2",
		"Recommendation: Eric by Terry Pratchett/Josh Kirby",
		"Page count:     150",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRecommendEmptyValue(t *testing.T) {
	books, categories := writeSources(t)

	out, err := run(t, NewRecommendCmd(), "--books", books, "--categories", categories,
		"--by", "genre", "--value", "  ")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !strings.Contains(out, "Fill in the genre to get a recommendation!") {
		t.Errorf("Expected prompt for a genre, got %q", out)
	}
}

func TestRecommendSuggestsGenre(t *testing.T) {
	books, categories := writeSources(t)

	out, err := run(t, NewRecommendCmd(), "--books", books, "--categories", categories,
		"--by", "genre", "--value", "fiction", "--pages", "300-499")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !strings.Contains(out, "Did you mean: Fiction?") {
		t.Errorf("Expected a genre suggestion, got %q", out)
	}
}

func TestRecommendRejectsBadInputBeforeLoading(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"limit too large", []string{"--by", "author", "--value", "x", "--limit", "1001"}},
		{"negative limit", []string{"--by", "author", "--value", "x", "--limit", "-1"}},
		{"unknown mode", []string{"--by", "title", "--value", "x"}},
		{"unknown bucket", []string{"--by", "author", "--value", "x", "--pages", "1000+"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Sources do not exist, so a load attempt would fail differently
			args := append([]string{"--books", "/nonexistent/books.csv", "--categories", "/nonexistent/categories.csv"}, tt.args...)
			_, err := run(t, NewRecommendCmd(), args...)

			var verr *query.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Expected a validation error, got %v", err)
			}
		})
	}
}

func TestRecommendUnsupportedFormat(t *testing.T) {
	_, err := run(t, NewRecommendCmd(), "--by", "author", "--value", "x", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
}

func TestGenres(t *testing.T) {
	books, categories := writeSources(t)

	out, err := run(t, NewGenresCmd(), "--books", books, "--categories", categories, "--format", "csv")
	if err != nil {
		t.Fatalf("genres failed: %v", err)
	}
	if out != "genre,count\nFiction,5\n" {
		t.Errorf("Unexpected genres output: %q", out)
	}

	out, err = run(t, NewGenresCmd(), "--books", books, "--categories", categories, "--min-genre-count", "1", "--format", "json")
	if err != nil {
		t.Fatalf("genres failed: %v", err)
	}
	var counts []catalog.GenreCount
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("Failed to decode genres: %v", err)
	}
	if len(counts) != 2 || counts[0].Genre != "Fiction" || counts[1].Genre != "Poetry" {
		t.Errorf("Expected Fiction and Poetry, got %+v", counts)
	}
}

func TestGenreMapFlag(t *testing.T) {
	books, categories := writeSources(t)
	mapPath := filepath.Join(t.TempDir(), "genres.yaml")
	if err := os.WriteFile(mapPath, []byte("aliases:\n  Poetry: Fiction\n"), 0644); err != nil {
		t.Fatalf("Failed to create genre map: %v", err)
	}

	out, err := run(t, NewGenresCmd(), "--books", books, "--categories", categories, "--genre-map", mapPath, "--format", "csv")
	if err != nil {
		t.Fatalf("genres failed: %v", err)
	}
	if out != "genre,count\nFiction,6\n" {
		t.Errorf("Unexpected genres output: %q", out)
	}
}

func TestStats(t *testing.T) {
	books, categories := writeSources(t)

	out, err := run(t, NewStatsCmd(), "--books", books, "--categories", categories, "--format", "json")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	var summary Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.Books != 5 {
		t.Errorf("Expected 5 books, got %d", summary.Books)
	}
	if summary.Merge == nil || summary.Merge.Joined != 6 {
		t.Errorf("Expected 6 joined rows, got %+v", summary.Merge)
	}
	if summary.Filter.InfrequentRows != 1 {
		t.Errorf("Expected 1 infrequent row, got %d", summary.Filter.InfrequentRows)
	}
	if summary.Stats.C != 400 {
		t.Errorf("Expected C of 400, got %f", summary.Stats.C)
	}

	out, err = run(t, NewStatsCmd(), "--books", books, "--categories", categories)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "Records:             6 -> 5") {
		t.Errorf("Expected filter line in text summary, got:\n%s", out)
	}
}

func TestStrictFlag(t *testing.T) {
	dir := t.TempDir()
	books := filepath.Join(dir, "books.csv")
	bad := strings.Replace(booksCSV, "Emma,Jane Austen,4.0", "Emma,Jane Austen,four", 1)
	if err := os.WriteFile(books, []byte(bad), 0644); err != nil {
		t.Fatalf("Failed to create books file: %v", err)
	}
	_, categories := writeSources(t)

	if _, err := run(t, NewStatsCmd(), "--books", books, "--categories", categories, "--min-genre-count", "1"); err != nil {
		t.Errorf("Expected lenient build to succeed, got %v", err)
	}

	_, err := run(t, NewStatsCmd(), "--books", books, "--categories", categories, "--strict")
	if !errors.Is(err, catalog.ErrData) {
		t.Errorf("Expected ErrData in strict mode, got %v", err)
	}
}

func TestExportSnapshot(t *testing.T) {
	books, categories := writeSources(t)

	for _, ext := range []string{".parquet", ".jsonl"} {
		t.Run(ext, func(t *testing.T) {
			snapshot := filepath.Join(t.TempDir(), "books"+ext)

			out, err := run(t, NewExportCmd(), "--books", books, "--categories", categories, "--output", snapshot)
			if err != nil {
				t.Fatalf("export failed: %v", err)
			}
			if !strings.Contains(out, "Wrote 5 books") {
				t.Errorf("Unexpected export output: %q", out)
			}

			fromSources, err := run(t, NewRecommendCmd(), "--books", books, "--categories", categories,
				"--by", "genre", "--value", "Fiction", "--pages", "300-499", "--format", "json")
			if err != nil {
				t.Fatalf("recommend from sources failed: %v", err)
			}
			fromSnapshot, err := run(t, NewRecommendCmd(), "--snapshot", snapshot,
				"--by", "genre", "--value", "Fiction", "--pages", "300-499", "--format", "json")
			if err != nil {
				t.Fatalf("recommend from snapshot failed: %v", err)
			}

			if fromSnapshot != fromSources {
				t.Errorf("Snapshot results differ from sources:\n%s\nvs\n%s", fromSnapshot, fromSources)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	books, _ := writeSources(t)

	out, err := run(t, NewInspectCmd(), "--dataset", books, "--limit", "2", "--columns", "isbn,title")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	for _, want := range []string{
		"Loaded 2 rows",
		"Schema:  matches the books source",
		"ROW 2/2",
		"title:  Mort",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "authors:") {
		t.Errorf("Expected only selected columns, got:\n%s", out)
	}

	_, err = run(t, NewInspectCmd(), "--dataset", books, "--columns", "nope")
	if err == nil {
		t.Error("Expected error for unknown column")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected short, got %s", got)
	}
	if got := truncate("ééééééééééé", 6); got != "ééé..." {
		t.Errorf("Expected rune-safe truncation, got %s", got)
	}
}
