package catalog

import (
	"log/slog"
	"sort"

	"github.com/lehigh-university-libraries/bookrec/internal/genre"
)

// DefaultMinGenreCount is the smallest genre kept by the frequency filter.
const DefaultMinGenreCount = 5

// GenreCount pairs a genre with the number of catalog books bearing it.
type GenreCount struct {
	Genre string `json:"genre" yaml:"genre"`
	Count int    `json:"count" yaml:"count"`
}

// FilterReport summarizes the frequency filter.
type FilterReport struct {
	MinGenreCount  int `json:"min_genre_count" yaml:"min_genre_count"`
	RecordsIn      int `json:"records_in" yaml:"records_in"`
	RecordsOut     int `json:"records_out" yaml:"records_out"`
	GenresIn       int `json:"genres_in" yaml:"genres_in"`
	GenresOut      int `json:"genres_out" yaml:"genres_out"`
	MissingGenre   int `json:"missing_genre" yaml:"missing_genre"`
	InfrequentRows int `json:"infrequent_rows" yaml:"infrequent_rows"`
}

// NormalizeGenres returns a copy of books with every category passed through m.
func NormalizeGenres(books []Book, m *genre.Mapping) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		b.Category = m.Normalize(b.Category)
		out[i] = b
	}
	return out
}

// CountGenres counts books per category, missing categories included.
func CountGenres(books []Book) map[string]int {
	counts := make(map[string]int)
	for _, b := range books {
		counts[b.Category]++
	}
	return counts
}

// FilterByFrequency keeps books whose category is present and shared by at
// least minCount books of the whole input. Kept books get GenreFrequency set.
// It also returns the surviving genres in ascending order.
func FilterByFrequency(books []Book, minCount int) ([]Book, []string, FilterReport) {
	counts := CountGenres(books)

	report := FilterReport{
		MinGenreCount: minCount,
		RecordsIn:     len(books),
		GenresIn:      len(counts),
	}

	kept := make([]Book, 0, len(books))
	surviving := make(map[string]bool)
	for _, b := range books {
		freq := counts[b.Category]
		if isMissing(b.Category) {
			report.MissingGenre++
			continue
		}
		if freq < minCount {
			report.InfrequentRows++
			continue
		}
		b.GenreFrequency = freq
		kept = append(kept, b)
		surviving[b.Category] = true
	}

	genres := make([]string, 0, len(surviving))
	for g := range surviving {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	report.RecordsOut = len(kept)
	report.GenresOut = len(genres)

	slog.Info("Filtered infrequent genres",
		"min_count", minCount,
		"records_in", report.RecordsIn,
		"records_out", report.RecordsOut,
		"genres_in", report.GenresIn,
		"genres_out", report.GenresOut)

	return kept, genres, report
}
