// Package catalog builds the immutable book table served to queries: it merges the
// two sources, normalizes genres, drops rare genres and computes ranking scores.
package catalog

import "github.com/lehigh-university-libraries/bookrec/internal/isbn"

// Book is one row of the final catalog.
type Book struct {
	ISBN10        string  `json:"isbn10" yaml:"isbn10" parquet:"isbn10"`
	Title         string  `json:"title" yaml:"title" parquet:"title"`
	Authors       string  `json:"authors" yaml:"authors" parquet:"authors"`
	AverageRating float64 `json:"average_rating" yaml:"average_rating" parquet:"average_rating"`
	RatingsCount  int     `json:"ratings_count" yaml:"ratings_count" parquet:"ratings_count"`
	NumPages      int     `json:"num_pages" yaml:"num_pages" parquet:"num_pages"`
	PublishedYear int     `json:"published_year" yaml:"published_year" parquet:"published_year"`
	Category      string  `json:"category" yaml:"category" parquet:"category"`
	Description   *string `json:"description,omitempty" yaml:"description,omitempty" parquet:"description,optional"`
	Thumbnail     *string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty" parquet:"thumbnail,optional"`

	// Derived during the build
	GenreFrequency int     `json:"genre_frequency" yaml:"genre_frequency" parquet:"genre_frequency"`
	BayesAverage   float64 `json:"bayes_average" yaml:"bayes_average" parquet:"bayes_average"` // ranking only, never shown as stars
	RoundedRating  int     `json:"rounded_rating" yaml:"rounded_rating" parquet:"rounded_rating"`
}

// ISBN13 returns the 978-prefixed form of the key, or "" if the key is not ten characters.
func (b *Book) ISBN13() string {
	return isbn.To13(b.ISBN10)
}

// GetDescription returns the description or "" when absent.
func (b *Book) GetDescription() string {
	if b.Description == nil {
		return ""
	}
	return *b.Description
}

// GetThumbnail returns the thumbnail URL or "" when absent.
func (b *Book) GetThumbnail() string {
	if b.Thumbnail == nil {
		return ""
	}
	return *b.Thumbnail
}
