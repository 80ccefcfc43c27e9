package catalog

import (
	"math"
	"slices"
)

// RatingQuantile is the ratings-count percentile used as the confidence constant C.
const RatingQuantile = 0.25

// Stats are the ranking constants, computed once over the filtered catalog.
type Stats struct {
	// C is the 25th percentile of ratings counts.
	C float64 `json:"c" yaml:"c"`
	// M is the mean average rating.
	M float64 `json:"m" yaml:"m"`
}

// Quantile returns the q-quantile of values using linear interpolation
// between closest ranks. values is not modified. Empty input yields 0.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// ComputeStats derives C and m from books.
func ComputeStats(books []Book) Stats {
	if len(books) == 0 {
		return Stats{}
	}
	counts := make([]float64, len(books))
	sum := 0.0
	for i, b := range books {
		counts[i] = float64(b.RatingsCount)
		sum += b.AverageRating
	}
	return Stats{
		C: Quantile(counts, RatingQuantile),
		M: sum / float64(len(books)),
	}
}

// BayesAverage shrinks rating toward m in proportion to how few ratings back it.
func BayesAverage(rating float64, count int, c, m float64) float64 {
	n := float64(count)
	if n+c == 0 {
		// Limit of the formula as both weights go to zero.
		return m
	}
	return (rating*n + c*m) / (n + c)
}

// RoundRating rounds to the nearest whole star, halves to even (2.5 -> 2, 3.5 -> 4).
func RoundRating(rating float64) int {
	return int(math.RoundToEven(rating))
}

// Score returns a copy of books with BayesAverage and RoundedRating set, and
// the frozen stats every book was scored with.
func Score(books []Book) ([]Book, Stats) {
	stats := ComputeStats(books)
	out := make([]Book, len(books))
	for i, b := range books {
		b.BayesAverage = BayesAverage(b.AverageRating, b.RatingsCount, stats.C, stats.M)
		b.RoundedRating = RoundRating(b.AverageRating)
		out[i] = b
	}
	return out, stats
}
