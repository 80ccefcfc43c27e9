// Package query answers recommendation requests over a built catalog.
package query

import (
	"iter"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Engine serves requests from an immutable catalog. It holds no mutable state
// after construction and may be shared between goroutines.
type Engine struct {
	// ranked is the catalog stably sorted by BayesAverage, highest first.
	// Filtering it preserves rank order, so queries never sort.
	ranked  []catalog.Book
	authors []string // folded authors, parallel to ranked
	byGenre map[string][]int
	genres  []string
}

// NewEngine indexes the catalog for querying.
func NewEngine(c *catalog.Catalog) *Engine {
	ranked := c.Books()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BayesAverage > ranked[j].BayesAverage
	})

	e := &Engine{
		ranked:  ranked,
		authors: make([]string, len(ranked)),
		byGenre: make(map[string][]int),
		genres:  c.Genres(),
	}
	for i, b := range ranked {
		e.authors[i] = fold(b.Authors)
		e.byGenre[b.Category] = append(e.byGenre[b.Category], i)
	}
	return e
}

// Recommend returns up to req.Limit books matching the request, best first.
// An empty value or zero limit yields an empty result, never the whole catalog.
// The request must already be validated.
func (e *Engine) Recommend(req Request) []catalog.Book {
	results := []catalog.Book{}

	value := strings.TrimSpace(req.Value)
	if value == "" || req.Limit <= 0 {
		return results
	}

	for i := range e.candidates(req.Mode, value) {
		b := e.ranked[i]
		if !req.PageBucket.Contains(b.NumPages) {
			continue
		}
		results = append(results, b)
		if len(results) == req.Limit {
			break
		}
	}

	return results
}

// candidates yields positions in ranked that match mode and value, in rank order.
func (e *Engine) candidates(mode Mode, value string) iter.Seq[int] {
	return func(yield func(int) bool) {
		switch mode {
		case ModeAuthor:
			needle := fold(value)
			for i, authors := range e.authors {
				if strings.Contains(authors, needle) && !yield(i) {
					return
				}
			}
		case ModeGenre:
			for _, i := range e.byGenre[value] {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// fold prepares text for case-insensitive comparison.
func fold(s string) string {
	// Casers carry state and are not safe to share.
	return cases.Fold().String(norm.NFC.String(s))
}
