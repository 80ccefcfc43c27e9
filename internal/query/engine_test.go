package query

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	books := []catalog.Book{
		{ISBN10: "0000000001", Title: "Popular Joke Book", Authors: "Terry Pratchett", Category: "Comedy", AverageRating: 4.3, RatingsCount: 5000, NumPages: 250},
		{ISBN10: "0000000002", Title: "Obscure Joke Book", Authors: "Terry Pratchett/Neil Gaiman", Category: "Humorous fiction", AverageRating: 5.0, RatingsCount: 1, NumPages: 280},
		{ISBN10: "0000000003", Title: "Long Joke Book", Authors: "P.G. Wodehouse", Category: "Humor", AverageRating: 4.1, RatingsCount: 900, NumPages: 620},
		{ISBN10: "0000000004", Title: "Mid Joke Book", Authors: "Douglas Adams", Category: "Humor", AverageRating: 4.2, RatingsCount: 3000, NumPages: 350},
		{ISBN10: "0000000005", Title: "Another Long One", Authors: "Douglas Adams", Category: "Comedy", AverageRating: 3.9, RatingsCount: 400, NumPages: 500},
		{ISBN10: "0000000006", Title: "Tie A", Authors: "Ursula K. Le Guin", Category: "Fiction", AverageRating: 4.0, RatingsCount: 100, NumPages: 299},
		{ISBN10: "0000000007", Title: "Tie B", Authors: "Ursula K. Le Guin", Category: "Fiction", AverageRating: 4.0, RatingsCount: 100, NumPages: 300},
		{ISBN10: "0000000008", Title: "Tie C", Authors: "URSULA K. LE GUIN", Category: "Fiction", AverageRating: 4.0, RatingsCount: 100, NumPages: 499},
		{ISBN10: "0000000009", Title: "Zero Ratings", Authors: "Gabriel García Márquez", Category: "Fiction", AverageRating: 0, RatingsCount: 0, NumPages: 417},
		{ISBN10: "0000000010", Title: "Classic", Authors: "Gabriel Garcia Marquez", Category: "Fiction", AverageRating: 4.1, RatingsCount: 700, NumPages: 650},
	}

	c, err := catalog.FromBooks(books, catalog.DefaultOptions())
	require.NoError(t, err)
	return c
}

func isbns(books []catalog.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ISBN10
	}
	return out
}

func TestRecommendByGenre(t *testing.T) {
	e := NewEngine(testCatalog(t))

	res := e.Recommend(Request{Mode: ModeGenre, Value: "Humor", PageBucket: PagesUnder300, Limit: 10})
	// The five-star book with one rating ranks below the well-reviewed one.
	assert.Equal(t, []string{"0000000001", "0000000002"}, isbns(res))

	res = e.Recommend(Request{Mode: ModeGenre, Value: "Humor", PageBucket: Pages500Plus, Limit: 10})
	assert.ElementsMatch(t, []string{"0000000003", "0000000005"}, isbns(res))

	res = e.Recommend(Request{Mode: ModeGenre, Value: "humor", PageBucket: Pages500Plus, Limit: 10})
	assert.Empty(t, res, "genre match is exact")
}

func TestRecommendByAuthor(t *testing.T) {
	e := NewEngine(testCatalog(t))

	res := e.Recommend(Request{Mode: ModeAuthor, Value: "pratchett", PageBucket: PagesUnder300, Limit: 10})
	assert.Equal(t, []string{"0000000001", "0000000002"}, isbns(res))

	res = e.Recommend(Request{Mode: ModeAuthor, Value: "le guin", PageBucket: Pages300To499, Limit: 10})
	assert.Equal(t, []string{"0000000007", "0000000008"}, isbns(res), "ties keep catalog order")

	res = e.Recommend(Request{Mode: ModeAuthor, Value: "MÁRQUEZ", PageBucket: Pages300To499, Limit: 10})
	assert.Equal(t, []string{"0000000009"}, isbns(res))

	res = e.Recommend(Request{Mode: ModeAuthor, Value: "K.", PageBucket: PagesUnder300, Limit: 10})
	assert.Equal(t, []string{"0000000006"}, isbns(res), "substring is literal, not a pattern")
}

func TestRecommendEmptyValue(t *testing.T) {
	e := NewEngine(testCatalog(t))

	for _, value := range []string{"", "   "} {
		res := e.Recommend(Request{Mode: ModeAuthor, Value: value, PageBucket: PagesUnder300, Limit: 10})
		assert.NotNil(t, res)
		assert.Empty(t, res)

		res = e.Recommend(Request{Mode: ModeGenre, Value: value, PageBucket: PagesUnder300, Limit: 10})
		assert.Empty(t, res)
	}
}

func TestRecommendZeroLimit(t *testing.T) {
	e := NewEngine(testCatalog(t))

	res := e.Recommend(Request{Mode: ModeGenre, Value: "Humor", PageBucket: Pages500Plus, Limit: 0})
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestRecommendTruncates(t *testing.T) {
	e := NewEngine(testCatalog(t))

	res := e.Recommend(Request{Mode: ModeGenre, Value: "Fiction", PageBucket: Pages300To499, Limit: 2})
	assert.Equal(t, []string{"0000000007", "0000000008"}, isbns(res))
}

func TestRecommendNoMatch(t *testing.T) {
	e := NewEngine(testCatalog(t))

	res := e.Recommend(Request{Mode: ModeAuthor, Value: "Nobody", PageBucket: Pages500Plus, Limit: 10})
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

// Results must equal filtering the catalog and stable-sorting by score.
func TestRecommendMatchesReference(t *testing.T) {
	c := testCatalog(t)
	e := NewEngine(c)

	buckets := []PageBucket{PagesUnder300, Pages300To499, Pages500Plus}
	values := map[Mode][]string{
		ModeAuthor: {"a", "douglas", "gabriel", "e"},
		ModeGenre:  c.Genres(),
	}

	for mode, vals := range values {
		for _, value := range vals {
			for _, bucket := range buckets {
				for _, limit := range []int{1, 3, 1000} {
					req := Request{Mode: mode, Value: value, PageBucket: bucket, Limit: limit}
					name := fmt.Sprintf("%s/%s/%s/%d", mode, value, bucket, limit)

					got := e.Recommend(req)
					want := reference(c, req)
					assert.Equal(t, isbns(want), isbns(got), name)

					for i := 1; i < len(got); i++ {
						assert.GreaterOrEqual(t, got[i-1].BayesAverage, got[i].BayesAverage, name)
					}
				}
			}
		}
	}
}

func reference(c *catalog.Catalog, req Request) []catalog.Book {
	var out []catalog.Book
	for _, b := range c.Books() {
		var match bool
		switch req.Mode {
		case ModeAuthor:
			match = strings.Contains(strings.ToLower(b.Authors), strings.ToLower(req.Value))
		case ModeGenre:
			match = b.Category == req.Value
		}
		if match && req.PageBucket.Contains(b.NumPages) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BayesAverage > out[j].BayesAverage })
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out
}

func TestPageBucketContains(t *testing.T) {
	tests := []struct {
		bucket   PageBucket
		pages    int
		expected bool
	}{
		{PagesUnder300, 0, true},
		{PagesUnder300, 299, true},
		{PagesUnder300, 300, false},
		{Pages300To499, 300, true},
		{Pages300To499, 499, true},
		{Pages300To499, 500, false},
		{Pages500Plus, 499, false},
		{Pages500Plus, 500, true},
		{PageBucket("1000+"), 1500, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.bucket.Contains(tt.pages), "%s contains %d", tt.bucket, tt.pages)
	}
}
