package query

import (
	"sort"
	"strings"
)

// MinSuggestionSimilarity is the lowest similarity a genre needs to be offered
// as a correction.
const MinSuggestionSimilarity = 0.6

// SuggestGenres returns up to n catalog genres that look like value, most
// similar first. Comparison ignores case and surrounding space. An exact
// genre match is not a suggestion and yields nothing.
func (e *Engine) SuggestGenres(value string, n int) []string {
	value = strings.TrimSpace(value)
	if value == "" || n <= 0 {
		return nil
	}
	if _, ok := e.byGenre[value]; ok {
		return nil
	}

	type scored struct {
		genre      string
		similarity float64
	}

	needle := fold(value)
	var matches []scored
	for _, g := range e.genres {
		sim := similarity(needle, fold(g))
		if sim >= MinSuggestionSimilarity {
			matches = append(matches, scored{genre: g, similarity: sim})
		}
	}

	// genres are already sorted, so a stable sort breaks ties alphabetically
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})

	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches[:min(n, len(matches))] {
		out = append(out, m.genre)
	}
	return out
}

// similarity calculates a ratio (0.0 to 1.0) from the Levenshtein distance
// between two strings, counted in runes.
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(r1, r2)
	return 1.0 - float64(distance)/float64(max(len(r1), len(r2)))
}

// levenshteinDistance keeps only the previous row of the edit matrix.
func levenshteinDistance(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
