package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/lehigh-university-libraries/bookrec/internal/isbn"
	"github.com/lehigh-university-libraries/bookrec/internal/query"
)

// DefaultLimit applies when a recommendation request omits limit.
const DefaultLimit = 10

// MaxSuggestions caps the genre corrections offered for an unknown genre.
const MaxSuggestions = 3

// GenresResponse lists the selectable genres.
type GenresResponse struct {
	Genres []catalog.GenreCount `json:"genres"`
}

// RecommendationsResponse echoes the accepted request with its results.
type RecommendationsResponse struct {
	Request     query.Request  `json:"request"`
	Count       int            `json:"count"`
	Books       []catalog.Book `json:"books"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// BookResponse adds derived identifiers to a single book.
type BookResponse struct {
	catalog.Book
	ISBN13 string `json:"isbn13,omitempty"`
}

// HandleGenres handles GET /api/genres.
func (h *Handler) HandleGenres(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, GenresResponse{Genres: h.catalog.GenreCounts()})
}

// HandleRecommendations handles GET /api/recommendations.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeValidationError(w, query.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = n
	}

	req, err := query.ParseRequest(q.Get("mode"), q.Get("value"), q.Get("page_bucket"), limit)
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			h.writeValidationError(w, verr)
			return
		}
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	books := h.engine.Recommend(req)
	resp := RecommendationsResponse{
		Request: req,
		Count:   len(books),
		Books:   books,
	}
	if len(books) == 0 && req.Mode == query.ModeGenre {
		resp.Suggestions = h.engine.SuggestGenres(req.Value, MaxSuggestions)
	}
	h.writeJSON(w, resp)
}

// HandleBook handles GET /api/books/{isbn}. Hyphenated ISBNs are accepted.
func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	key := isbn.Normalize(chi.URLParam(r, "isbn"))

	book, ok := h.catalog.Lookup(key)
	if !ok {
		h.writeError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, BookResponse{Book: book, ISBN13: book.ISBN13()})
}

// HandleHealthcheck handles GET /healthcheck.
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK"))
}
