package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"marketplace-search-service/internal/domain"
	"marketplace-search-service/internal/search"
)

// SearchHandler exposes the search pipeline over HTTP.
type SearchHandler struct {
	engine   *search.Engine
	validate *validator.Validate
}

// NewSearchHandler creates a SearchHandler around an engine.
func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{
		engine:   engine,
		validate: validator.New(),
	}
}

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// searchFilterInput carries the optional query-string filters, validated
// before they reach the pipeline.
type searchFilterInput struct {
	MinPrice  float64 `validate:"gte=0"`
	MaxPrice  float64 `validate:"gte=0"`
	MinRating float64 `validate:"gte=0,lte=5"`
}

// searchResponse is the wire shape of a search result. On auto-correction
// Data is empty and Redirect names the corrected slug.
type searchResponse struct {
	Data     []domain.Product   `json:"data"`
	Total    int                `json:"total"`
	Redirect *domain.Correction `json:"redirect,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// Search handles GET /api/v1/search/{serviceSlug}[/{stateSlug}[/{citySlug}]].
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := search.Query{
		ServiceSlug: chi.URLParam(r, "serviceSlug"),
		StateSlug:   chi.URLParam(r, "stateSlug"),
		CitySlug:    chi.URLParam(r, "citySlug"),
	}
	if q.ServiceSlug == "" {
		respondWithError(w, http.StatusBadRequest, "Missing service slug")
		return
	}

	filters, input, err := parseFilters(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	result, err := h.engine.Search(r.Context(), q)
	if err != nil {
		// Failures collapse to an empty result list for the user; the cause
		// stays in the server log.
		log.Printf("ERROR: search for %q failed: %v", q.ServiceSlug, err)
		respondWithJSON(w, http.StatusOK, searchResponse{Data: []domain.Product{}})
		return
	}

	if result.Redirect != nil {
		respondWithJSON(w, http.StatusOK, searchResponse{
			Data:     []domain.Product{},
			Redirect: result.Redirect,
			Message: fmt.Sprintf("Showing results for %q instead of %q",
				result.Redirect.Slug, result.Redirect.OriginalSlug),
		})
		return
	}

	products := search.ApplyFilters(result.Products, filters)
	if products == nil {
		products = []domain.Product{}
	}
	respondWithJSON(w, http.StatusOK, searchResponse{Data: products, Total: len(products)})
}

func parseFilters(r *http.Request) (search.Filters, searchFilterInput, error) {
	var f search.Filters
	var input searchFilterInput
	q := r.URL.Query()

	parseFloat := func(key string) (float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value", key)
		}
		return v, nil
	}

	var err error
	if f.MinPrice, err = parseFloat("min_price"); err != nil {
		return f, input, err
	}
	if f.MaxPrice, err = parseFloat("max_price"); err != nil {
		return f, input, err
	}
	if f.MinRating, err = parseFloat("min_rating"); err != nil {
		return f, input, err
	}
	if f.MinPrice > 0 && f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return f, input, fmt.Errorf("min_price cannot exceed max_price")
	}

	if raw := q.Get("verified"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, input, fmt.Errorf("invalid verified value: must be true or false")
		}
		f.VerifiedOnly = b
	}
	if raw := q.Get("in_stock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, input, fmt.Errorf("invalid in_stock value: must be true or false")
		}
		f.InStockOnly = b
	}

	input = searchFilterInput{MinPrice: f.MinPrice, MaxPrice: f.MaxPrice, MinRating: f.MinRating}
	return f, input, nil
}

// RegisterRoutes sets up the HTTP routes for the service.
func (h *SearchHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/search", func(r chi.Router) {
		r.Get("/{serviceSlug}", h.Search)
		r.Get("/{serviceSlug}/{stateSlug}", h.Search)
		r.Get("/{serviceSlug}/{stateSlug}/{citySlug}", h.Search)
	})
}
