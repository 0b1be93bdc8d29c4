package search

import (
	"context"
	"fmt"
	"log"
	"time"

	"marketplace-search-service/internal/domain"
	"marketplace-search-service/internal/store"
)

// maxCandidates caps how many rows a single fetch may return before
// location filtering and ranking.
const maxCandidates = 300

// Query is the path-derived input of one search request. StateSlug and
// CitySlug are optional; empty means unscoped at that level.
type Query struct {
	ServiceSlug string
	StateSlug   string
	CitySlug    string
}

// Engine runs the full resolution pipeline for one search request:
// location resolution, category context resolution, candidate fetch,
// location filtering, plan enrichment, ranking, and — when everything came
// back empty — a single auto-correction attempt.
type Engine struct {
	contexts  *ContextResolver
	locations *LocationResolver
	plans     *PlanResolver
	corrector *AutoCorrector
	products  store.ProductStorer
}

// NewEngine wires the pipeline over the given stores. locationTTL bounds the
// age of the cached state/city snapshot.
func NewEngine(
	categories store.CategoryStorer,
	products store.ProductStorer,
	plans store.PlanStorer,
	locations store.LocationStorer,
	locationTTL time.Duration,
) *Engine {
	return &Engine{
		contexts:  NewContextResolver(categories),
		locations: NewLocationResolver(locations, locationTTL),
		plans:     NewPlanResolver(plans),
		corrector: NewAutoCorrector(categories, products),
		products:  products,
	}
}

// Search executes one query end to end. It returns either a ranked product
// list or a redirect instruction toward a corrected slug. Failures that the
// pipeline cannot degrade around propagate as the underlying store error,
// but only after a last-resort auto-correction attempt.
func (e *Engine) Search(ctx context.Context, q Query) (*domain.SearchResult, error) {
	budget := NewAttemptBudget()

	sc, err := e.resolveSearchContext(ctx, q)
	if err != nil {
		return e.recoverOrFail(ctx, budget, q, err)
	}

	products, err := e.fetchCandidates(ctx, sc)
	if err != nil {
		return e.recoverOrFail(ctx, budget, q, err)
	}

	matched := products
	if sc.Scoped() {
		matched = products[:0:0]
		for i := range products {
			if MatchesLocation(&products[i], sc.StateID, sc.CityID, sc.StateCityIDs) {
				matched = append(matched, products[i])
			}
		}
	}

	if len(matched) == 0 {
		correction, corrErr := e.corrector.TryAutoCorrect(ctx, budget, q.ServiceSlug)
		if corrErr != nil {
			log.Printf("WARN: auto-correct attempt failed: %v", corrErr)
		}
		if correction != nil {
			return &domain.SearchResult{Products: []domain.Product{}, Redirect: correction}, nil
		}
		return &domain.SearchResult{Products: []domain.Product{}}, nil
	}

	vendorIDs := uniqueVendorIDs(matched)
	priorities, planNames := e.plans.ResolvePlanPriorities(ctx, vendorIDs)
	for i := range matched {
		matched[i].Vendor.PlanName = planNames[matched[i].VendorID]
	}

	ranked := Rank(matched, priorities, sc.ServicePhrase)
	return &domain.SearchResult{Products: ranked}, nil
}

// resolveSearchContext builds the per-request SearchContext: category
// classification plus resolved location scope.
func (e *Engine) resolveSearchContext(ctx context.Context, q Query) (*domain.SearchContext, error) {
	sc, err := e.contexts.ResolveContext(ctx, q.ServiceSlug)
	if err != nil {
		return nil, err
	}

	state, city := e.locations.ResolveLocation(ctx, q.StateSlug, q.CitySlug)
	if state != nil {
		sc.StateID = &state.ID
		sc.StateCityIDs = e.locations.ExpandStateToCityIDs(ctx, state.ID)
	}
	if city != nil {
		sc.CityID = &city.ID
	}
	return sc, nil
}

// fetchCandidates retrieves products for a resolved context. Free-text
// contexts walk the degrading filter ladder: each structurally rejected
// strategy falls through to the next narrower one, and only the last error
// surfaces when every rung failed.
func (e *Engine) fetchCandidates(ctx context.Context, sc *domain.SearchContext) ([]domain.Product, error) {
	if sc.Kind != domain.ContextText {
		return e.products.ListProductsByCategory(ctx, sc.Kind, sc.CategoryID, maxCandidates)
	}

	var lastErr error
	for _, strategy := range store.TextFilterLadder {
		products, err := e.products.ListProductsByText(ctx, strategy, sc.RawSlug, sc.ServicePhrase, maxCandidates)
		if err == nil {
			return products, nil
		}
		if !e.products.IsUnsupportedFilter(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("search: every text filter strategy was rejected: %w", lastErr)
}

// recoverOrFail attempts auto-correction as a last resort after a pipeline
// failure; without an accepted correction the original error propagates.
func (e *Engine) recoverOrFail(ctx context.Context, budget *AttemptBudget, q Query, cause error) (*domain.SearchResult, error) {
	correction, corrErr := e.corrector.TryAutoCorrect(ctx, budget, q.ServiceSlug)
	if corrErr != nil {
		log.Printf("WARN: auto-correct attempt after failure also failed: %v", corrErr)
	}
	if correction != nil {
		return &domain.SearchResult{Products: []domain.Product{}, Redirect: correction}, nil
	}
	return nil, cause
}

func uniqueVendorIDs(products []domain.Product) []int64 {
	seen := make(map[int64]struct{}, len(products))
	ids := make([]int64, 0, len(products))
	for i := range products {
		id := products[i].VendorID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
