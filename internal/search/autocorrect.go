package search

import (
	"context"
	"log"

	"marketplace-search-service/internal/domain"
	"marketplace-search-service/internal/store"
)

const (
	// minCorrectableLen rejects inputs too short to correct reliably.
	minCorrectableLen = 4
	// maxTokens caps how many slug tokens seed the candidate search.
	maxTokens = 4
	// minTokenLen drops tokens too short to be selective.
	minTokenLen = 3
	// candidateRowLimit caps pool growth per backing query.
	candidateRowLimit = 800
)

// AttemptBudget is a one-shot token limiting auto-correction to a single
// attempt per request, successful or not. Passing it explicitly keeps the
// engine free of mutable per-request state outside the pipeline.
type AttemptBudget struct {
	spent bool
}

// NewAttemptBudget returns an unspent budget.
func NewAttemptBudget() *AttemptBudget {
	return &AttemptBudget{}
}

// Spend consumes the budget. It returns true exactly once.
func (b *AttemptBudget) Spend() bool {
	if b == nil || b.spent {
		return false
	}
	b.spent = true
	return true
}

// AutoCorrector proposes a corrected query slug when a search came back
// empty, by scanning category and product tables for near-matching slugs and
// names under Levenshtein distance.
type AutoCorrector struct {
	categories store.CategoryStorer
	products   store.ProductStorer
}

// NewAutoCorrector creates an AutoCorrector over the given stores.
func NewAutoCorrector(categories store.CategoryStorer, products store.ProductStorer) *AutoCorrector {
	return &AutoCorrector{categories: categories, products: products}
}

// maxCorrectionDistance is the acceptance threshold for a candidate:
// max(2, min(6, ceil(len * 0.3))).
func maxCorrectionDistance(slugLen int) int {
	d := (3*slugLen + 9) / 10 // ceil(slugLen * 0.3)
	if d > 6 {
		d = 6
	}
	if d < 2 {
		d = 2
	}
	return d
}

// TryAutoCorrect searches for the closest known slug or name to wrongSlug and
// returns a redirect instruction when an acceptable candidate exists. It
// consumes budget up front, so a request never corrects twice. A nil result
// with nil error means "nothing to suggest".
func (a *AutoCorrector) TryAutoCorrect(ctx context.Context, budget *AttemptBudget, wrongSlug string) (*domain.Correction, error) {
	if !budget.Spend() {
		return nil, nil
	}

	fuzzyInput := NormalizeFuzzy(wrongSlug)
	if len(fuzzyInput) < minCorrectableLen {
		return nil, nil
	}

	pool := a.collectCandidates(ctx, wrongSlug)
	if len(pool) == 0 {
		return nil, nil
	}

	var best *domain.Candidate
	bestDist := 0
	for i := range pool {
		c := &pool[i]
		dist := Levenshtein(fuzzyInput, NormalizeFuzzy(c.Slug))
		if byName := Levenshtein(fuzzyInput, NormalizeFuzzy(c.Name)); byName < dist {
			dist = byName
		}
		// Strictly-smaller wins; ties keep the earlier candidate, so the
		// outcome is deterministic for a fixed store.
		if best == nil || dist < bestDist {
			best = c
			bestDist = dist
		}
	}

	if best == nil || best.Slug == wrongSlug || bestDist > maxCorrectionDistance(len(wrongSlug)) {
		return nil, nil
	}

	correction := &domain.Correction{
		OriginalSlug: wrongSlug,
		Slug:         best.Slug,
		Name:         best.Name,
		Distance:     bestDist,
	}
	log.Printf("INFO: auto-correcting query %q to %q (distance %d)", wrongSlug, best.Slug, bestDist)
	return correction, nil
}

// collectCandidates accumulates a slug-deduplicated candidate pool from the
// category tables and the product table for each usable token of wrongSlug.
// Source failures degrade to a smaller pool; auto-correct is best effort.
func (a *AutoCorrector) collectCandidates(ctx context.Context, wrongSlug string) []domain.Candidate {
	seen := make(map[string]struct{})
	var pool []domain.Candidate

	add := func(candidates []domain.Candidate) {
		for _, c := range candidates {
			if c.Slug == "" {
				continue
			}
			if _, ok := seen[c.Slug]; ok {
				continue
			}
			seen[c.Slug] = struct{}{}
			pool = append(pool, c)
		}
	}

	for _, token := range slugTokens(wrongSlug, minTokenLen, maxTokens) {
		fromCategories, err := a.categories.SearchCategoryCandidates(ctx, token, candidateRowLimit)
		if err != nil {
			log.Printf("WARN: category candidate search for token %q failed: %v", token, err)
		} else {
			add(fromCategories)
		}

		fromProducts, err := a.products.SearchProductCandidates(ctx, token, candidateRowLimit)
		if err != nil {
			log.Printf("WARN: product candidate search for token %q failed: %v", token, err)
		} else {
			add(fromProducts)
		}
	}
	return pool
}
