package search

import (
	"sort"
	"strings"

	"marketplace-search-service/internal/domain"
)

// Keyword relevance scores relative to the normalized service phrase.
const (
	relevanceExact    = 1000
	relevanceContains = 200
)

// Relevance scores how well a product name matches the service phrase: exact
// normalized match, substring containment, or nothing.
func Relevance(name, servicePhrase string) int {
	if servicePhrase == "" {
		return 0
	}
	normalized := Normalize(name)
	if normalized == servicePhrase {
		return relevanceExact
	}
	if strings.Contains(normalized, servicePhrase) {
		return relevanceContains
	}
	return 0
}

// Rank produces the final deterministic ordering: plan priority tier, then
// keyword relevance, then vendor rating, then recency, all descending. The
// sort is stable, so products with fully equal keys keep their fetch order
// (which is itself recency-ordered).
func Rank(products []domain.Product, priorities map[int64]int, servicePhrase string) []domain.Product {
	type scored struct {
		product   domain.Product
		plan      int
		relevance int
	}

	items := make([]scored, len(products))
	for i, p := range products {
		items[i] = scored{
			product:   p,
			plan:      priorities[p.VendorID],
			relevance: Relevance(p.Name, servicePhrase),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.plan != b.plan {
			return a.plan > b.plan
		}
		if a.relevance != b.relevance {
			return a.relevance > b.relevance
		}
		if a.product.Vendor.Rating != b.product.Vendor.Rating {
			return a.product.Vendor.Rating > b.product.Vendor.Rating
		}
		return a.product.CreatedAt.After(b.product.CreatedAt)
	})

	ranked := make([]domain.Product, len(items))
	for i, it := range items {
		ranked[i] = it.product
	}
	return ranked
}
