package search

import "marketplace-search-service/internal/domain"

// Filters are the optional query-string constraints applied after ranking.
// Zero values mean "not constrained".
type Filters struct {
	MinPrice     float64
	MaxPrice     float64
	MinRating    float64
	VerifiedOnly bool
	InStockOnly  bool
}

// Empty reports whether no constraint is set.
func (f Filters) Empty() bool {
	return f.MinPrice == 0 && f.MaxPrice == 0 && f.MinRating == 0 &&
		!f.VerifiedOnly && !f.InStockOnly
}

// ApplyFilters drops products failing any set constraint, preserving the
// ranked order of the rest.
func ApplyFilters(products []domain.Product, f Filters) []domain.Product {
	if f.Empty() {
		return products
	}
	kept := products[:0:0]
	for i := range products {
		p := &products[i]
		price := p.PriceValue()
		if f.MinPrice > 0 && price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && price > f.MaxPrice {
			continue
		}
		if f.MinRating > 0 && p.Vendor.Rating < f.MinRating {
			continue
		}
		if f.VerifiedOnly && !p.Vendor.IsVerified {
			continue
		}
		if f.InStockOnly && !p.InStock {
			continue
		}
		kept = append(kept, *p)
	}
	return kept
}
