package store

import (
	"context"

	"marketplace-search-service/internal/domain"
)

// TextFilterStrategy identifies one rung of the degrading text-search ladder.
// The backing schema does not guarantee every optional text column exists
// uniformly, so the fetcher retries with progressively fewer OR clauses
// instead of hard-failing a search over a missing column.
type TextFilterStrategy int

const (
	// FilterSlugNameCategoryDescription matches category_slug equality OR
	// name/category/description phrase containment.
	FilterSlugNameCategoryDescription TextFilterStrategy = iota
	// FilterSlugNameCategory drops the description clause.
	FilterSlugNameCategory
	// FilterSlugName drops the category clause.
	FilterSlugName
	// FilterSlugOnly is category_slug equality alone.
	FilterSlugOnly
)

// TextFilterLadder is the ordered list of strategies tried for a free-text
// search, most permissive first.
var TextFilterLadder = []TextFilterStrategy{
	FilterSlugNameCategoryDescription,
	FilterSlugNameCategory,
	FilterSlugName,
	FilterSlugOnly,
}

// CategoryStorer defines read operations over the three-level category store.
type CategoryStorer interface {
	GetMicroCategoryBySlug(ctx context.Context, slug string) (*domain.MicroCategory, error)
	GetSubCategoryBySlug(ctx context.Context, slug string) (*domain.SubCategory, error)
	GetHeadCategoryBySlug(ctx context.Context, slug string) (*domain.HeadCategory, error)
	// SearchCategoryCandidates returns slug/name pairs from all three category
	// tables whose slug or name contains token. limit caps each table's rows.
	SearchCategoryCandidates(ctx context.Context, token string, limit int) ([]domain.Candidate, error)
}

// LocationStorer defines read operations over the state/city store.
type LocationStorer interface {
	ListStates(ctx context.Context) ([]domain.State, error)
	ListCities(ctx context.Context) ([]domain.City, error)
}

// ProductStorer defines read operations over the product store.
type ProductStorer interface {
	// ListProductsByCategory fetches ACTIVE products whose hierarchy column for
	// kind equals categoryID, vendor joined and vendor-active only.
	ListProductsByCategory(ctx context.Context, kind domain.ContextKind, categoryID int64, limit int) ([]domain.Product, error)

	// ListProductsByText fetches ACTIVE products matching one rung of the
	// degrading text-search ladder for the given slug and phrase.
	ListProductsByText(ctx context.Context, strategy TextFilterStrategy, slug, phrase string, limit int) ([]domain.Product, error)

	// IsUnsupportedFilter reports whether err is a structural rejection of a
	// filter shape (e.g. a missing optional column), i.e. whether retrying with
	// a narrower strategy makes sense. Implementations own the error sniffing
	// so callers never parse error text.
	IsUnsupportedFilter(err error) bool

	// SearchProductCandidates returns slug/name pairs of ACTIVE products whose
	// category slug, category text or name contains token.
	SearchProductCandidates(ctx context.Context, token string, limit int) ([]domain.Candidate, error)
}

// PlanStorer resolves vendors to their active subscription plan names.
type PlanStorer interface {
	GetVendorPlanNames(ctx context.Context, vendorIDs []int64) (map[int64]string, error)
}
