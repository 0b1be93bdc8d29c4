package search

import (
	"context"

	"marketplace-search-service/internal/domain"
	"marketplace-search-service/internal/store"
)

// fakeStore is an in-memory implementation of every store interface the
// engine consumes, for pipeline tests without a database.
type fakeStore struct {
	micro map[string]domain.MicroCategory
	sub   map[string]domain.SubCategory
	head  map[string]domain.HeadCategory

	productsByMicro map[int64][]domain.Product
	productsBySub   map[int64][]domain.Product
	productsByHead  map[int64][]domain.Product

	textProducts map[store.TextFilterStrategy][]domain.Product
	textErrors   map[store.TextFilterStrategy]error

	categoryCandidates []domain.Candidate
	productCandidates  []domain.Candidate

	states []domain.State
	cities []domain.City

	planNames map[int64]string
	planErr   error

	listStatesCalls int
	listCitiesCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		micro:           map[string]domain.MicroCategory{},
		sub:             map[string]domain.SubCategory{},
		head:            map[string]domain.HeadCategory{},
		productsByMicro: map[int64][]domain.Product{},
		productsBySub:   map[int64][]domain.Product{},
		productsByHead:  map[int64][]domain.Product{},
		textProducts:    map[store.TextFilterStrategy][]domain.Product{},
		textErrors:      map[store.TextFilterStrategy]error{},
		planNames:       map[int64]string{},
	}
}

func (f *fakeStore) GetMicroCategoryBySlug(_ context.Context, slug string) (*domain.MicroCategory, error) {
	if c, ok := f.micro[slug]; ok {
		return &c, nil
	}
	return nil, store.ErrCategoryNotFound
}

func (f *fakeStore) GetSubCategoryBySlug(_ context.Context, slug string) (*domain.SubCategory, error) {
	if c, ok := f.sub[slug]; ok {
		return &c, nil
	}
	return nil, store.ErrCategoryNotFound
}

func (f *fakeStore) GetHeadCategoryBySlug(_ context.Context, slug string) (*domain.HeadCategory, error) {
	if c, ok := f.head[slug]; ok {
		return &c, nil
	}
	return nil, store.ErrCategoryNotFound
}

func (f *fakeStore) SearchCategoryCandidates(_ context.Context, token string, _ int) ([]domain.Candidate, error) {
	return f.categoryCandidates, nil
}

func (f *fakeStore) ListStates(_ context.Context) ([]domain.State, error) {
	f.listStatesCalls++
	return f.states, nil
}

func (f *fakeStore) ListCities(_ context.Context) ([]domain.City, error) {
	f.listCitiesCalls++
	return f.cities, nil
}

func (f *fakeStore) ListProductsByCategory(_ context.Context, kind domain.ContextKind, categoryID int64, _ int) ([]domain.Product, error) {
	switch kind {
	case domain.ContextMicro:
		return f.productsByMicro[categoryID], nil
	case domain.ContextSub:
		return f.productsBySub[categoryID], nil
	default:
		return f.productsByHead[categoryID], nil
	}
}

func (f *fakeStore) ListProductsByText(_ context.Context, strategy store.TextFilterStrategy, _, _ string, _ int) ([]domain.Product, error) {
	if err, ok := f.textErrors[strategy]; ok {
		return nil, err
	}
	return f.textProducts[strategy], nil
}

func (f *fakeStore) IsUnsupportedFilter(err error) bool {
	return err == store.ErrUnsupportedFilter
}

func (f *fakeStore) SearchProductCandidates(_ context.Context, token string, _ int) ([]domain.Candidate, error) {
	return f.productCandidates, nil
}

func (f *fakeStore) GetVendorPlanNames(_ context.Context, vendorIDs []int64) (map[int64]string, error) {
	if f.planErr != nil {
		return nil, f.planErr
	}
	names := map[int64]string{}
	for _, id := range vendorIDs {
		if name, ok := f.planNames[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}
