package search

import (
	"context"
	"errors"
	"fmt"

	"marketplace-search-service/internal/domain"
	"marketplace-search-service/internal/store"
)

// ContextResolver classifies an incoming slug as a micro, sub or head
// category, or falls back to treating it as a keyword phrase.
type ContextResolver struct {
	categories store.CategoryStorer
}

// NewContextResolver creates a ContextResolver backed by the given store.
func NewContextResolver(categories store.CategoryStorer) *ContextResolver {
	return &ContextResolver{categories: categories}
}

// ResolveContext resolves slug in micro -> sub -> head order; the first table
// containing the slug wins. The ordering encodes policy: the most specific
// classification is preferred, since the slug namespaces are disjoint by
// intent but not enforced by storage. No table matching means a free-text
// context carrying the raw slug as the keyword phrase.
func (r *ContextResolver) ResolveContext(ctx context.Context, slug string) (*domain.SearchContext, error) {
	phrase := Normalize(slug)

	micro, err := r.categories.GetMicroCategoryBySlug(ctx, slug)
	if err == nil {
		return &domain.SearchContext{
			Kind:                domain.ContextMicro,
			CategoryID:          micro.ID,
			ParentSubCategoryID: &micro.SubCategoryID,
			RawSlug:             slug,
			ServicePhrase:       phrase,
		}, nil
	}
	if !errors.Is(err, store.ErrCategoryNotFound) {
		return nil, fmt.Errorf("search: resolving micro category: %w", err)
	}

	sub, err := r.categories.GetSubCategoryBySlug(ctx, slug)
	if err == nil {
		return &domain.SearchContext{
			Kind:                 domain.ContextSub,
			CategoryID:           sub.ID,
			ParentHeadCategoryID: &sub.HeadCategoryID,
			RawSlug:              slug,
			ServicePhrase:        phrase,
		}, nil
	}
	if !errors.Is(err, store.ErrCategoryNotFound) {
		return nil, fmt.Errorf("search: resolving sub category: %w", err)
	}

	head, err := r.categories.GetHeadCategoryBySlug(ctx, slug)
	if err == nil {
		return &domain.SearchContext{
			Kind:          domain.ContextHead,
			CategoryID:    head.ID,
			RawSlug:       slug,
			ServicePhrase: phrase,
		}, nil
	}
	if !errors.Is(err, store.ErrCategoryNotFound) {
		return nil, fmt.Errorf("search: resolving head category: %w", err)
	}

	return &domain.SearchContext{
		Kind:          domain.ContextText,
		RawSlug:       slug,
		ServicePhrase: phrase,
	}, nil
}
