package domain

// ContextKind classifies what an incoming service slug resolved to.
type ContextKind string

const (
	ContextMicro ContextKind = "micro"
	ContextSub   ContextKind = "sub"
	ContextHead  ContextKind = "head"
	ContextText  ContextKind = "text"
)

// SearchContext is the derived, per-request resolution of a search path.
// It is built once and threaded through fetching, filtering and ranking;
// nothing in it is persisted.
type SearchContext struct {
	Kind       ContextKind
	CategoryID int64 // set unless Kind == ContextText

	// Immediate parent of the resolved category: sub id for a micro match,
	// head id for a sub match.
	ParentSubCategoryID  *int64
	ParentHeadCategoryID *int64

	RawSlug       string
	ServicePhrase string // normalized form of the slug, used for relevance

	StateID      *int64
	CityID       *int64
	StateCityIDs map[int64]struct{} // full city roster of the queried state
}

// Scoped reports whether the query carries any location scope at all.
func (c *SearchContext) Scoped() bool {
	return c.StateID != nil || c.CityID != nil
}

// Candidate is a potential auto-correction, deduplicated by slug across all
// contributing sources (category tables and products).
type Candidate struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Correction is the redirect instruction emitted when auto-correct accepts a
// candidate for a misspelled query.
type Correction struct {
	OriginalSlug string `json:"original_slug"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Distance     int    `json:"distance"`
}

// SearchResult is the outcome of one search request: either a ranked product
// list, or a redirect to a corrected query.
type SearchResult struct {
	Products []Product   `json:"products"`
	Redirect *Correction `json:"redirect,omitempty"`
}
