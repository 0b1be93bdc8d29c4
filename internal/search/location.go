package search

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketplace-search-service/internal/domain"
	"marketplace-search-service/internal/store"
)

// locationSnapshot is one immutable load of the state/city tables, indexed
// for slug lookup and state expansion.
type locationSnapshot struct {
	statesBySlug  map[string]domain.State
	citiesBySlug  map[string]domain.City
	citiesByState map[int64][]int64
	refreshedAt   time.Time
}

// LocationResolver maps state/city slugs to concrete rows and expands a state
// into its full city-id roster. The state/city tables are small and change
// rarely, so the resolver holds a TTL-bounded snapshot instead of querying
// per request. The cache is owned by the resolver instance, not package
// state, so tests and multi-tenant callers each get their own.
type LocationResolver struct {
	locations store.LocationStorer
	ttl       time.Duration

	mu   sync.RWMutex
	snap *locationSnapshot
}

// NewLocationResolver creates a resolver refreshing its snapshot at most once
// per ttl.
func NewLocationResolver(locations store.LocationStorer, ttl time.Duration) *LocationResolver {
	return &LocationResolver{locations: locations, ttl: ttl}
}

func (r *LocationResolver) snapshot(ctx context.Context) (*locationSnapshot, error) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	if snap != nil && time.Since(snap.refreshedAt) < r.ttl {
		return snap, nil
	}

	fresh, err := r.load(ctx)
	if err != nil {
		// A stale snapshot beats no snapshot.
		if snap != nil {
			log.Printf("WARN: location snapshot refresh failed, serving stale data: %v", err)
			return snap, nil
		}
		return nil, err
	}

	r.mu.Lock()
	r.snap = fresh
	r.mu.Unlock()
	return fresh, nil
}

func (r *LocationResolver) load(ctx context.Context) (*locationSnapshot, error) {
	states, err := r.locations.ListStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: loading states: %w", err)
	}
	cities, err := r.locations.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: loading cities: %w", err)
	}

	snap := &locationSnapshot{
		statesBySlug:  make(map[string]domain.State, len(states)),
		citiesBySlug:  make(map[string]domain.City, len(cities)),
		citiesByState: make(map[int64][]int64),
		refreshedAt:   time.Now(),
	}
	for _, st := range states {
		snap.statesBySlug[st.Slug] = st
	}
	for _, c := range cities {
		snap.citiesBySlug[c.Slug] = c
		snap.citiesByState[c.StateID] = append(snap.citiesByState[c.StateID], c.ID)
	}
	return snap, nil
}

// ResolveLocation looks each slug up independently against its table. An
// unknown or empty slug yields nil for that level; an unknown location
// degrades the query to "no location scoping" rather than failing it.
func (r *LocationResolver) ResolveLocation(ctx context.Context, stateSlug, citySlug string) (*domain.State, *domain.City) {
	if stateSlug == "" && citySlug == "" {
		return nil, nil
	}
	snap, err := r.snapshot(ctx)
	if err != nil {
		log.Printf("WARN: location lookup unavailable, searching unscoped: %v", err)
		return nil, nil
	}

	var state *domain.State
	var city *domain.City
	if st, ok := snap.statesBySlug[stateSlug]; ok {
		state = &st
	}
	if c, ok := snap.citiesBySlug[citySlug]; ok {
		city = &c
	}
	return state, city
}

// ExpandStateToCityIDs returns the id set of every city belonging to stateID.
// Used for hierarchical location matching only.
func (r *LocationResolver) ExpandStateToCityIDs(ctx context.Context, stateID int64) map[int64]struct{} {
	snap, err := r.snapshot(ctx)
	if err != nil {
		log.Printf("WARN: state expansion unavailable: %v", err)
		return nil
	}
	ids := snap.citiesByState[stateID]
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// MatchesLocation evaluates a product's location-targeting payload against
// the resolved scope. Pure and total: malformed payloads degrade to the
// vendor-level fallback, never to an error.
//
// Precedence with a structured payload: pan_india wins outright; a city query
// is satisfied only by the explicit city list (a state-list hit never
// substitutes for a requested city); a state-only query is satisfied by the
// state list, or hierarchically by any targeted city inside that state's
// roster.
func MatchesLocation(p *domain.Product, stateID, cityID *int64, stateCityIDs map[int64]struct{}) bool {
	if stateID == nil && cityID == nil {
		return true
	}

	tl := domain.DecodeTargetLocations(p.TargetLocations)
	if tl.Kind == domain.TargetStructured {
		if tl.PanIndia {
			return true
		}
		if cityID != nil {
			return tl.HasCity(*cityID)
		}
		// state-only query
		if tl.HasState(*stateID) {
			return true
		}
		// Hierarchical broadening: a product targeted at cities within the
		// queried state must appear in that state's results even without an
		// explicit state-level tag.
		for _, id := range tl.CityIDs {
			if _, ok := stateCityIDs[id]; ok {
				return true
			}
		}
		return false
	}

	// Legacy raw-string payload (or none at all).
	raw := strings.ToLower(tl.Raw)
	if raw != "" {
		if legacyPanIndia(raw) {
			return true
		}
		if cityID != nil && strings.Contains(raw, strconv.FormatInt(*cityID, 10)) {
			return true
		}
		if stateID != nil && strings.Contains(raw, strconv.FormatInt(*stateID, 10)) {
			return true
		}
	}

	return vendorMatchesLocation(&p.Vendor, stateID, cityID)
}

// legacyPanIndia detects a textual "pan_india": true flag inside an arbitrary
// legacy payload string.
func legacyPanIndia(raw string) bool {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)
	idx := strings.Index(compact, "pan_india")
	if idx < 0 {
		return false
	}
	rest := strings.TrimLeft(compact[idx+len("pan_india"):], `"':=`)
	return strings.HasPrefix(rest, "true")
}

// vendorMatchesLocation compares the vendor's own registered city/state
// against the query. A city query also accepts a vendor in the right state
// when the vendor has no explicit city set.
func vendorMatchesLocation(v *domain.Vendor, stateID, cityID *int64) bool {
	if cityID != nil {
		if v.CityID != nil && *v.CityID == *cityID {
			return true
		}
		if v.CityID == nil && stateID != nil && v.StateID != nil && *v.StateID == *stateID {
			return true
		}
		return false
	}
	return stateID != nil && v.StateID != nil && *v.StateID == *stateID
}
