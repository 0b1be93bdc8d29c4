package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-search-service/internal/domain"
)

func ptrTo[T any](v T) *T {
	return &v
}

func productWithTargets(payload string) *domain.Product {
	return &domain.Product{TargetLocations: []byte(payload)}
}

func TestMatchesLocation_Unscoped(t *testing.T) {
	p := productWithTargets(`{"pan_india": false, "cities": []}`)
	assert.True(t, MatchesLocation(p, nil, nil, nil), "every product matches an unscoped search")
}

func TestMatchesLocation_PanIndiaMatchesEverything(t *testing.T) {
	p := productWithTargets(`{"pan_india": true, "states": [{"id": 3}], "cities": [{"id": 7}]}`)

	combos := []struct {
		state *int64
		city  *int64
	}{
		{nil, nil},
		{ptrTo(int64(1)), nil},
		{nil, ptrTo(int64(99))},
		{ptrTo(int64(1)), ptrTo(int64(99))},
	}
	for _, c := range combos {
		assert.True(t, MatchesLocation(p, c.state, c.city, nil))
	}
}

func TestMatchesLocation_ExplicitCityWinsRegardlessOfStates(t *testing.T) {
	// The product targets city 42 but lists an unrelated state.
	p := productWithTargets(`{"pan_india": false, "states": [{"id": 9}], "cities": [{"id": 42}]}`)

	assert.True(t, MatchesLocation(p, ptrTo(int64(1)), ptrTo(int64(42)), nil))
	assert.True(t, MatchesLocation(p, nil, ptrTo(int64(42)), nil))
}

func TestMatchesLocation_StateListNeverSatisfiesCityQuery(t *testing.T) {
	// Product targets the queried state but not the queried city: with a city
	// in the query, the state list alone must not match.
	p := productWithTargets(`{"pan_india": false, "states": [{"id": 5}], "cities": [{"id": 7}]}`)
	assert.False(t, MatchesLocation(p, ptrTo(int64(5)), ptrTo(int64(8)), nil))
}

func TestMatchesLocation_StateQueryOnStateList(t *testing.T) {
	p := productWithTargets(`{"pan_india": false, "states": [{"id": 5}]}`)
	assert.True(t, MatchesLocation(p, ptrTo(int64(5)), nil, nil))
	assert.False(t, MatchesLocation(p, ptrTo(int64(6)), nil, nil))
}

func TestMatchesLocation_HierarchicalBroadening(t *testing.T) {
	// Product lists only cities, no state tag. A state query whose roster
	// contains one of those cities must still match.
	p := productWithTargets(`{"pan_india": false, "cities": [{"id": 101}]}`)
	roster := map[int64]struct{}{100: {}, 101: {}, 102: {}}

	assert.True(t, MatchesLocation(p, ptrTo(int64(5)), nil, roster))
	assert.False(t, MatchesLocation(p, ptrTo(int64(5)), nil, map[int64]struct{}{200: {}}))
}

func TestMatchesLocation_LegacyTextualPanIndia(t *testing.T) {
	p := productWithTargets(`"serving PAN_INDIA: true since 2019"`)
	assert.True(t, MatchesLocation(p, ptrTo(int64(3)), nil, nil))
}

func TestMatchesLocation_LegacyTextualIDContainment(t *testing.T) {
	p := productWithTargets(`"we serve 42 and nearby"`)
	assert.True(t, MatchesLocation(p, nil, ptrTo(int64(42)), nil))
}

func TestMatchesLocation_LegacyFallsBackToVendor(t *testing.T) {
	// Raw string neither flags pan-india nor contains the queried id, so only
	// the vendor's own city decides.
	p := productWithTargets(`"only mumbai, 100% genuine"`)
	mumbaiID := int64(77)

	p.Vendor.CityID = ptrTo(mumbaiID)
	assert.True(t, MatchesLocation(p, nil, ptrTo(mumbaiID), nil))

	p.Vendor.CityID = ptrTo(int64(88))
	assert.False(t, MatchesLocation(p, nil, ptrTo(mumbaiID), nil))
}

func TestMatchesLocation_VendorStateAcceptsCityQueryWithoutVendorCity(t *testing.T) {
	p := productWithTargets(``)
	p.Vendor.StateID = ptrTo(int64(5))

	// City query in state 5; the vendor has no explicit city but sits in the
	// right state.
	assert.True(t, MatchesLocation(p, ptrTo(int64(5)), ptrTo(int64(9)), nil))

	p.Vendor.CityID = ptrTo(int64(10))
	assert.False(t, MatchesLocation(p, ptrTo(int64(5)), ptrTo(int64(9)), nil),
		"an explicit wrong vendor city must not match")
}

func TestMatchesLocation_MalformedPayloadDegrades(t *testing.T) {
	p := productWithTargets(`[{"not": "the shape"}`)
	p.Vendor.StateID = ptrTo(int64(5))
	assert.True(t, MatchesLocation(p, ptrTo(int64(5)), nil, nil))
	assert.False(t, MatchesLocation(p, ptrTo(int64(6)), nil, nil))
}

func TestLocationResolver_ResolveAndExpand(t *testing.T) {
	fs := newFakeStore()
	fs.states = []domain.State{{ID: 1, Name: "Delhi", Slug: "delhi"}}
	fs.cities = []domain.City{
		{ID: 10, Name: "New Delhi", Slug: "new-delhi", StateID: 1},
		{ID: 11, Name: "Dwarka", Slug: "dwarka", StateID: 1},
	}
	r := NewLocationResolver(fs, time.Minute)

	state, city := r.ResolveLocation(context.Background(), "delhi", "dwarka")
	require.NotNil(t, state)
	require.NotNil(t, city)
	assert.Equal(t, int64(1), state.ID)
	assert.Equal(t, int64(11), city.ID)

	set := r.ExpandStateToCityIDs(context.Background(), 1)
	assert.Len(t, set, 2)
	_, ok := set[10]
	assert.True(t, ok)
}

func TestLocationResolver_UnknownSlugDegradesToNil(t *testing.T) {
	fs := newFakeStore()
	fs.states = []domain.State{{ID: 1, Slug: "delhi"}}
	r := NewLocationResolver(fs, time.Minute)

	state, city := r.ResolveLocation(context.Background(), "atlantis", "nowhere")
	assert.Nil(t, state)
	assert.Nil(t, city)
}

func TestLocationResolver_SnapshotIsCached(t *testing.T) {
	fs := newFakeStore()
	fs.states = []domain.State{{ID: 1, Slug: "delhi"}}
	r := NewLocationResolver(fs, time.Minute)

	for i := 0; i < 3; i++ {
		r.ResolveLocation(context.Background(), "delhi", "")
	}
	assert.Equal(t, 1, fs.listStatesCalls, "within the TTL the store is hit once")
	assert.Equal(t, 1, fs.listCitiesCalls)
}
