package search

import (
	"context"
	"log"
	"strings"

	"marketplace-search-service/internal/store"
)

// Plan priority tiers. The tier is the primary ranking key downstream: a
// higher-paying subscription outranks relevance, rating and recency. This is
// a monetization decision, not a relevance signal.
const (
	TierDiamond      = 600
	TierGold         = 500
	TierSilver       = 400
	TierCertified    = 300
	TierBooster      = 200
	TierStartup      = 100
	TierTrial        = 0
	TierUnrecognized = 10
	TierNone         = 0
)

// planKeywords is matched case-insensitively by substring, first match wins.
var planKeywords = []struct {
	keyword  string
	priority int
}{
	{"diamond", TierDiamond},
	{"gold", TierGold},
	{"silver", TierSilver},
	{"certified", TierCertified},
	{"booster", TierBooster},
	{"startup", TierStartup},
	{"trial", TierTrial},
}

// PlanPriority maps a subscription plan name to its ordinal priority tier.
// Unrecognized non-empty names get a small non-zero tier so they still edge
// out vendors with no subscription at all.
func PlanPriority(planName string) int {
	name := strings.ToLower(strings.TrimSpace(planName))
	if name == "" {
		return TierNone
	}
	for _, p := range planKeywords {
		if strings.Contains(name, p.keyword) {
			return p.priority
		}
	}
	return TierUnrecognized
}

// PlanResolver enriches vendors with their plan name and priority tier.
type PlanResolver struct {
	plans store.PlanStorer
}

// NewPlanResolver creates a PlanResolver backed by the given store.
func NewPlanResolver(plans store.PlanStorer) *PlanResolver {
	return &PlanResolver{plans: plans}
}

// ResolvePlanPriorities returns the priority tier for each vendor id, along
// with the raw plan names. A failed subscription lookup yields empty maps and
// lets the search proceed with every vendor at TierNone.
func (r *PlanResolver) ResolvePlanPriorities(ctx context.Context, vendorIDs []int64) (map[int64]int, map[int64]string) {
	priorities := make(map[int64]int, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return priorities, map[int64]string{}
	}

	names, err := r.plans.GetVendorPlanNames(ctx, vendorIDs)
	if err != nil {
		log.Printf("WARN: plan subscription lookup failed, ranking without plan tiers: %v", err)
		return priorities, map[int64]string{}
	}
	for vendorID, name := range names {
		priorities[vendorID] = PlanPriority(name)
	}
	return priorities, names
}
