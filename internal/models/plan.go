package models

// Plan describes a subscription tier: how many generation tokens it grants
// per month and which features it unlocks. The catalog is immutable
// reference data compiled into the binary; plans are never user-owned rows.
type Plan struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	TokensPerMonth int      `json:"tokens_per_month"`
	TokensPerHour  int      `json:"tokens_per_hour"`
	Features       []string `json:"features"`
}

// Plan feature keys.
const (
	FeaturePersonas = "personas" // non-default persona selection
	FeatureHistory  = "history"  // generation history browsing
)

// Plan IDs.
const (
	PlanFree = "free"
	PlanPro  = "pro"
	PlanTeam = "team"
)

var planCatalog = map[string]Plan{
	PlanFree: {
		ID:             PlanFree,
		Name:           "Free",
		TokensPerMonth: 50,
		TokensPerHour:  10,
		Features:       []string{FeatureHistory},
	},
	PlanPro: {
		ID:             PlanPro,
		Name:           "Pro",
		TokensPerMonth: 500,
		TokensPerHour:  50,
		Features:       []string{FeatureHistory, FeaturePersonas},
	},
	PlanTeam: {
		ID:             PlanTeam,
		Name:           "Team",
		TokensPerMonth: 2000,
		TokensPerHour:  200,
		Features:       []string{FeatureHistory, FeaturePersonas},
	},
}

// PlanByID looks up a plan in the catalog.
func PlanByID(id string) (Plan, bool) {
	p, ok := planCatalog[id]
	return p, ok
}

// Plans returns the full catalog in a stable order.
func Plans() []Plan {
	return []Plan{planCatalog[PlanFree], planCatalog[PlanPro], planCatalog[PlanTeam]}
}

// HasFeature reports whether the plan includes the given feature key.
func (p Plan) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}
