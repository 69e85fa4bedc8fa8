// Package tier holds the static competitive-bracket configuration: eligible
// age ranges, registration fees, and the identity-photo requirement.
package tier

import "errors"

// Tier identifier constants
const (
	Elementary = "elementary"
	Middle     = "middle"
	HighSchool = "highschool"
)

// ErrUnknownTier is returned for tier identifiers outside the fixed set.
// Lookups fail closed: an unknown tier never defaults to fallback age
// bounds or a fallback fee.
var ErrUnknownTier = errors.New("unknown competitive tier")

// Policy describes a competitive bracket.
type Policy struct {
	ID                    string
	DisplayName           string
	MinAge                int
	MaxAge                int
	FeeCents              int
	RequiresIdentityPhoto bool
}

var policies = map[string]Policy{
	Elementary: {
		ID:          Elementary,
		DisplayName: "Elementary Division",
		MinAge:      5,
		MaxAge:      11,
		FeeCents:    25000,
	},
	Middle: {
		ID:          Middle,
		DisplayName: "Middle School Division",
		MinAge:      11,
		MaxAge:      14,
		FeeCents:    30000,
	},
	HighSchool: {
		ID:                    HighSchool,
		DisplayName:           "High School Division",
		MinAge:                13,
		MaxAge:                18,
		FeeCents:              35000,
		RequiresIdentityPhoto: true,
	},
}

// order fixes the display ordering for listings.
var order = []string{Elementary, Middle, HighSchool}

// Lookup returns the policy for a tier identifier.
// PRE: id is the raw tier value from the submission
// POST: Returns the policy, or ErrUnknownTier for anything outside the fixed set
func Lookup(id string) (Policy, error) {
	p, ok := policies[id]
	if !ok {
		return Policy{}, ErrUnknownTier
	}
	return p, nil
}

// All returns every policy in display order.
// INVARIANT: The returned slice is a fresh copy; the table is never mutated
func All() []Policy {
	out := make([]Policy, 0, len(order))
	for _, id := range order {
		out = append(out, policies[id])
	}
	return out
}

// Eligible reports whether an age falls inside the policy's range, inclusive.
// INVARIANT: Policy fields are not mutated
func (p Policy) Eligible(age int) bool {
	return age >= p.MinAge && age <= p.MaxAge
}
