package roster

import (
	"time"

	"github.com/amirphl/Eligibility-Roster/utils"
)

// AllOption matches every value of a categorical dimension.
const AllOption = "all"

// Filter narrows a roster. Every set dimension must match; empty or "all" dimensions match
// everything. Date bounds are calendar dates and inclusive.
type Filter struct {
	Store string     `json:"store"`
	Plan  string     `json:"plan"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

// Validate rejects a date range whose start is after its end.
func (f Filter) Validate() error {
	if f.From != nil && f.To != nil && utils.DateOnly(*f.From).After(utils.DateOnly(*f.To)) {
		return ErrInvalidDateRange
	}
	return nil
}

// Matches reports whether c satisfies every dimension of f.
func (f Filter) Matches(c Customer) bool {
	if !matchesOption(f.Store, c.StoreName) || !matchesOption(f.Plan, c.CurrentPlan) {
		return false
	}
	if f.From == nil && f.To == nil {
		return true
	}
	day := utils.DateOnly(c.ActivationDate)
	if f.From != nil && day.Before(utils.DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && day.After(utils.DateOnly(*f.To)) {
		return false
	}
	return true
}

// Equal reports whether two filters select the same customers.
func (f Filter) Equal(o Filter) bool {
	return normalizeOption(f.Store) == normalizeOption(o.Store) &&
		normalizeOption(f.Plan) == normalizeOption(o.Plan) &&
		sameDate(f.From, o.From) && sameDate(f.To, o.To)
}

func matchesOption(want, got string) bool {
	return normalizeOption(want) == "" || want == got
}

func normalizeOption(v string) string {
	if v == AllOption {
		return ""
	}
	return v
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return utils.DateOnly(*a).Equal(utils.DateOnly(*b))
}
