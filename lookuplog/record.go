// Package lookuplog is the append-only history of eligibility lookups with its filtered,
// ordered and exportable views.
package lookuplog

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/Eligibility-Roster/roster"
	"github.com/amirphl/Eligibility-Roster/utils"
)

var (
	ErrMissingSnapshot    = errors.New("eligible lookup record requires a customer snapshot")
	ErrUnexpectedSnapshot = errors.New("ineligible lookup record must not carry a customer snapshot")
	ErrUnknownStatus      = errors.New("unknown lookup status")
)

// Record is one immutable eligibility lookup.
type Record struct {
	ID          string           `json:"id"`
	PhoneNumber string           `json:"phone_number"`
	Timestamp   time.Time        `json:"timestamp"`
	IsEligible  bool             `json:"is_eligible"`
	Customer    *roster.Customer `json:"customer_info"`
	CheckedBy   string           `json:"checked_by"`
	UserID      string           `json:"user_id"`
}

// Validate enforces that a customer snapshot is present exactly when the lookup was eligible.
func (r Record) Validate() error {
	if r.IsEligible && r.Customer == nil {
		return ErrMissingSnapshot
	}
	if !r.IsEligible && r.Customer != nil {
		return ErrUnexpectedSnapshot
	}
	return nil
}

// Status selects lookups by outcome.
type Status string

const (
	StatusAll         Status = "all"
	StatusEligible    Status = "eligible"
	StatusNotEligible Status = "not-eligible"
)

// ParseStatus accepts "all", "eligible" and "not-eligible"; empty means all.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusEligible, "eligible-only":
		return StatusEligible, nil
	case StatusNotEligible, "not_eligible", "ineligible":
		return StatusNotEligible, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
	}
}

// Filter narrows the history. Every set dimension must match. From starts at the beginning of its
// day and To covers its whole day.
type Filter struct {
	Status    Status     `json:"status"`
	CheckedBy string     `json:"checked_by"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
}

// Validate rejects a date range whose start day is after its end day.
func (f Filter) Validate() error {
	if f.From != nil && f.To != nil && utils.DateOnly(*f.From).After(utils.DateOnly(*f.To)) {
		return roster.ErrInvalidDateRange
	}
	return nil
}

// Matches reports whether r satisfies every dimension of f.
func (f Filter) Matches(r Record) bool {
	switch f.Status {
	case StatusEligible:
		if !r.IsEligible {
			return false
		}
	case StatusNotEligible:
		if r.IsEligible {
			return false
		}
	}
	if f.CheckedBy != "" && f.CheckedBy != string(StatusAll) && f.CheckedBy != r.CheckedBy {
		return false
	}
	if f.From != nil && r.Timestamp.Before(utils.DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && r.Timestamp.After(utils.EndOfDay(*f.To)) {
		return false
	}
	return true
}
