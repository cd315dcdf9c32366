// Package roster holds the call-list core: the eligible customer collection, the durable
// "called" partition, composable filters, deterministic sorting and windowed row access.
package roster

import (
	"fmt"
	"time"
)

// Customer is an eligible customer as delivered by the eligibility resolver.
type Customer struct {
	PhoneNumber    string    `json:"phone_number" yaml:"phone_number"`
	Name           string    `json:"name" yaml:"name"`
	StoreName      string    `json:"store_name" yaml:"store_name"`
	CurrentPlan    string    `json:"current_plan" yaml:"current_plan"`
	ActivationDate time.Time `json:"activation_date" yaml:"activation_date"`
	MonthlySavings float64   `json:"monthly_savings" yaml:"monthly_savings"`
	YearlySavings  float64   `json:"yearly_savings" yaml:"yearly_savings"`
}

// Side selects one of the two disjoint partitions.
type Side int

const (
	NotCalled Side = iota
	Called
)

const (
	SideNotCalledName = "not-called"
	SideCalledName    = "called"
)

func (s Side) String() string {
	if s == Called {
		return SideCalledName
	}
	return SideNotCalledName
}

// ParseSide converts the wire name of a partition into a Side.
func ParseSide(value string) (Side, error) {
	switch value {
	case SideNotCalledName, "not_called", "list", "all":
		return NotCalled, nil
	case SideCalledName:
		return Called, nil
	default:
		return NotCalled, fmt.Errorf("%w: %q", ErrUnknownSide, value)
	}
}

// Actor is the staff member on whose behalf an operation runs.
type Actor struct {
	ID          string
	DisplayName string
	Email       string
	Verified    bool
}

// Identity is the label stamped on lookup records: the display name, falling back to email.
func (a Actor) Identity() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}
