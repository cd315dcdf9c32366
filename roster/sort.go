package roster

import "fmt"

// SortField names a sortable customer attribute.
type SortField string

const (
	SortByActivationDate SortField = "activation_date"
	SortByPlan           SortField = "current_plan"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortState is the active sort key and direction of a view.
type SortState struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort lists the most recently activated customers first.
func DefaultSort() SortState {
	return SortState{Field: SortByActivationDate, Direction: Descending}
}

// Toggle flips the direction when field is already active and otherwise switches to field
// in ascending order.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		return SortState{Field: field, Direction: s.Direction.Reverse()}
	}
	return SortState{Field: field, Direction: Ascending}
}

func (d SortDirection) Reverse() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ParseSortField accepts the wire names of sortable fields.
func ParseSortField(value string) (SortField, error) {
	switch value {
	case string(SortByActivationDate), "activationDate":
		return SortByActivationDate, nil
	case string(SortByPlan), "currentPlan", "plan":
		return SortByPlan, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortField, value)
	}
}

// ParseSortDirection accepts "asc" and "desc"; an empty value means descending.
func ParseSortDirection(value string) (SortDirection, error) {
	switch value {
	case "", string(Descending):
		return Descending, nil
	case string(Ascending):
		return Ascending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortDirection, value)
	}
}
