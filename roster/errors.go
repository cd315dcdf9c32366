package roster

import "errors"

var (
	ErrUnknownSide          = errors.New("unknown roster side")
	ErrUnknownSortField     = errors.New("unknown sort field")
	ErrUnknownSortDirection = errors.New("unknown sort direction")
	ErrInvalidDateRange     = errors.New("start date cannot be after end date")
)
