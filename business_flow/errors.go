// Package businessflow contains the use cases behind the HTTP API: eligibility checks, the call list and the lookup history
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Input errors
	ErrInvalidPhoneNumber    = errors.New("phone number must contain exactly 10 digits")
	ErrInvalidDate           = errors.New("date must be formatted as YYYY-MM-DD")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
	ErrInvalidSide           = errors.New("side must be not-called or called")
	ErrInvalidSortField      = errors.New("sort field must be activation_date or current_plan")
	ErrInvalidSortDirection  = errors.New("sort direction must be asc or desc")
	ErrInvalidLookupStatus   = errors.New("status must be all, eligible or not-eligible")
	ErrSessionRequired       = errors.New("staff session is required")

	// Eligibility check errors
	ErrCheckCancelled      = errors.New("eligibility check was cancelled")
	ErrResolverUnavailable = errors.New("eligibility resolver unavailable")

	// Export errors
	ErrExportFailed = errors.New("lookup history export failed")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsInvalidPhoneNumber(err error) bool {
	return errors.Is(err, ErrInvalidPhoneNumber)
}

func IsInvalidDate(err error) bool {
	return errors.Is(err, ErrInvalidDate)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

func IsInvalidSide(err error) bool {
	return errors.Is(err, ErrInvalidSide)
}

func IsCheckCancelled(err error) bool {
	return errors.Is(err, ErrCheckCancelled)
}

func IsResolverUnavailable(err error) bool {
	return errors.Is(err, ErrResolverUnavailable)
}
