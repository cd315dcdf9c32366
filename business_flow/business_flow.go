package businessflow

import (
	"time"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/roster"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// Business error codes shared with the HTTP layer
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInvalidDateRange = "INVALID_DATE_RANGE"
	CodeInvalidSide      = "INVALID_SIDE"
	CodeSessionRequired  = "SESSION_REQUIRED"
	CodeCheckCancelled   = "CHECK_CANCELLED"
	CodeCheckFailed      = "ELIGIBILITY_CHECK_FAILED"
	CodeExportFailed     = "EXPORT_FAILED"
)

// ToCustomerDTO converts a roster customer for API responses
func ToCustomerDTO(c roster.Customer) dto.CustomerDTO {
	return dto.CustomerDTO{
		PhoneNumber:    c.PhoneNumber,
		Name:           c.Name,
		StoreName:      c.StoreName,
		CurrentPlan:    c.CurrentPlan,
		ActivationDate: c.ActivationDate.Format(utils.DateLayout),
		MonthlySavings: c.MonthlySavings,
		YearlySavings:  c.YearlySavings,
	}
}

// ToLookupRecordDTO converts a lookup record for API responses
func ToLookupRecordDTO(r lookuplog.Record) dto.LookupRecordDTO {
	out := dto.LookupRecordDTO{
		ID:          r.ID,
		PhoneNumber: r.PhoneNumber,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
		IsEligible:  r.IsEligible,
		CheckedBy:   r.CheckedBy,
		UserID:      r.UserID,
	}
	if r.Customer != nil {
		c := ToCustomerDTO(*r.Customer)
		out.Customer = &c
	}
	return out
}

func toFilterDTO(f roster.Filter) dto.CallListFilterDTO {
	out := dto.CallListFilterDTO{Store: f.Store, Plan: f.Plan}
	if f.From != nil {
		out.From = f.From.Format(utils.DateLayout)
	}
	if f.To != nil {
		out.To = f.To.Format(utils.DateLayout)
	}
	return out
}

func toSortDTO(s roster.SortState) dto.CallListSortDTO {
	return dto.CallListSortDTO{Field: string(s.Field), Direction: string(s.Direction)}
}

// normalizePhone canonicalises a phone number or returns a validation error
func normalizePhone(raw string) (string, error) {
	phone := utils.NormalizePhoneNumber(raw)
	if !utils.IsValidPhoneNumber(phone) {
		return "", NewBusinessError(CodeValidationError, "Invalid phone number", ErrInvalidPhoneNumber)
	}
	return phone, nil
}

// parseDateRange parses optional YYYY-MM-DD bounds and rejects a start after the end
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	start, err := utils.ParseDatePtr(from)
	if err != nil {
		return nil, nil, NewBusinessErrorf(CodeValidationError, "Invalid start date %q", ErrInvalidDate, from)
	}
	end, err := utils.ParseDatePtr(to)
	if err != nil {
		return nil, nil, NewBusinessErrorf(CodeValidationError, "Invalid end date %q", ErrInvalidDate, to)
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, NewBusinessError(CodeInvalidDateRange, "Start date is after end date", ErrStartDateAfterEndDate)
	}
	return start, end, nil
}

func parseSide(value string) (roster.Side, error) {
	side, err := roster.ParseSide(value)
	if err != nil {
		return side, NewBusinessErrorf(CodeInvalidSide, "Unknown call list side %q", ErrInvalidSide, value)
	}
	return side, nil
}
