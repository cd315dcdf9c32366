package dto

// LookupHistoryQuery filters and orders the lookup history
type LookupHistoryQuery struct {
	Status    string `query:"status" validate:"omitempty,oneof=all eligible not-eligible"`
	CheckedBy string `query:"checked_by"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Direction string `query:"direction" validate:"omitempty,oneof=asc desc"`
}

// LookupRecordDTO is one recorded lookup
type LookupRecordDTO struct {
	ID          string       `json:"id"`
	PhoneNumber string       `json:"phone_number"`
	Timestamp   string       `json:"timestamp"`
	IsEligible  bool         `json:"is_eligible"`
	Customer    *CustomerDTO `json:"customer_info,omitempty"`
	CheckedBy   string       `json:"checked_by"`
	UserID      string       `json:"user_id"`
}

// LookupHistoryResponse is a filtered view of the lookup history
type LookupHistoryResponse struct {
	Total   int               `json:"total"`
	Count   int               `json:"count"`
	Records []LookupRecordDTO `json:"records"`
}

// LookupCheckersResponse lists every identity that has run a lookup
type LookupCheckersResponse struct {
	Checkers []string `json:"checkers"`
}
