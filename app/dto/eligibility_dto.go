package dto

// CheckEligibilityRequest asks whether a phone number qualifies
type CheckEligibilityRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone_digits"`
}

// CheckEligibilityResponse is the outcome of one recorded lookup
type CheckEligibilityResponse struct {
	Message     string       `json:"message"`
	LookupID    string       `json:"lookup_id"`
	PhoneNumber string       `json:"phone_number"`
	IsEligible  bool         `json:"is_eligible"`
	Customer    *CustomerDTO `json:"customer_info,omitempty"`
	Offers      []string     `json:"offers,omitempty"`
	CheckedBy   string       `json:"checked_by"`
	CheckedAt   string       `json:"checked_at"`
}
