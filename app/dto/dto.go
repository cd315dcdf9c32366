// Package dto holds the request and response shapes of the HTTP API
package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status     string `json:"status"`
	Customers  int    `json:"customers"`
	Called     int    `json:"called"`
	Lookups    int    `json:"lookups"`
	Sessions   int    `json:"sessions"`
	Generation uint64 `json:"generation"`
	CheckedAt  string `json:"checked_at"`
}

// CustomerDTO is an eligible customer as shown to staff
type CustomerDTO struct {
	PhoneNumber    string  `json:"phone_number"`
	Name           string  `json:"name"`
	StoreName      string  `json:"store_name"`
	CurrentPlan    string  `json:"current_plan"`
	ActivationDate string  `json:"activation_date"`
	MonthlySavings float64 `json:"monthly_savings"`
	YearlySavings  float64 `json:"yearly_savings"`
}
