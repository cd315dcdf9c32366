package utils

import (
	"time"
)

// Context keys shared by handlers and flows
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	TimeoutKey   contextKey = "timeout"
)

// Roster constants
const (
	// PhoneNumberDigits is the length of a canonical phone number
	PhoneNumberDigits = 10

	// CalledCustomersKey is the storage key of the "called" partition
	CalledCustomersKey = "calledCustomers"

	// EligibleCustomersCacheKey is the cache key of the bulk eligible-customer list
	EligibleCustomersCacheKey = "eligible_customers"

	// DefaultRequestTimeout bounds every handler-created context
	DefaultRequestTimeout = 30 * time.Second

	// ExportTimestampLayout is how lookup timestamps are rendered in exported sheets
	ExportTimestampLayout = "1/2/2006, 3:04:05 PM"
)
