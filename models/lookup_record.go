package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LookupRecord is one immutable row of the lookup history. CustomerInfo is a JSON snapshot of
// the customer and is present only for eligible lookups.
type LookupRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PhoneNumber  string          `gorm:"type:varchar(10);not null;index:idx_lookup_history_phone_number" json:"phone_number"`
	IsEligible   bool            `gorm:"not null;index:idx_lookup_history_is_eligible" json:"is_eligible"`
	CustomerInfo json.RawMessage `gorm:"type:jsonb" json:"customer_info,omitempty"`
	CheckedBy    string          `gorm:"size:255;not null;index:idx_lookup_history_checked_by" json:"checked_by"`
	UserID       string          `gorm:"size:255;not null" json:"user_id"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_lookup_history_created_at,sort:desc" json:"created_at"`
}

func (LookupRecord) TableName() string {
	return "lookup_history"
}

// LookupRecordFilter represents filter criteria for lookup history queries
type LookupRecordFilter struct {
	PhoneNumber   *string
	IsEligible    *bool
	CheckedBy     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
