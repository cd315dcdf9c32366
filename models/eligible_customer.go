// Package models contains the persisted entities of the eligibility and call-list service
package models

import (
	"time"
)

// EligibleCustomer is one row of the eligibility table consulted by the resolver.
type EligibleCustomer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber    string    `gorm:"type:varchar(10);not null;uniqueIndex:uk_eligible_customers_phone_number" json:"phone_number"`
	Name           string    `gorm:"size:255;not null;default:''" json:"name"`
	StoreName      string    `gorm:"size:255;not null;index:idx_eligible_customers_store_name" json:"store_name"`
	CurrentPlan    string    `gorm:"size:255;not null;index:idx_eligible_customers_current_plan" json:"current_plan"`
	ActivationDate time.Time `gorm:"type:date;not null;index:idx_eligible_customers_activation_date" json:"activation_date"`
	MonthlySavings float64   `gorm:"type:numeric(10,2);not null;default:0;check:chk_eligible_customers_monthly_savings,monthly_savings >= 0" json:"monthly_savings"`
	YearlySavings  float64   `gorm:"type:numeric(10,2);not null;default:0;check:chk_eligible_customers_yearly_savings,yearly_savings >= 0" json:"yearly_savings"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (EligibleCustomer) TableName() string {
	return "eligible_customers"
}

// EligibleCustomerFilter represents filter criteria for eligible customer queries
type EligibleCustomerFilter struct {
	PhoneNumber     *string
	StoreName       *string
	CurrentPlan     *string
	ActivatedAfter  *time.Time
	ActivatedBefore *time.Time
}
