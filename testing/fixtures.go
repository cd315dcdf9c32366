package testing

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/Eligibility-Roster/models"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// RandomPhoneNumber returns a random canonical 10-digit phone number
func RandomPhoneNumber() string {
	return fmt.Sprintf("555%07d", rand.Intn(10000000))
}

// CreateEligibleCustomer inserts an eligible customer with the given store and plan
func (tf *TestFixtures) CreateEligibleCustomer(storeName, plan string, activation time.Time) (*models.EligibleCustomer, error) {
	customer := &models.EligibleCustomer{
		PhoneNumber:    RandomPhoneNumber(),
		Name:           "Jordan Doe",
		StoreName:      storeName,
		CurrentPlan:    plan,
		ActivationDate: activation,
		MonthlySavings: 25,
		YearlySavings:  300,
	}
	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create eligible customer: %w", err)
	}
	return customer, nil
}

// CreateLookupRecord inserts one lookup row; eligible rows carry a snapshot of customer
func (tf *TestFixtures) CreateLookupRecord(customer *models.EligibleCustomer, phoneNumber, checkedBy string) (*models.LookupRecord, error) {
	record := &models.LookupRecord{
		PhoneNumber: phoneNumber,
		IsEligible:  customer != nil,
		CheckedBy:   checkedBy,
		UserID:      "user-" + checkedBy,
	}
	if customer != nil {
		info, err := json.Marshal(map[string]any{
			"phone_number":    customer.PhoneNumber,
			"name":            customer.Name,
			"store_name":      customer.StoreName,
			"current_plan":    customer.CurrentPlan,
			"activation_date": customer.ActivationDate,
			"monthly_savings": customer.MonthlySavings,
			"yearly_savings":  customer.YearlySavings,
		})
		if err != nil {
			return nil, err
		}
		record.CustomerInfo = info
	}
	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create lookup record: %w", err)
	}
	return record, nil
}
