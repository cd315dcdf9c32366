package services

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// EligibilitySeed is the on-disk format of the eligibility seed file
type EligibilitySeed struct {
	Customers []SeedCustomer `yaml:"customers"`
}

// SeedCustomer is one customer entry of the seed file
type SeedCustomer struct {
	PhoneNumber    string  `yaml:"phone_number"`
	Name           string  `yaml:"name"`
	StoreName      string  `yaml:"store_name"`
	CurrentPlan    string  `yaml:"current_plan"`
	ActivationDate string  `yaml:"activation_date"`
	MonthlySavings float64 `yaml:"monthly_savings"`
	YearlySavings  float64 `yaml:"yearly_savings"`
}

// LoadEligibilitySeed reads and validates a YAML seed file
func LoadEligibilitySeed(path string) ([]*models.EligibleCustomer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read eligibility seed %s: %w", path, err)
	}
	return ParseEligibilitySeed(raw)
}

// ParseEligibilitySeed decodes seed YAML. Every entry is validated and all problems are reported
// together.
func ParseEligibilitySeed(raw []byte) ([]*models.EligibleCustomer, error) {
	var seed EligibilitySeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to decode eligibility seed: %w", err)
	}

	var errs []error
	seen := make(map[string]int, len(seed.Customers))
	out := make([]*models.EligibleCustomer, 0, len(seed.Customers))
	for i, c := range seed.Customers {
		phone := utils.NormalizePhoneNumber(c.PhoneNumber)
		if !utils.IsValidPhoneNumber(phone) {
			errs = append(errs, fmt.Errorf("customers[%d]: invalid phone number %q", i, c.PhoneNumber))
			continue
		}
		if first, dup := seen[phone]; dup {
			errs = append(errs, fmt.Errorf("customers[%d]: phone number %s already listed at customers[%d]", i, phone, first))
			continue
		}
		activation, err := utils.ParseDate(c.ActivationDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("customers[%d]: %w", i, err))
			continue
		}
		if c.MonthlySavings < 0 || c.YearlySavings < 0 {
			errs = append(errs, fmt.Errorf("customers[%d]: savings must not be negative", i))
			continue
		}
		seen[phone] = i
		out = append(out, &models.EligibleCustomer{
			PhoneNumber:    phone,
			Name:           c.Name,
			StoreName:      c.StoreName,
			CurrentPlan:    c.CurrentPlan,
			ActivationDate: activation,
			MonthlySavings: c.MonthlySavings,
			YearlySavings:  c.YearlySavings,
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
