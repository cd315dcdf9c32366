package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
customers:
  - phone_number: "(555) 123-4567"
    name: Dana Reyes
    store_name: Main St
    current_plan: Basic
    activation_date: 2024-01-10
    monthly_savings: 25
    yearly_savings: 300
  - phone_number: "5550000001"
    name: Ari Cole
    store_name: Harbor
    current_plan: Unlimited
    activation_date: "2024-03-02"
    monthly_savings: 12.5
    yearly_savings: 150
`

func TestParseEligibilitySeed(t *testing.T) {
	customers, err := ParseEligibilitySeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "5551234567", customers[0].PhoneNumber)
	assert.Equal(t, "Main St", customers[0].StoreName)
	assert.Equal(t, "2024-01-10", customers[0].ActivationDate.Format("2006-01-02"))
	assert.Equal(t, 12.5, customers[1].MonthlySavings)
}

func TestParseEligibilitySeed_ReportsEveryProblem(t *testing.T) {
	raw := `
customers:
  - phone_number: "12345"
    activation_date: 2024-01-10
  - phone_number: "5550000001"
    activation_date: "yesterday"
  - phone_number: "5550000002"
    activation_date: 2024-01-10
  - phone_number: "555-000-0002"
    activation_date: 2024-01-10
  - phone_number: "5550000003"
    activation_date: 2024-01-10
    monthly_savings: -1
`
	_, err := ParseEligibilitySeed([]byte(raw))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "customers[0]: invalid phone number")
	assert.Contains(t, msg, "customers[1]: invalid date")
	assert.Contains(t, msg, "customers[3]: phone number 5550000002 already listed at customers[2]")
	assert.Contains(t, msg, "customers[4]: savings must not be negative")
}

func TestLoadEligibilitySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	customers, err := LoadEligibilitySeed(path)
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	_, err = LoadEligibilitySeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
