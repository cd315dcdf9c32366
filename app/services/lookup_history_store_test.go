package services

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/roster"
)

func TestLookupRecordConversion(t *testing.T) {
	customer := &roster.Customer{
		PhoneNumber:    "5551234567",
		Name:           "Dana Reyes",
		StoreName:      "Main St",
		CurrentPlan:    "Basic",
		ActivationDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		MonthlySavings: 25,
		YearlySavings:  300,
	}
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record lookuplog.Record
	}{
		{
			name:   "eligible carries snapshot",
			record: lookuplog.Record{PhoneNumber: "5551234567", Timestamp: ts, IsEligible: true, Customer: customer, CheckedBy: "Alex", UserID: "staff-1"},
		},
		{
			name:   "ineligible has no snapshot",
			record: lookuplog.Record{PhoneNumber: "5550000000", Timestamp: ts, CheckedBy: "Sam", UserID: "staff-2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := recordToModel(tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.record.IsEligible, len(row.CustomerInfo) > 0)

			row.ID = uuid.New()
			got, err := modelToRecord(row)
			require.NoError(t, err)

			want := tt.record
			want.ID = row.ID.String()
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("record changed through the model (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModelToRecord_CorruptSnapshot(t *testing.T) {
	row, err := recordToModel(lookuplog.Record{PhoneNumber: "5550000000"})
	require.NoError(t, err)
	row.CustomerInfo = []byte("{not json")

	_, err = modelToRecord(row)
	assert.Error(t, err)
}
