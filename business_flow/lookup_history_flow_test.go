package businessflow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
)

func seededHistory(t *testing.T) *lookuplog.Log {
	t.Helper()
	logger, _ := quietLogger()
	history := lookuplog.New(nil, logger)
	customer := mainStCustomer()
	records := []lookuplog.Record{
		{PhoneNumber: "5551234567", Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), IsEligible: true, Customer: &customer, CheckedBy: "Alex", UserID: "a"},
		{PhoneNumber: "5551234567", Timestamp: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), CheckedBy: "Sam", UserID: "s"},
		{PhoneNumber: "5551234567", Timestamp: time.Date(2024, 5, 3, 23, 30, 0, 0, time.UTC), IsEligible: true, Customer: &customer, CheckedBy: "Alex", UserID: "a"},
	}
	for _, r := range records {
		_, err := history.Append(context.Background(), r)
		require.NoError(t, err)
	}
	return history
}

func TestLookupHistoryFlow_List(t *testing.T) {
	flow := NewLookupHistoryFlow(seededHistory(t), nil)
	ctx := context.Background()

	all, err := flow.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	require.Len(t, all.Records, 3)
	assert.Equal(t, "2024-05-03T23:30:00Z", all.Records[0].Timestamp, "most recent first")

	eligible, err := flow.List(ctx, &dto.LookupHistoryQuery{Status: "eligible"})
	require.NoError(t, err)
	assert.Equal(t, 3, eligible.Total)
	assert.Equal(t, 2, eligible.Count)
	for _, r := range eligible.Records {
		require.NotNil(t, r.Customer)
		assert.Equal(t, "Dana Reyes", r.Customer.Name)
	}

	asc, err := flow.List(ctx, &dto.LookupHistoryQuery{Direction: "asc", CheckedBy: "Alex", To: "2024-05-03"})
	require.NoError(t, err)
	require.Len(t, asc.Records, 2)
	assert.Equal(t, "2024-05-01T09:00:00Z", asc.Records[0].Timestamp)
}

func TestLookupHistoryFlow_ListValidation(t *testing.T) {
	flow := NewLookupHistoryFlow(seededHistory(t), nil)
	ctx := context.Background()

	_, err := flow.List(ctx, &dto.LookupHistoryQuery{Status: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidLookupStatus)

	_, err = flow.List(ctx, &dto.LookupHistoryQuery{Direction: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidSortDirection)

	_, err = flow.List(ctx, &dto.LookupHistoryQuery{From: "2024-05-03", To: "2024-05-01"})
	assert.True(t, IsStartDateAfterEndDate(err))
}

func TestLookupHistoryFlow_Checkers(t *testing.T) {
	flow := NewLookupHistoryFlow(seededHistory(t), nil)
	res, err := flow.Checkers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alex", "Sam"}, res.Checkers)
}

func TestLookupHistoryFlow_Export(t *testing.T) {
	flow := NewLookupHistoryFlow(seededHistory(t), time.UTC)
	flow.(*LookupHistoryFlowImpl).now = func() time.Time { return time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC) }

	name, data, err := flow.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "lookup-history-2024-05-04.xlsx", name)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.Equal(t, []string{LookupHistorySheet}, xl.GetSheetList())
	rows, err := xl.GetRows(LookupHistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, lookuplog.ExportColumns, rows[0])
	assert.Equal(t, []string{"5551234567", "Alex", "5/3/2024, 11:30:00 PM", "Eligible", "Dana Reyes", "Main St", "$25", "$300"}, rows[1])
	assert.Equal(t, []string{"5551234567", "Sam", "5/2/2024, 9:00:00 AM", "Not Eligible"}, rows[2], "customer columns stay empty")
}

func TestLookupHistoryFlow_ExportAppliesFilter(t *testing.T) {
	flow := NewLookupHistoryFlow(seededHistory(t), nil)

	_, data, err := flow.Export(context.Background(), &dto.LookupHistoryQuery{Status: "not-eligible"})
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()
	rows, err := xl.GetRows(LookupHistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sam", rows[1][1])
}
