package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/repository"
	testingutil "github.com/amirphl/Eligibility-Roster/testing"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// withDB runs fn against a fresh migrated database and skips when none is reachable.
func withDB(t *testing.T, fn func(t *testing.T, testDB *testingutil.TestDB)) {
	t.Helper()
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fn(t, testDB)
		return nil
	})
	if errors.Is(err, testingutil.ErrNoTestDatabase) {
		t.Skipf("skipping: %v", err)
	}
	require.NoError(t, err)
}

func TestEligibleCustomerRepository(t *testing.T) {
	withDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewEligibleCustomerRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		created, err := fixtures.CreateEligibleCustomer("Main St", "Basic", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		t.Run("ByPhoneNumber", func(t *testing.T) {
			got, err := repo.ByPhoneNumber(ctx, created.PhoneNumber)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Main St", got.StoreName)
			assert.Equal(t, "2024-01-10", got.ActivationDate.UTC().Format(utils.DateLayout))
		})

		t.Run("ByPhoneNumberNotFound", func(t *testing.T) {
			got, err := repo.ByPhoneNumber(ctx, "0000000000")
			assert.NoError(t, err)
			assert.Nil(t, got)
		})

		t.Run("UpsertBatch", func(t *testing.T) {
			n, err := repo.UpsertBatch(ctx, []*models.EligibleCustomer{
				{PhoneNumber: created.PhoneNumber, Name: "Renamed", StoreName: "Harbor", CurrentPlan: "Basic", ActivationDate: created.ActivationDate},
				{PhoneNumber: "5550000099", Name: "New", StoreName: "Harbor", CurrentPlan: "Prepaid", ActivationDate: created.ActivationDate},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			got, err := repo.ByPhoneNumber(ctx, created.PhoneNumber)
			require.NoError(t, err)
			assert.Equal(t, "Harbor", got.StoreName)
		})

		t.Run("Count", func(t *testing.T) {
			store := "Harbor"
			count, err := repo.Count(ctx, models.EligibleCustomerFilter{StoreName: &store})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("UpsertBatchIsAllOrNothing", func(t *testing.T) {
			rows := make([]*models.EligibleCustomer, 0, 150)
			for i := range 150 {
				rows = append(rows, &models.EligibleCustomer{
					PhoneNumber:    fmt.Sprintf("556%07d", i),
					StoreName:      "Airport",
					CurrentPlan:    "Basic",
					ActivationDate: created.ActivationDate,
					MonthlySavings: 10,
				})
			}
			rows[149].MonthlySavings = -1

			_, err := repo.UpsertBatch(ctx, rows)
			require.Error(t, err)

			store := "Airport"
			count, err := repo.Count(ctx, models.EligibleCustomerFilter{StoreName: &store})
			require.NoError(t, err)
			assert.Zero(t, count, "the first batch is rolled back with the failing one")
		})

		t.Run("UpsertBatchJoinsCallerTransaction", func(t *testing.T) {
			errAbort := errors.New("abort")
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				_, err := repo.UpsertBatch(txCtx, []*models.EligibleCustomer{
					{PhoneNumber: "5570000001", StoreName: "Depot", CurrentPlan: "Basic", ActivationDate: created.ActivationDate},
				})
				require.NoError(t, err)
				return errAbort
			})
			require.ErrorIs(t, err, errAbort)

			got, err := repo.ByPhoneNumber(ctx, "5570000001")
			require.NoError(t, err)
			assert.Nil(t, got, "the outer rollback discards the upsert")
		})
	})
}

func TestLookupRecordRepository(t *testing.T) {
	withDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewLookupRecordRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateEligibleCustomer("Main St", "Basic", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		for _, checker := range []string{"Alex", "Sam", "Alex"} {
			var c *models.EligibleCustomer
			if checker == "Alex" {
				c = customer
			}
			_, err := fixtures.CreateLookupRecord(c, customer.PhoneNumber, checker)
			require.NoError(t, err)
		}

		t.Run("ListAllKeepsDuplicates", func(t *testing.T) {
			records, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, records, 3)
			for i := 1; i < len(records); i++ {
				assert.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt), "most recent first")
			}
		})

		t.Run("FilterByEligibility", func(t *testing.T) {
			eligible := true
			count, err := repo.Count(ctx, models.LookupRecordFilter{IsEligible: &eligible})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("SnapshotRequiredForEligible", func(t *testing.T) {
			err := repo.Save(ctx, &models.LookupRecord{PhoneNumber: customer.PhoneNumber, IsEligible: true, CheckedBy: "Alex", UserID: "u"})
			assert.Error(t, err)
		})
	})
}

func TestPartitionSetRepository(t *testing.T) {
	withDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewPartitionSetRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		key := utils.CalledCustomersKey

		t.Run("MissingKeyIsEmpty", func(t *testing.T) {
			members, err := repo.Get(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, members)
		})

		t.Run("SetRoundTrip", func(t *testing.T) {
			require.NoError(t, repo.Set(ctx, key, []string{"5550000002", "5550000001"}))
			members, err := repo.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []string{"5550000001", "5550000002"}, members)
		})

		t.Run("AddIsUnion", func(t *testing.T) {
			require.NoError(t, repo.Add(ctx, key, []string{"5550000002", "5550000003"}))
			members, err := repo.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []string{"5550000001", "5550000002", "5550000003"}, members)
		})

		t.Run("RemoveIsDifference", func(t *testing.T) {
			require.NoError(t, repo.Remove(ctx, key, []string{"5550000001", "5559999999"}))
			members, err := repo.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []string{"5550000002", "5550000003"}, members)
		})

		t.Run("SetEmpty", func(t *testing.T) {
			require.NoError(t, repo.Set(ctx, key, nil))
			members, err := repo.Get(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, members)
		})
	})
}
