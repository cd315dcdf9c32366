package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/Eligibility-Roster/roster"
)

// testRedisClient connects to TEST_REDIS_URL and skips the test when it is unset or unreachable
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisPartitionStorage(t *testing.T) {
	client := testRedisClient(t)
	prefix := "test:" + uuid.NewString() + ":"
	storage := NewRedisPartitionStorage(client, prefix)
	ctx := context.Background()
	t.Cleanup(func() { client.Del(context.Background(), prefix+"calledCustomers") })

	var _ roster.DeltaStorage = storage

	members, err := storage.Get(ctx, "calledCustomers")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, storage.Set(ctx, "calledCustomers", []string{"5550000002", "5550000001"}))
	require.NoError(t, storage.Add(ctx, "calledCustomers", []string{"5550000003"}))
	require.NoError(t, storage.Remove(ctx, "calledCustomers", []string{"5550000001"}))

	members, err = storage.Get(ctx, "calledCustomers")
	require.NoError(t, err)
	assert.Equal(t, []string{"5550000002", "5550000003"}, members)

	require.NoError(t, storage.Set(ctx, "calledCustomers", nil))
	members, err = storage.Get(ctx, "calledCustomers")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisPartitionStorage_BacksPartitionStore(t *testing.T) {
	client := testRedisClient(t)
	prefix := "test:" + uuid.NewString() + ":"
	t.Cleanup(func() { client.Del(context.Background(), prefix+"calledCustomers") })
	ctx := context.Background()

	first := roster.NewPartitionStore(NewRedisPartitionStorage(client, prefix), "calledCustomers", nil)
	first.MarkCalled(ctx, []string{"5551234567"})

	second := roster.NewPartitionStore(NewRedisPartitionStorage(client, prefix), "calledCustomers", nil)
	assert.Equal(t, roster.NewPhoneSet("5551234567"), second.Load(ctx))
}
