package roster

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	mu      sync.Mutex
	values  map[string][]string
	getErr  error
	setErr  error
	setCall int
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string][]string)}
}

func (m *memStorage) Get(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return append([]string(nil), m.values[key]...), nil
}

func (m *memStorage) Set(_ context.Context, key string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = append([]string(nil), members...)
	return nil
}

// memDeltaStorage keeps a real set per key so concurrent writers merge.
type memDeltaStorage struct {
	*memStorage
}

func (m memDeltaStorage) Add(_ context.Context, key string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := NewPhoneSet(m.values[key]...)
	for _, p := range members {
		set[p] = struct{}{}
	}
	m.values[key] = set.Sorted()
	return nil
}

func (m memDeltaStorage) Remove(_ context.Context, key string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := NewPhoneSet(m.values[key]...)
	for _, p := range members {
		delete(set, p)
	}
	m.values[key] = set.Sorted()
	return nil
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestPartitionStore_MarkCalledIsIdempotent(t *testing.T) {
	logger, _ := quietLogger()
	store := NewPartitionStore(newMemStorage(), "calledCustomers", logger)
	ctx := context.Background()

	assert.Equal(t, 1, store.MarkCalled(ctx, []string{"5551234567"}))
	first := store.Snapshot()
	version := store.Version()

	assert.Equal(t, 0, store.MarkCalled(ctx, []string{"5551234567"}))
	assert.Equal(t, first, store.Snapshot())
	assert.Equal(t, version, store.Version(), "a no-op mark must not bump the version")
	assert.True(t, store.IsCalled("5551234567"))
}

func TestPartitionStore_MarkNotCalled(t *testing.T) {
	logger, _ := quietLogger()
	store := NewPartitionStore(newMemStorage(), "calledCustomers", logger)
	ctx := context.Background()

	store.MarkCalled(ctx, []string{"5550000001", "5550000002"})
	assert.Equal(t, 1, store.MarkNotCalled(ctx, []string{"5550000001", "5559999999"}))
	assert.Equal(t, 0, store.MarkNotCalled(ctx, []string{"5550000001"}))
	assert.False(t, store.IsCalled("5550000001"))
	assert.True(t, store.IsCalled("5550000002"))
	assert.Equal(t, 1, store.Len())
}

func TestPartitionStore_RoundTrip(t *testing.T) {
	logger, _ := quietLogger()
	storage := newMemStorage()
	ctx := context.Background()

	want := NewPhoneSet("5550000001", "5550000002", "5550000003")
	NewPartitionStore(storage, "calledCustomers", logger).Persist(ctx, want)

	reloaded := NewPartitionStore(storage, "calledCustomers", logger)
	assert.Equal(t, want, reloaded.Load(ctx))
	assert.True(t, reloaded.IsCalled("5550000002"))
}

func TestPartitionStore_WritesThroughOnMark(t *testing.T) {
	logger, _ := quietLogger()
	storage := newMemStorage()
	ctx := context.Background()

	store := NewPartitionStore(storage, "calledCustomers", logger)
	store.MarkCalled(ctx, []string{"5550000002", "5550000001"})

	got, err := storage.Get(ctx, "calledCustomers")
	require.NoError(t, err)
	assert.Equal(t, []string{"5550000001", "5550000002"}, got)
}

func TestPartitionStore_LoadFailureIsFailOpen(t *testing.T) {
	logger, buf := quietLogger()
	storage := newMemStorage()
	storage.getErr = errors.New("connection refused")

	store := NewPartitionStore(storage, "calledCustomers", logger)
	set := store.Load(context.Background())

	assert.Empty(t, set)
	assert.Contains(t, buf.String(), "connection refused")
}

func TestPartitionStore_PersistFailureKeepsMemory(t *testing.T) {
	logger, buf := quietLogger()
	storage := newMemStorage()
	storage.setErr = errors.New("disk full")
	ctx := context.Background()

	store := NewPartitionStore(storage, "calledCustomers", logger)
	assert.Equal(t, 1, store.MarkCalled(ctx, []string{"5550000001"}))
	assert.True(t, store.IsCalled("5550000001"))
	assert.Contains(t, buf.String(), "disk full")

	// A failing reload keeps the last known membership.
	storage.getErr = errors.New("timeout")
	assert.Equal(t, NewPhoneSet("5550000001"), store.Load(ctx))
}

func TestPartitionStore_DeltaStorageMergesSessions(t *testing.T) {
	logger, _ := quietLogger()
	storage := memDeltaStorage{newMemStorage()}
	ctx := context.Background()

	a := NewPartitionStore(storage, "calledCustomers", logger)
	b := NewPartitionStore(storage, "calledCustomers", logger)

	a.MarkCalled(ctx, []string{"5550000001"})
	b.MarkCalled(ctx, []string{"5550000002"})

	got, err := storage.Get(ctx, "calledCustomers")
	require.NoError(t, err)
	assert.Equal(t, []string{"5550000001", "5550000002"}, got)
	assert.Equal(t, 0, storage.setCall, "delta storage must not receive whole-set writes")
}

func TestPartitionStore_NilStorageIsMemoryOnly(t *testing.T) {
	store := NewPartitionStore(nil, "calledCustomers", nil)
	ctx := context.Background()

	store.MarkCalled(ctx, []string{"5550000001"})
	assert.Equal(t, NewPhoneSet("5550000001"), store.Load(ctx))
}

// gatedDeltaStorage parks the first Add until release is closed.
type gatedDeltaStorage struct {
	memDeltaStorage
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedDeltaStorage() *gatedDeltaStorage {
	return &gatedDeltaStorage{
		memDeltaStorage: memDeltaStorage{newMemStorage()},
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedDeltaStorage) Add(ctx context.Context, key string, members []string) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.memDeltaStorage.Add(ctx, key, members)
}

func TestPartitionStore_ConcurrentMarksReachBackendInMemoryOrder(t *testing.T) {
	logger, _ := quietLogger()
	backend := newGatedDeltaStorage()
	store := NewPartitionStore(backend, "calledCustomers", logger)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.MarkCalled(ctx, []string{"5551234567"})
	}()
	<-backend.entered

	go func() {
		defer wg.Done()
		store.MarkNotCalled(ctx, []string{"5551234567"})
	}()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, store.IsCalled("5551234567"), "the unmark waits until the mark reached the backend")

	close(backend.release)
	wg.Wait()

	stored, err := backend.Get(ctx, "calledCustomers")
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot().Sorted(), stored)
	assert.False(t, store.IsCalled("5551234567"))
}

func TestPartitionStore_LoadWaitsForPendingWrite(t *testing.T) {
	logger, _ := quietLogger()
	backend := newGatedDeltaStorage()
	store := NewPartitionStore(backend, "calledCustomers", logger)
	ctx := context.Background()

	marked := make(chan int)
	go func() { marked <- store.MarkCalled(ctx, []string{"5551234567"}) }()
	<-backend.entered

	loaded := make(chan PhoneSet)
	go func() { loaded <- store.Load(ctx) }()

	select {
	case <-loaded:
		t.Fatal("load returned while a mark was still being written")
	case <-time.After(20 * time.Millisecond):
	}

	close(backend.release)
	assert.Equal(t, 1, <-marked)
	assert.True(t, (<-loaded).Has("5551234567"))
	assert.True(t, store.IsCalled("5551234567"))
}
