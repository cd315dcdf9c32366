package roster

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_CallListScenario(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	ctx := context.Background()
	notCalled := NewView(engine, NotCalled)
	called := NewView(engine, Called)

	require.Contains(t, notCalled.Roster().PhoneNumbers(), "5551234567")

	assert.True(t, notCalled.ToggleSelect("5551234567"))
	assert.Equal(t, 1, notCalled.MoveSelectedToCalled(ctx))
	assert.Empty(t, notCalled.Selection(), "selection is cleared after a move")

	assert.NotContains(t, notCalled.Roster().PhoneNumbers(), "5551234567")
	assert.Contains(t, called.Roster().PhoneNumbers(), "5551234567")

	assert.True(t, engine.RemoveSingleFromCalled(ctx, "5551234567"))
	assert.Contains(t, notCalled.Roster().PhoneNumbers(), "5551234567")
	assert.NotContains(t, called.Roster().PhoneNumbers(), "5551234567")
}

func TestView_DoubleSubmitIsSafe(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	ctx := context.Background()
	view := NewView(engine, NotCalled)

	view.ToggleSelect("5550000001")
	view.ToggleSelect("5550000002")
	assert.Equal(t, 2, view.MoveSelectedToCalled(ctx))
	membership := engine.Partition().Snapshot()

	assert.Equal(t, 0, view.MoveSelectedToCalled(ctx))
	assert.Equal(t, membership, engine.Partition().Snapshot())
}

func TestView_MoveSelectedBack(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	ctx := context.Background()
	engine.MarkCalled(ctx, []string{"5550000001", "5550000002"})

	view := NewView(engine, Called)
	view.ToggleSelect("5550000002")
	assert.Equal(t, 1, view.MoveSelected(ctx))
	assert.Equal(t, []string{"5550000001"}, view.Roster().PhoneNumbers())
}

func TestView_SelectOnlyVisibleRows(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	view := NewView(engine, NotCalled)
	require.NoError(t, view.SetFilter(Filter{Store: "Harbor"}))

	assert.False(t, view.ToggleSelect("5551234567"), "Main St row is filtered out")
	assert.False(t, view.ToggleSelect("0000000000"), "unknown phone")
	assert.True(t, view.ToggleSelect("5550000002"))
	assert.False(t, view.ToggleSelect("5550000002"), "second toggle deselects")
	assert.Empty(t, view.Selection())
}

func TestView_FilterChangePrunesSelection(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	view := NewView(engine, NotCalled)

	view.ToggleSelect("5551234567")
	view.ToggleSelect("5550000002")
	before := view.Version()

	require.NoError(t, view.SetFilter(Filter{Store: "Harbor"}))
	assert.Equal(t, []string{"5550000002"}, view.Selection())
	assert.NotEqual(t, before, view.Version())

	unchanged := view.Version()
	require.NoError(t, view.SetFilter(Filter{Store: "Harbor", Plan: AllOption}))
	assert.Equal(t, unchanged, view.Version(), "an equivalent filter is not a change")
}

func TestView_MembershipChangePrunesSelection(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	ctx := context.Background()
	engine.MarkCalled(ctx, []string{"5551234567", "5550000001"})

	called := NewView(engine, Called)
	require.True(t, called.ToggleSelect("5551234567"))
	require.True(t, called.ToggleSelect("5550000001"))

	assert.True(t, engine.RemoveSingleFromCalled(ctx, "5551234567"))
	assert.NotContains(t, called.Roster().PhoneNumbers(), "5551234567")
	assert.Equal(t, []string{"5550000001"}, called.Selection())

	// Another session moves the remaining row back before this one submits.
	other := NewView(engine, Called)
	require.True(t, other.ToggleSelect("5550000001"))
	assert.Equal(t, 1, other.MoveSelectedBack(ctx))

	assert.Equal(t, 0, called.MoveSelectedBack(ctx))
	assert.Empty(t, called.Selection())
	assert.False(t, engine.Partition().IsCalled("5550000001"))
}

func TestView_ReloadPrunesSelection(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	view := NewView(engine, NotCalled)
	require.True(t, view.ToggleSelect("5550000004"))

	kept := fixtureCustomers()[:3]
	engine.Replace(kept)
	assert.Empty(t, view.Selection(), "a customer dropped by the reload is no longer selected")
}

func TestView_InvalidDateRange(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	view := NewView(engine, NotCalled)

	err := view.SetFilter(Filter{From: dayPtr("2024-02-01"), To: dayPtr("2024-01-01")})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Equal(t, Filter{}, view.Filter())
}

func TestView_ToggleSort(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	view := NewView(engine, NotCalled)
	assert.Equal(t, DefaultSort(), view.Sort())

	assert.Equal(t, SortState{Field: SortByActivationDate, Direction: Ascending}, view.ToggleSort(SortByActivationDate))
	assert.Equal(t, SortState{Field: SortByPlan, Direction: Ascending}, view.ToggleSort(SortByPlan))
	assert.Equal(t, SortState{Field: SortByPlan, Direction: Descending}, view.ToggleSort(SortByPlan))
}

func TestSessionRegistry(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	registry := NewSessionRegistry(engine)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	a := registry.Get(Actor{ID: "u1", Email: "a@example.com"})
	assert.Same(t, a, registry.Get(Actor{ID: "u1", DisplayName: "Alex"}))
	assert.Equal(t, "Alex", a.Actor().Identity())

	registry.Get(Actor{ID: "u2"})
	now = now.Add(time.Hour)
	registry.Get(Actor{ID: "u2"})

	assert.Equal(t, 1, registry.Sweep(30*time.Minute))
	assert.Equal(t, 1, registry.Len())
}

func TestSession_DoIsSerialised(t *testing.T) {
	engine := newTestEngine(t, fixtureCustomers())
	session := NewSessionRegistry(engine).Get(Actor{ID: "u1"})

	var wg sync.WaitGroup
	for _, phone := range []string{"5550000001", "5550000002", "5550000003", "5550000004"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = session.Do(NotCalled, func(v *View, _ *Window) error {
				v.ToggleSelect(phone)
				return nil
			})
		}()
	}
	wg.Wait()

	_ = session.Do(NotCalled, func(v *View, _ *Window) error {
		assert.Len(t, v.Selection(), 4)
		return nil
	})
}

func TestSession_BeginCheckCancelsPrevious(t *testing.T) {
	session := NewSessionRegistry(newTestEngine(t, nil)).Get(Actor{ID: "u1"})

	first, releaseFirst := session.BeginCheck(context.Background())
	second, releaseSecond := session.BeginCheck(context.Background())
	defer releaseSecond()

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())

	releaseFirst()
	assert.NoError(t, second.Err(), "releasing a superseded check leaves the newer one alone")
}
