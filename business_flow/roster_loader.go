package businessflow

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/amirphl/Eligibility-Roster/app/services"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/roster"
)

// LoadSummary reports the state after a load
type LoadSummary struct {
	Customers int
	Called    int
	Lookups   int
}

// RosterLoader fills the engine, the called partition and the lookup history from their
// backends
type RosterLoader struct {
	resolver services.EligibilityResolver
	engine   *roster.Engine
	history  *lookuplog.Log
	logger   *log.Logger
}

func NewRosterLoader(resolver services.EligibilityResolver, engine *roster.Engine, history *lookuplog.Log, logger *log.Logger) *RosterLoader {
	if logger == nil {
		logger = log.Default()
	}
	return &RosterLoader{resolver: resolver, engine: engine, history: history, logger: logger}
}

// Load reads customers, membership and history concurrently. Membership and history faults are
// logged by their stores; only a failed customer read is returned, leaving the previous
// collection in place.
func (l *RosterLoader) Load(ctx context.Context) (LoadSummary, error) {
	var g errgroup.Group
	g.Go(func() error {
		_, err := l.RefreshCustomers(ctx)
		return err
	})
	g.Go(func() error {
		l.engine.Partition().Load(ctx)
		return nil
	})
	if l.history != nil {
		g.Go(func() error {
			l.history.Load(ctx)
			return nil
		})
	}
	err := g.Wait()

	summary := LoadSummary{
		Customers: l.engine.Len(),
		Called:    l.engine.Partition().Len(),
	}
	if l.history != nil {
		summary.Lookups = l.history.Len()
	}
	rosterCalled.Set(float64(summary.Called))
	return summary, err
}

// RefreshCustomers replaces the engine collection with the resolver's current bulk list
func (l *RosterLoader) RefreshCustomers(ctx context.Context) (int, error) {
	customers, err := l.resolver.BulkEligibleCustomers(ctx)
	if err != nil {
		l.logger.Printf("roster: customer refresh failed, keeping %d customers: %v", l.engine.Len(), err)
		return l.engine.Len(), fmt.Errorf("refresh customers: %w", err)
	}
	n := l.engine.Replace(customers)
	rosterCustomers.Set(float64(n))
	return n, nil
}
