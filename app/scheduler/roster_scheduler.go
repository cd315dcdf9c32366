// Package scheduler runs the periodic background jobs of the service
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/amirphl/Eligibility-Roster/roster"
)

// CustomerRefresher reloads the eligible-customer collection
type CustomerRefresher interface {
	RefreshCustomers(ctx context.Context) (int, error)
}

// MembershipLoader reloads the called partition from its backend
type MembershipLoader interface {
	Load(ctx context.Context) roster.PhoneSet
}

// RosterScheduler periodically refreshes the roster from its backends and drops idle staff
// sessions
type RosterScheduler struct {
	customers  CustomerRefresher
	membership MembershipLoader
	sessions   *roster.SessionRegistry
	logger     *log.Logger

	interval      time.Duration
	sweepInterval time.Duration
	idleTimeout   time.Duration
}

// NewRosterScheduler creates the scheduler. membership and sessions may be nil to skip those jobs.
func NewRosterScheduler(
	customers CustomerRefresher,
	membership MembershipLoader,
	sessions *roster.SessionRegistry,
	logger *log.Logger,
	interval time.Duration,
	idleTimeout time.Duration,
) *RosterScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if idleTimeout <= 0 {
		idleTimeout = 12 * time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}
	sweepInterval := min(idleTimeout/4, time.Hour)
	if sweepInterval <= 0 {
		sweepInterval = idleTimeout
	}
	return &RosterScheduler{
		customers:     customers,
		membership:    membership,
		sessions:      sessions,
		logger:        logger,
		interval:      interval,
		sweepInterval: sweepInterval,
		idleTimeout:   idleTimeout,
	}
}

// Start launches the refresh and sweep loops and returns a stop function that waits for both
// to exit
func (s *RosterScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.loop(ctx, s.interval, s.refreshOnce)
	}()

	if s.sessions != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, s.sweepInterval, s.sweepOnce)
		}()
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

func (s *RosterScheduler) loop(ctx context.Context, every time.Duration, run func(context.Context)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (s *RosterScheduler) refreshOnce(ctx context.Context) {
	if s.customers != nil {
		n, err := s.customers.RefreshCustomers(ctx)
		if err != nil {
			s.logger.Printf("scheduler: customer refresh failed: %v", err)
		} else {
			s.logger.Printf("scheduler: refreshed %d customers", n)
		}
	}
	if s.membership != nil {
		s.membership.Load(ctx)
	}
}

func (s *RosterScheduler) sweepOnce(context.Context) {
	if n := s.sessions.Sweep(s.idleTimeout); n > 0 {
		s.logger.Printf("scheduler: dropped %d idle sessions", n)
	}
}
