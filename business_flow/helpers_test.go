package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/Eligibility-Roster/app/services"
	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/roster"
)

type fakeResolver struct {
	mu        sync.Mutex
	customers []roster.Customer
	checkErr  error
	bulkErr   error
	block     chan struct{}
	checks    int
}

func newFakeResolver(customers ...roster.Customer) *fakeResolver {
	return &fakeResolver{customers: customers}
}

func (r *fakeResolver) Check(ctx context.Context, phone string) (services.EligibilityResult, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return services.EligibilityResult{}, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks++
	if r.checkErr != nil {
		return services.EligibilityResult{}, r.checkErr
	}
	for _, c := range r.customers {
		if c.PhoneNumber == phone {
			found := c
			return services.EligibilityResult{IsEligible: true, Customer: &found}, nil
		}
	}
	return services.EligibilityResult{}, nil
}

func (r *fakeResolver) BulkEligibleCustomers(context.Context) ([]roster.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bulkErr != nil {
		return nil, r.bulkErr
	}
	return append([]roster.Customer(nil), r.customers...), nil
}

func (r *fakeResolver) Seed(context.Context, []*models.EligibleCustomer) (int64, error) {
	return 0, nil
}

type memPartitionStorage struct {
	mu     sync.Mutex
	values map[string][]string
	getErr error
}

func (m *memPartitionStorage) Get(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return append([]string(nil), m.values[key]...), nil
}

func (m *memPartitionStorage) Set(_ context.Context, key string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	m.values[key] = append([]string(nil), members...)
	return nil
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mainStCustomer() roster.Customer {
	return roster.Customer{
		PhoneNumber:    "5551234567",
		Name:           "Dana Reyes",
		StoreName:      "Main St",
		CurrentPlan:    "Basic",
		ActivationDate: day("2024-01-10"),
		MonthlySavings: 25,
		YearlySavings:  300,
	}
}

func fixtureCustomers() []roster.Customer {
	return []roster.Customer{
		mainStCustomer(),
		{PhoneNumber: "5550000001", Name: "Ari Cole", StoreName: "Main St", CurrentPlan: "Unlimited", ActivationDate: day("2024-03-02"), MonthlySavings: 40, YearlySavings: 480},
		{PhoneNumber: "5550000002", Name: "Bo Lin", StoreName: "Harbor", CurrentPlan: "basic plus", ActivationDate: day("2023-11-20"), MonthlySavings: 10, YearlySavings: 120},
		{PhoneNumber: "5550000003", Name: "Cy Park", StoreName: "Harbor", CurrentPlan: "Basic", ActivationDate: day("2024-01-11"), MonthlySavings: 15, YearlySavings: 180},
		{PhoneNumber: "5550000004", Name: "Eve Moss", StoreName: "Airport", CurrentPlan: "Prepaid", ActivationDate: day("2024-02-14"), MonthlySavings: 5.5, YearlySavings: 66},
		{PhoneNumber: "5550000005", Name: "Fin Shaw", StoreName: "Main St", CurrentPlan: "Basic", ActivationDate: day("2023-12-31"), MonthlySavings: 15, YearlySavings: 180},
	}
}

// generatedCustomers returns n customers activated on consecutive days, oldest first.
func generatedCustomers(n int) []roster.Customer {
	base := day("2020-01-01")
	out := make([]roster.Customer, n)
	for i := range out {
		out[i] = roster.Customer{
			PhoneNumber:    fmt.Sprintf("555%07d", i),
			Name:           fmt.Sprintf("Customer %d", i),
			StoreName:      "Main St",
			CurrentPlan:    "Basic",
			ActivationDate: base.AddDate(0, 0, i),
			MonthlySavings: 25,
			YearlySavings:  300,
		}
	}
	return out
}

func newTestEngine(t *testing.T, customers []roster.Customer) *roster.Engine {
	t.Helper()
	logger, _ := quietLogger()
	engine := roster.NewEngine(roster.NewPartitionStore(&memPartitionStorage{}, "calledCustomers", logger), logger)
	engine.Replace(customers)
	return engine
}

func newTestSession(engine *roster.Engine, id, name string) *roster.Session {
	return roster.NewSessionRegistry(engine).Get(roster.Actor{ID: id, DisplayName: name, Verified: true})
}
