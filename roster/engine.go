package roster

import (
	"bytes"
	"context"
	"log"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StoreOption is a store filter choice with the size of its unfiltered population.
type StoreOption struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Engine owns the canonical customer collection and derives every roster from it together with
// the partition store. Derived rosters are never cached: each query recomputes from the current
// collection and membership.
type Engine struct {
	mu         sync.RWMutex
	customers  []Customer
	planKeys   [][]byte
	byPhone    map[string]int
	stores     []StoreOption
	plans      []string
	generation uint64

	partition *PartitionStore
	logger    *log.Logger
	tag       language.Tag
}

// NewEngine creates an empty engine over the given partition store.
func NewEngine(partition *PartitionStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		byPhone:   make(map[string]int),
		partition: partition,
		logger:    logger,
		tag:       language.English,
	}
}

// Partition returns the store that holds called membership.
func (e *Engine) Partition() *PartitionStore {
	return e.partition
}

// Replace swaps in a new customer collection and returns how many customers were kept. A phone
// number seen twice keeps its first record.
func (e *Engine) Replace(customers []Customer) int {
	col := collate.New(e.tag)
	var buf collate.Buffer

	kept := make([]Customer, 0, len(customers))
	byPhone := make(map[string]int, len(customers))
	planKeys := make([][]byte, 0, len(customers))
	storeCounts := make(map[string]int)
	planSet := make(map[string]struct{})

	for _, c := range customers {
		if _, dup := byPhone[c.PhoneNumber]; dup {
			e.logger.Printf("roster: duplicate customer %s ignored", c.PhoneNumber)
			continue
		}
		byPhone[c.PhoneNumber] = len(kept)
		kept = append(kept, c)
		planKeys = append(planKeys, bytes.Clone(col.KeyFromString(&buf, c.CurrentPlan)))
		buf.Reset()
		storeCounts[c.StoreName]++
		planSet[c.CurrentPlan] = struct{}{}
	}

	stores := make([]StoreOption, 0, len(storeCounts)+1)
	for name, n := range storeCounts {
		stores = append(stores, StoreOption{Name: name, Count: n})
	}
	slices.SortFunc(stores, func(a, b StoreOption) int { return col.CompareString(a.Name, b.Name) })
	stores = slices.Insert(stores, 0, StoreOption{Name: AllOption, Count: len(kept)})

	plans := make([]string, 0, len(planSet))
	for p := range planSet {
		plans = append(plans, p)
	}
	slices.SortFunc(plans, col.CompareString)

	e.mu.Lock()
	e.customers = kept
	e.planKeys = planKeys
	e.byPhone = byPhone
	e.stores = stores
	e.plans = plans
	e.generation++
	e.mu.Unlock()

	return len(kept)
}

// Len returns the size of the full collection.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.customers)
}

// Generation increases every time the collection is replaced.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Customer looks up a customer of the full collection by phone number.
func (e *Engine) Customer(phone string) (Customer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.byPhone[phone]
	if !ok {
		return Customer{}, false
	}
	return e.customers[i], true
}

// StoreOptions lists every store of the full collection with its count, preceded by the "all"
// entry carrying the total. Filters never narrow this list.
func (e *Engine) StoreOptions() []StoreOption {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.stores)
}

// PlanOptions lists every plan of the full collection in collated order.
func (e *Engine) PlanOptions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.plans)
}

// VisibleRoster returns the customers on side that match filter, ordered by sort. A customer is
// on the called side exactly when the partition store holds its phone number, so the two sides
// never share a row.
func (e *Engine) VisibleRoster(side Side, filter Filter, sort SortState) Roster {
	e.mu.RLock()
	defer e.mu.RUnlock()

	order := make([]int, 0, len(e.customers))
	for i, c := range e.customers {
		if e.onSide(c.PhoneNumber, side) && filter.Matches(c) {
			order = append(order, i)
		}
	}
	e.sortIndices(order, sort)
	return Roster{customers: e.customers, order: order}
}

// MarkCalled moves known phones to the called side and returns how many changed sides.
// Unknown phones are ignored.
func (e *Engine) MarkCalled(ctx context.Context, phones []string) int {
	return e.partition.MarkCalled(ctx, e.known(phones))
}

// MarkNotCalled moves known phones back to the not-called side.
func (e *Engine) MarkNotCalled(ctx context.Context, phones []string) int {
	return e.partition.MarkNotCalled(ctx, e.known(phones))
}

// RemoveSingleFromCalled un-marks one phone regardless of any selection.
func (e *Engine) RemoveSingleFromCalled(ctx context.Context, phone string) bool {
	return e.MarkNotCalled(ctx, []string{phone}) == 1
}

// IsVisible reports whether phone is a row of the roster described by side and filter.
func (e *Engine) IsVisible(phone string, side Side, filter Filter) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.byPhone[phone]
	if !ok {
		return false
	}
	return e.onSide(phone, side) && filter.Matches(e.customers[i])
}

func (e *Engine) onSide(phone string, side Side) bool {
	return e.partition.IsCalled(phone) == (side == Called)
}

func (e *Engine) known(phones []string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if _, ok := e.byPhone[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// sortIndices orders indices ascending with a stable sort over collection order and reverses
// the result for descending, so the two directions are exact mirrors. Caller holds e.mu.
func (e *Engine) sortIndices(order []int, sort SortState) {
	var cmp func(a, b int) int
	switch sort.Field {
	case SortByPlan:
		cmp = func(a, b int) int { return bytes.Compare(e.planKeys[a], e.planKeys[b]) }
	default:
		cmp = func(a, b int) int {
			return e.customers[a].ActivationDate.Compare(e.customers[b].ActivationDate)
		}
	}
	slices.SortStableFunc(order, cmp)
	if sort.Direction == Descending {
		slices.Reverse(order)
	}
}

// Roster is an ordered, randomly accessible view over the collection.
type Roster struct {
	customers []Customer
	order     []int
}

func (r Roster) Len() int {
	return len(r.order)
}

// At returns the customer at position i of the ordered view.
func (r Roster) At(i int) Customer {
	return r.customers[r.order[i]]
}

// Customers materialises the whole view. Prefer At for large rosters.
func (r Roster) Customers() []Customer {
	out := make([]Customer, len(r.order))
	for i, idx := range r.order {
		out[i] = r.customers[idx]
	}
	return out
}

func (r Roster) PhoneNumbers() []string {
	out := make([]string, len(r.order))
	for i, idx := range r.order {
		out[i] = r.customers[idx].PhoneNumber
	}
	return out
}

// PhoneSet returns the phone numbers of the view as a set.
func (r Roster) PhoneSet() PhoneSet {
	s := make(PhoneSet, len(r.order))
	for _, idx := range r.order {
		s[r.customers[idx].PhoneNumber] = struct{}{}
	}
	return s
}
