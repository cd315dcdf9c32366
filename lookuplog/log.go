package lookuplog

import (
	"context"
	"log"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amirphl/Eligibility-Roster/roster"
)

// Storage is the durable append log behind Log. Append returns the record as stored, with the
// identifier and timestamp assigned by the backend.
type Storage interface {
	Append(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context) ([]Record, error)
}

// Log keeps every lookup in timestamp order. Records are never updated, merged or removed.
type Log struct {
	mu      sync.RWMutex
	records []Record

	storage Storage
	logger  *log.Logger
	now     func() time.Time
}

// New creates an empty log. A nil storage keeps records in memory only.
func New(storage Storage, logger *log.Logger) *Log {
	if logger == nil {
		logger = log.Default()
	}
	return &Log{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load replaces the in-memory history with the stored one and returns the number of records.
// A storage fault keeps the current history and is only logged.
func (l *Log) Load(ctx context.Context) int {
	if l.storage == nil {
		return l.Len()
	}
	stored, err := l.storage.List(ctx)
	if err != nil {
		l.logger.Printf("lookup log: load failed, keeping %d in-memory records: %v", l.Len(), err)
		return l.Len()
	}

	records := make([]Record, 0, len(stored))
	for _, r := range stored {
		if err := r.Validate(); err != nil {
			l.logger.Printf("lookup log: skipping stored record %s: %v", r.ID, err)
			continue
		}
		records = append(records, r.clone())
	}
	slices.SortStableFunc(records, func(a, b Record) int { return a.Timestamp.Compare(b.Timestamp) })

	l.mu.Lock()
	l.records = records
	l.mu.Unlock()
	return len(records)
}

// Append adds one record and returns it as kept. Duplicate lookups of the same phone are all
// retained. If the backend write fails the record is still kept in memory with a locally
// assigned id and timestamp.
func (l *Log) Append(ctx context.Context, record Record) (Record, error) {
	if err := record.Validate(); err != nil {
		return Record{}, err
	}
	record = record.clone()

	stored := record
	if l.storage != nil {
		var err error
		stored, err = l.storage.Append(ctx, record)
		if err != nil {
			l.logger.Printf("lookup log: append for %s failed, keeping it in memory: %v", record.PhoneNumber, err)
			stored = record
		}
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = l.now()
	}

	l.mu.Lock()
	i := sort.Search(len(l.records), func(i int) bool {
		return l.records[i].Timestamp.After(stored.Timestamp)
	})
	l.records = slices.Insert(l.records, i, stored)
	l.mu.Unlock()

	return stored.clone(), nil
}

// Len returns the number of records in the full log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// View returns the records matching filter ordered by timestamp in direction.
func (l *Log) View(filter Filter, direction roster.SortDirection) []Record {
	l.mu.RLock()
	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		if filter.Matches(r) {
			out = append(out, r.clone())
		}
	}
	l.mu.RUnlock()

	if direction != roster.Ascending {
		slices.Reverse(out)
	}
	return out
}

// DistinctCheckers lists every checker identity of the full log in ascending order.
func (l *Log) DistinctCheckers() []string {
	l.mu.RLock()
	seen := make(map[string]struct{})
	for _, r := range l.records {
		if r.CheckedBy != "" {
			seen[r.CheckedBy] = struct{}{}
		}
	}
	l.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func (r Record) clone() Record {
	if r.Customer != nil {
		c := *r.Customer
		r.Customer = &c
	}
	return r
}
