// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/Eligibility-Roster/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Count(ctx context.Context, filter F) (int64, error)
}

// EligibleCustomerRepository defines operations for the eligibility table
type EligibleCustomerRepository interface {
	Repository[models.EligibleCustomer, models.EligibleCustomerFilter]
	ByPhoneNumber(ctx context.Context, phoneNumber string) (*models.EligibleCustomer, error)
	ListAll(ctx context.Context) ([]*models.EligibleCustomer, error)
	UpsertBatch(ctx context.Context, customers []*models.EligibleCustomer) (int64, error)
}

// LookupRecordRepository defines operations for the append-only lookup history
type LookupRecordRepository interface {
	Repository[models.LookupRecord, models.LookupRecordFilter]
	ListAll(ctx context.Context) ([]*models.LookupRecord, error)
}

// PartitionSetRepository stores whole phone-number sets by key and applies set deltas in place
type PartitionSetRepository interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, members []string) error
	Add(ctx context.Context, key string, members []string) error
	Remove(ctx context.Context, key string, members []string) error
}
