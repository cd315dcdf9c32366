package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/repository"
	"github.com/amirphl/Eligibility-Roster/roster"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// EligibilityResult is the outcome of one eligibility check
type EligibilityResult struct {
	IsEligible bool             `json:"is_eligible"`
	Customer   *roster.Customer `json:"customer_info,omitempty"`
}

// EligibilityResolver answers eligibility questions from the eligibility table
type EligibilityResolver interface {
	Check(ctx context.Context, phoneNumber string) (EligibilityResult, error)
	BulkEligibleCustomers(ctx context.Context) ([]roster.Customer, error)
	Seed(ctx context.Context, customers []*models.EligibleCustomer) (int64, error)
}

// EligibilityResolverImpl reads the eligibility table and keeps the bulk list in Redis
type EligibilityResolverImpl struct {
	repo     repository.EligibleCustomerRepository
	cache    *redis.Client
	cacheKey string
	cacheTTL time.Duration
	logger   *log.Logger
}

// NewEligibilityResolver creates a resolver. cache may be nil, in which case every bulk read
// goes to the database.
func NewEligibilityResolver(repo repository.EligibleCustomerRepository, cache *redis.Client, cacheTTL time.Duration, logger *log.Logger) *EligibilityResolverImpl {
	if logger == nil {
		logger = log.Default()
	}
	return &EligibilityResolverImpl{
		repo:     repo,
		cache:    cache,
		cacheKey: utils.EligibleCustomersCacheKey,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Check looks up one canonical phone number
func (r *EligibilityResolverImpl) Check(ctx context.Context, phoneNumber string) (EligibilityResult, error) {
	row, err := r.repo.ByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("eligibility check: %w", err)
	}
	if row == nil {
		return EligibilityResult{IsEligible: false}, nil
	}
	c := CustomerFromModel(row)
	return EligibilityResult{IsEligible: true, Customer: &c}, nil
}

// BulkEligibleCustomers returns every eligible customer, from cache when possible
func (r *EligibilityResolverImpl) BulkEligibleCustomers(ctx context.Context) ([]roster.Customer, error) {
	if customers, ok := r.readCache(ctx); ok {
		return customers, nil
	}

	rows, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("bulk eligible customers: %w", err)
	}
	customers := make([]roster.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, CustomerFromModel(row))
	}

	r.writeCache(ctx, customers)
	return customers, nil
}

// Seed upserts customers into the eligibility table and drops the cached bulk list
func (r *EligibilityResolverImpl) Seed(ctx context.Context, customers []*models.EligibleCustomer) (int64, error) {
	n, err := r.repo.UpsertBatch(ctx, customers)
	if err != nil {
		return 0, err
	}
	r.InvalidateCache(ctx)
	return n, nil
}

// InvalidateCache removes the cached bulk list
func (r *EligibilityResolverImpl) InvalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, r.cacheKey).Err(); err != nil {
		r.logger.Printf("eligibility cache: invalidate failed: %v", err)
	}
}

func (r *EligibilityResolverImpl) readCache(ctx context.Context) ([]roster.Customer, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, r.cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Printf("eligibility cache: read failed: %v", err)
		}
		return nil, false
	}
	var customers []roster.Customer
	if err := json.Unmarshal(raw, &customers); err != nil {
		r.logger.Printf("eligibility cache: corrupt entry dropped: %v", err)
		r.InvalidateCache(ctx)
		return nil, false
	}
	return customers, true
}

func (r *EligibilityResolverImpl) writeCache(ctx context.Context, customers []roster.Customer) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(customers)
	if err != nil {
		r.logger.Printf("eligibility cache: encode failed: %v", err)
		return
	}
	if err := r.cache.Set(ctx, r.cacheKey, raw, r.cacheTTL).Err(); err != nil {
		r.logger.Printf("eligibility cache: write failed: %v", err)
	}
}

// CustomerFromModel converts an eligibility row into a roster customer
func CustomerFromModel(row *models.EligibleCustomer) roster.Customer {
	return roster.Customer{
		PhoneNumber:    row.PhoneNumber,
		Name:           row.Name,
		StoreName:      row.StoreName,
		CurrentPlan:    row.CurrentPlan,
		ActivationDate: utils.DateOnly(row.ActivationDate),
		MonthlySavings: row.MonthlySavings,
		YearlySavings:  row.YearlySavings,
	}
}
