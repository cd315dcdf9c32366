package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Eligibility-Roster/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EligibleCustomerRepositoryImpl implements EligibleCustomerRepository interface
type EligibleCustomerRepositoryImpl struct {
	*BaseRepository[models.EligibleCustomer, models.EligibleCustomerFilter]
}

// NewEligibleCustomerRepository creates a new eligible customer repository
func NewEligibleCustomerRepository(db *gorm.DB) EligibleCustomerRepository {
	return &EligibleCustomerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EligibleCustomer, models.EligibleCustomerFilter](db),
	}
}

// ByPhoneNumber retrieves a customer by canonical phone number
func (r *EligibleCustomerRepositoryImpl) ByPhoneNumber(ctx context.Context, phoneNumber string) (*models.EligibleCustomer, error) {
	customers, err := r.ByFilter(ctx, models.EligibleCustomerFilter{PhoneNumber: &phoneNumber}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible customer by phone number: %w", err)
	}

	if len(customers) == 0 {
		return nil, nil
	}

	return customers[0], nil
}

// ListAll returns the whole eligibility table in insertion order
func (r *EligibleCustomerRepositoryImpl) ListAll(ctx context.Context) ([]*models.EligibleCustomer, error) {
	customers, err := r.ByFilter(ctx, models.EligibleCustomerFilter{}, "id ASC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible customers: %w", err)
	}
	return customers, nil
}

// UpsertBatch inserts customers and refreshes the attributes of phone numbers that already exist.
// All batches commit together or not at all.
func (r *EligibleCustomerRepositoryImpl) UpsertBatch(ctx context.Context, customers []*models.EligibleCustomer) (int64, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	var affected int64
	err := WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		result := r.getDB(txCtx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "phone_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "store_name", "current_plan", "activation_date",
				"monthly_savings", "yearly_savings", "updated_at",
			}),
		}).CreateInBatches(customers, 100)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert eligible customers: %w", err)
	}

	return affected, nil
}

// ByFilter retrieves customers matching the filter
func (r *EligibleCustomerRepositoryImpl) ByFilter(ctx context.Context, filter models.EligibleCustomerFilter, orderBy string, limit, offset int) ([]*models.EligibleCustomer, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EligibleCustomer{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var customers []*models.EligibleCustomer
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Count returns the number of customers matching the filter
func (r *EligibleCustomerRepositoryImpl) Count(ctx context.Context, filter models.EligibleCustomerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EligibleCustomer{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EligibleCustomerRepositoryImpl) applyFilter(query *gorm.DB, filter models.EligibleCustomerFilter) *gorm.DB {
	if filter.PhoneNumber != nil {
		query = query.Where("phone_number = ?", *filter.PhoneNumber)
	}
	if filter.StoreName != nil {
		query = query.Where("store_name = ?", *filter.StoreName)
	}
	if filter.CurrentPlan != nil {
		query = query.Where("current_plan = ?", *filter.CurrentPlan)
	}
	if filter.ActivatedAfter != nil {
		query = query.Where("activation_date >= ?", *filter.ActivatedAfter)
	}
	if filter.ActivatedBefore != nil {
		query = query.Where("activation_date <= ?", *filter.ActivatedBefore)
	}
	return query
}
