package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Eligibility-Roster/models"
	"gorm.io/gorm"
)

// LookupRecordRepositoryImpl implements LookupRecordRepository interface. Rows are only ever
// inserted; there is no update or delete path.
type LookupRecordRepositoryImpl struct {
	*BaseRepository[models.LookupRecord, models.LookupRecordFilter]
}

// NewLookupRecordRepository creates a new lookup history repository
func NewLookupRecordRepository(db *gorm.DB) LookupRecordRepository {
	return &LookupRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LookupRecord, models.LookupRecordFilter](db),
	}
}

// ListAll returns every lookup, most recent first
func (r *LookupRecordRepositoryImpl) ListAll(ctx context.Context) ([]*models.LookupRecord, error) {
	records, err := r.ByFilter(ctx, models.LookupRecordFilter{}, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list lookup history: %w", err)
	}
	return records, nil
}

// ByFilter retrieves lookups matching the filter, most recent first unless orderBy is given
func (r *LookupRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.LookupRecordFilter, orderBy string, limit, offset int) ([]*models.LookupRecord, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LookupRecord{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var records []*models.LookupRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of lookups matching the filter
func (r *LookupRecordRepositoryImpl) Count(ctx context.Context, filter models.LookupRecordFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LookupRecord{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LookupRecordRepositoryImpl) applyFilter(query *gorm.DB, filter models.LookupRecordFilter) *gorm.DB {
	if filter.PhoneNumber != nil {
		query = query.Where("phone_number = ?", *filter.PhoneNumber)
	}
	if filter.IsEligible != nil {
		query = query.Where("is_eligible = ?", *filter.IsEligible)
	}
	if filter.CheckedBy != nil {
		query = query.Where("checked_by = ?", *filter.CheckedBy)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}
