package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartitionSetRepositoryImpl struct {
	DB *gorm.DB
}

func NewPartitionSetRepository(db *gorm.DB) PartitionSetRepository {
	return &PartitionSetRepositoryImpl{DB: db}
}

func (r *PartitionSetRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB.WithContext(ctx)
}

// Get returns the members stored under key; a missing key is an empty set
func (r *PartitionSetRepositoryImpl) Get(ctx context.Context, key string) ([]string, error) {
	var row models.PartitionSet
	err := r.getDB(ctx).Where(`"key" = ?`, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load partition set %q: %w", key, err)
	}
	return []string(row.Members), nil
}

// Set replaces the whole set in one statement
func (r *PartitionSetRepositoryImpl) Set(ctx context.Context, key string, members []string) error {
	if members == nil {
		members = []string{}
	}
	row := models.PartitionSet{
		Key:       key,
		Members:   pq.StringArray(dedupeAndSortStrings(members)),
		UpdatedAt: utils.UTCNow(),
	}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"members", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to persist partition set %q: %w", key, err)
	}
	return nil
}

// Add unions members into the stored set inside the database
func (r *PartitionSetRepositoryImpl) Add(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	err := r.getDB(ctx).Exec(`
		INSERT INTO partition_sets ("key", members, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT ("key") DO UPDATE SET
			members = ARRAY(
				SELECT DISTINCT m FROM unnest(partition_sets.members || EXCLUDED.members) AS m ORDER BY m
			),
			updated_at = EXCLUDED.updated_at`,
		key, pq.Array(dedupeAndSortStrings(members)), utils.UTCNow(),
	).Error
	if err != nil {
		return fmt.Errorf("failed to add %d members to partition set %q: %w", len(members), key, err)
	}
	return nil
}

// Remove subtracts members from the stored set inside the database
func (r *PartitionSetRepositoryImpl) Remove(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	err := r.getDB(ctx).Exec(`
		UPDATE partition_sets SET
			members = ARRAY(
				SELECT m FROM unnest(members) AS m WHERE NOT (m = ANY(?::text[])) ORDER BY m
			),
			updated_at = ?
		WHERE "key" = ?`,
		pq.Array(members), utils.UTCNow(), key,
	).Error
	if err != nil {
		return fmt.Errorf("failed to remove %d members from partition set %q: %w", len(members), key, err)
	}
	return nil
}

func dedupeAndSortStrings(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
