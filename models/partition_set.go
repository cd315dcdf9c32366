package models

import (
	"time"

	"github.com/lib/pq"
)

// PartitionSet stores a whole set of phone numbers under one key, e.g. the "called" partition.
type PartitionSet struct {
	Key       string         `gorm:"type:varchar(128);primaryKey" json:"key"`
	Members   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"members"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PartitionSet) TableName() string { return "partition_sets" }
