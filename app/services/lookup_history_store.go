package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/repository"
	"github.com/amirphl/Eligibility-Roster/roster"
)

// LookupHistoryStore persists lookup records in the lookup_history table
type LookupHistoryStore struct {
	repo repository.LookupRecordRepository
}

func NewLookupHistoryStore(repo repository.LookupRecordRepository) *LookupHistoryStore {
	return &LookupHistoryStore{repo: repo}
}

// Append inserts one row and returns the record with the id and timestamp the database assigned
func (s *LookupHistoryStore) Append(ctx context.Context, record lookuplog.Record) (lookuplog.Record, error) {
	row, err := recordToModel(record)
	if err != nil {
		return lookuplog.Record{}, err
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return lookuplog.Record{}, err
	}
	return modelToRecord(row)
}

// List returns the full history
func (s *LookupHistoryStore) List(ctx context.Context) ([]lookuplog.Record, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]lookuplog.Record, 0, len(rows))
	for _, row := range rows {
		r, err := modelToRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func recordToModel(r lookuplog.Record) (*models.LookupRecord, error) {
	row := &models.LookupRecord{
		PhoneNumber: r.PhoneNumber,
		IsEligible:  r.IsEligible,
		CheckedBy:   r.CheckedBy,
		UserID:      r.UserID,
		CreatedAt:   r.Timestamp,
	}
	if r.Customer != nil {
		info, err := json.Marshal(r.Customer)
		if err != nil {
			return nil, fmt.Errorf("failed to encode customer snapshot: %w", err)
		}
		row.CustomerInfo = info
	}
	return row, nil
}

func modelToRecord(row *models.LookupRecord) (lookuplog.Record, error) {
	r := lookuplog.Record{
		ID:          row.ID.String(),
		PhoneNumber: row.PhoneNumber,
		Timestamp:   row.CreatedAt.UTC(),
		IsEligible:  row.IsEligible,
		CheckedBy:   row.CheckedBy,
		UserID:      row.UserID,
	}
	if len(row.CustomerInfo) > 0 && string(row.CustomerInfo) != "null" {
		var c roster.Customer
		if err := json.Unmarshal(row.CustomerInfo, &c); err != nil {
			return lookuplog.Record{}, fmt.Errorf("failed to decode customer snapshot of %s: %w", row.ID, err)
		}
		r.Customer = &c
	}
	return r, nil
}
