package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"rhel-assessment-service/internal/domain"
)

// DefaultArchiveSlot is the slot name results are kept under.
const DefaultArchiveSlot = "rhel_interview_records"

// SlotStore holds one serialized value per slot name (memory, Redis, Postgres).
type SlotStore interface {
	// Read returns the slot contents; ok is false when the slot was never written.
	Read(ctx context.Context, slot string) (data []byte, ok bool, err error)
	Write(ctx context.Context, slot string, data []byte) error
	Delete(ctx context.Context, slot string) error
}

// SlotArchive keeps every ResultRecord as one JSON list in a single slot.
// Append is read-modify-write without locking: concurrent writers can lose
// updates (last writer wins).
type SlotArchive struct {
	store  SlotStore
	slot   string
	logger *zap.Logger
}

func NewSlotArchive(store SlotStore, slot string, logger *zap.Logger) *SlotArchive {
	if slot == "" {
		slot = DefaultArchiveSlot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotArchive{store: store, slot: slot, logger: logger}
}

// Append adds record to the stored list and writes the list back whole.
func (a *SlotArchive) Append(ctx context.Context, record domain.ResultRecord) error {
	records, err := a.load(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := a.store.Write(ctx, a.slot, data); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// List returns all records, most recent first. Missing or unparsable data
// reads as an empty archive.
func (a *SlotArchive) List(ctx context.Context) ([]domain.ResultRecord, error) {
	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}

// ClearAll removes every record. Clearing an empty archive is not an error.
func (a *SlotArchive) ClearAll(ctx context.Context) error {
	if err := a.store.Delete(ctx, a.slot); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

func (a *SlotArchive) load(ctx context.Context) ([]domain.ResultRecord, error) {
	data, ok, err := a.store.Read(ctx, a.slot)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if !ok || len(data) == 0 {
		return []domain.ResultRecord{}, nil
	}
	var records []domain.ResultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		a.logger.Warn("result archive unreadable, treating as empty",
			zap.String("slot", a.slot), zap.Error(err))
		return []domain.ResultRecord{}, nil
	}
	if records == nil {
		records = []domain.ResultRecord{}
	}
	return records, nil
}
