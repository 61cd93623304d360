package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SlotStore keeps each slot as one row of archive_slots.
type SlotStore struct {
	pool *pgxpool.Pool
}

func NewSlotStore(pool *pgxpool.Pool) *SlotStore {
	return &SlotStore{pool: pool}
}

func (s *SlotStore) Read(ctx context.Context, slot string) ([]byte, bool, error) {
	var data string
	err := s.pool.QueryRow(ctx, `SELECT data FROM archive_slots WHERE name=$1`, slot).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return []byte(data), true, nil
}

func (s *SlotStore) Write(ctx context.Context, slot string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO archive_slots (name, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		slot, string(data))
	if err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, slot string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM archive_slots WHERE name=$1`, slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}
