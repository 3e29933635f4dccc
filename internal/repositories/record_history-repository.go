package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/internal/entities"
)

type RecordHistoryRepositoryInterface interface {
	AppendInTx(ctx context.Context, tx pgx.Tx, entry *entities.RecordHistory) error
	ListByRecord(ctx context.Context, recordID uint64) ([]entities.RecordHistory, error)
	LastByRecord(ctx context.Context, recordID uint64) (*entities.RecordHistory, error)
}

type RecordHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewRecordHistoryRepository(storage *pgxpool.Pool) RecordHistoryRepositoryInterface {
	return &RecordHistoryRepository{storage: storage}
}

// AppendInTx writes one history row. History is append-only: there is no
// update or delete path anywhere in this repository.
func (r *RecordHistoryRepository) AppendInTx(ctx context.Context, tx pgx.Tx, entry *entities.RecordHistory) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO record_history (record_id, actor_id, state, sub_state, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`,
		entry.RecordID, entry.ActorID, entry.State, entry.SubState, entry.Payload,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append history for record %d: %w", entry.RecordID, err)
	}
	return nil
}

func (r *RecordHistoryRepository) ListByRecord(ctx context.Context, recordID uint64) ([]entities.RecordHistory, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, record_id, actor_id, state, sub_state, payload, created_at
		FROM record_history WHERE record_id = $1 ORDER BY id ASC`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for record %d: %w", recordID, err)
	}
	defer rows.Close()

	entries := make([]entities.RecordHistory, 0)
	for rows.Next() {
		var e entities.RecordHistory
		if err := rows.Scan(&e.ID, &e.RecordID, &e.ActorID, &e.State, &e.SubState, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *RecordHistoryRepository) LastByRecord(ctx context.Context, recordID uint64) (*entities.RecordHistory, error) {
	var e entities.RecordHistory
	err := r.storage.QueryRow(ctx, `
		SELECT id, record_id, actor_id, state, sub_state, payload, created_at
		FROM record_history WHERE record_id = $1 ORDER BY id DESC LIMIT 1`, recordID,
	).Scan(&e.ID, &e.RecordID, &e.ActorID, &e.State, &e.SubState, &e.Payload, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load last history entry for record %d: %w", recordID, err)
	}
	return &e, nil
}
