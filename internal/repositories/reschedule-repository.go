package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/internal/entities"
	apperrors "lead-system/pkg/errors"
)

type RescheduleRepositoryInterface interface {
	Create(ctx context.Context, req *entities.RescheduleRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.RescheduleRequest, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
	ListByRecipient(ctx context.Context, recipientID uint64, pendingOnly bool) ([]entities.RescheduleRequest, error)
	ListByRecord(ctx context.Context, recordID uint64) ([]entities.RescheduleRequest, error)
}

type RescheduleRepository struct {
	storage *pgxpool.Pool
}

func NewRescheduleRepository(storage *pgxpool.Pool) RescheduleRepositoryInterface {
	return &RescheduleRepository{storage: storage}
}

const rescheduleColumns = `id, record_id, proposer_id, recipient_id, original_time,
	offset_minutes, new_time, message, status, acknowledged_at, created_at`

func (r *RescheduleRepository) Create(ctx context.Context, req *entities.RescheduleRequest) error {
	err := r.storage.QueryRow(ctx, `
		INSERT INTO reschedule_requests
			(id, record_id, proposer_id, recipient_id, original_time, offset_minutes, new_time, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'PENDING', NOW())
		RETURNING created_at`,
		uuid.New(), req.RecordID, req.ProposerID, req.RecipientID,
		req.OriginalTime, req.OffsetMinutes, req.NewTime, req.Message,
	).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reschedule request for record %d: %w", req.RecordID, err)
	}
	req.Status = entities.RescheduleStatusPending
	return nil
}

func scanReschedule(row pgx.Row) (*entities.RescheduleRequest, error) {
	var req entities.RescheduleRequest
	err := row.Scan(
		&req.ID, &req.RecordID, &req.ProposerID, &req.RecipientID, &req.OriginalTime,
		&req.OffsetMinutes, &req.NewTime, &req.Message, &req.Status,
		&req.AcknowledgedAt, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reschedule request: %w", err)
	}
	return &req, nil
}

func (r *RescheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.RescheduleRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM reschedule_requests WHERE id = $1`, rescheduleColumns)
	return scanReschedule(r.storage.QueryRow(ctx, query, id))
}

func (r *RescheduleRepository) Acknowledge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE reschedule_requests
		SET status = 'ACKNOWLEDGED', acknowledged_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge reschedule request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyDecided
	}
	return nil
}

func (r *RescheduleRepository) ListByRecipient(ctx context.Context, recipientID uint64, pendingOnly bool) ([]entities.RescheduleRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM reschedule_requests WHERE recipient_id = $1`, rescheduleColumns)
	if pendingOnly {
		query += ` AND status = 'PENDING'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.storage.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reschedule requests for recipient %d: %w", recipientID, err)
	}
	defer rows.Close()
	return collectReschedules(rows)
}

func (r *RescheduleRepository) ListByRecord(ctx context.Context, recordID uint64) ([]entities.RescheduleRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM reschedule_requests WHERE record_id = $1 ORDER BY created_at DESC`, rescheduleColumns)
	rows, err := r.storage.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reschedule requests for record %d: %w", recordID, err)
	}
	defer rows.Close()
	return collectReschedules(rows)
}

func collectReschedules(rows pgx.Rows) ([]entities.RescheduleRequest, error) {
	out := make([]entities.RescheduleRequest, 0)
	for rows.Next() {
		req, err := scanReschedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
