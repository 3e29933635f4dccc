package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/internal/entities"
	apperrors "lead-system/pkg/errors"
)

type PendingChangeRepositoryInterface interface {
	UpsertPendingInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.PendingChange, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.PendingChange, error)
	UpdateProposalInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error
	MarkDecidedInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error
	ListByRecord(ctx context.Context, recordID uint64) ([]entities.PendingChange, error)
	ListByStatus(ctx context.Context, status entities.PendingChangeStatus, limit, offset uint64) ([]entities.PendingChange, uint64, error)
}

type PendingChangeRepository struct {
	storage *pgxpool.Pool
}

func NewPendingChangeRepository(storage *pgxpool.Pool) PendingChangeRepositoryInterface {
	return &PendingChangeRepository{storage: storage}
}

const pendingColumns = `id, record_id, proposer_id, target_state, target_sub_state,
	proposed_fields, free_comment, status, admin_comment, decided_by, decided_at, created_at`

func scanPendingChange(row pgx.Row) (*entities.PendingChange, error) {
	var p entities.PendingChange
	err := row.Scan(
		&p.ID, &p.RecordID, &p.ProposerID, &p.TargetState, &p.TargetSubState,
		&p.ProposedFields, &p.FreeComment, &p.Status, &p.AdminComment,
		&p.DecidedBy, &p.DecidedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan pending change: %w", err)
	}
	return &p, nil
}

// UpsertPendingInTx creates the record's pending proposal or overwrites the
// existing one in place. The partial unique index on (record_id) WHERE
// status = 'PENDING' makes the check-then-act race-free: two concurrent
// submissions collapse into one row.
func (r *PendingChangeRepository) UpsertPendingInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO pending_changes
			(id, record_id, proposer_id, target_state, target_sub_state, proposed_fields, free_comment, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING', NOW())
		ON CONFLICT (record_id) WHERE status = 'PENDING' DO UPDATE SET
			proposer_id = EXCLUDED.proposer_id,
			target_state = EXCLUDED.target_state,
			target_sub_state = EXCLUDED.target_sub_state,
			proposed_fields = EXCLUDED.proposed_fields,
			free_comment = EXCLUDED.free_comment,
			created_at = NOW()
		RETURNING id, created_at`,
		uuid.New(), change.RecordID, change.ProposerID, change.TargetState,
		change.TargetSubState, change.ProposedFields, change.FreeComment,
	).Scan(&change.ID, &change.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pending change for record %d: %w", change.RecordID, err)
	}
	change.Status = entities.PendingStatusPending
	return nil
}

func (r *PendingChangeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.PendingChange, error) {
	query := fmt.Sprintf(`SELECT %s FROM pending_changes WHERE id = $1`, pendingColumns)
	return scanPendingChange(r.storage.QueryRow(ctx, query, id))
}

func (r *PendingChangeRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.PendingChange, error) {
	query := fmt.Sprintf(`SELECT %s FROM pending_changes WHERE id = $1 FOR UPDATE`, pendingColumns)
	return scanPendingChange(tx.QueryRow(ctx, query, id))
}

// UpdateProposalInTx rewrites the proposal body of a still-pending change
// (admin edit-before-approval).
func (r *PendingChangeRepository) UpdateProposalInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error {
	tag, err := tx.Exec(ctx, `
		UPDATE pending_changes
		SET target_state = $1, target_sub_state = $2, proposed_fields = $3, free_comment = $4
		WHERE id = $5 AND status = 'PENDING'`,
		change.TargetState, change.TargetSubState, change.ProposedFields, change.FreeComment, change.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to edit pending change %s: %w", change.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyDecided
	}
	return nil
}

func (r *PendingChangeRepository) MarkDecidedInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error {
	tag, err := tx.Exec(ctx, `
		UPDATE pending_changes
		SET status = $1, admin_comment = $2, decided_by = $3, decided_at = NOW()
		WHERE id = $4 AND status = 'PENDING'`,
		change.Status, change.AdminComment, change.DecidedBy, change.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark pending change %s decided: %w", change.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyDecided
	}
	return nil
}

func (r *PendingChangeRepository) ListByRecord(ctx context.Context, recordID uint64) ([]entities.PendingChange, error) {
	query := fmt.Sprintf(`SELECT %s FROM pending_changes WHERE record_id = $1 ORDER BY created_at DESC`, pendingColumns)
	rows, err := r.storage.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending changes for record %d: %w", recordID, err)
	}
	defer rows.Close()
	return collectPendingChanges(rows)
}

func (r *PendingChangeRepository) ListByStatus(ctx context.Context, status entities.PendingChangeStatus, limit, offset uint64) ([]entities.PendingChange, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	base := psql.Select().From("pending_changes").Where(sq.Eq{"status": status})

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build pending change count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending changes: %w", err)
	}

	if limit == 0 {
		limit = 50
	}
	listSQL, listArgs, err := base.Column(pendingColumns).
		OrderBy("created_at DESC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build pending change list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending changes: %w", err)
	}
	defer rows.Close()

	changes, err := collectPendingChanges(rows)
	return changes, total, err
}

func collectPendingChanges(rows pgx.Rows) ([]entities.PendingChange, error) {
	changes := make([]entities.PendingChange, 0)
	for rows.Next() {
		p, err := scanPendingChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *p)
	}
	return changes, rows.Err()
}
