package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/entities"
	apperrors "lead-system/pkg/errors"
)

type RecordRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Record, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Record, error)
	GetRecords(ctx context.Context, filter dto.RecordFilter) ([]entities.Record, uint64, error)
	ApplyTransitionInTx(ctx context.Context, tx pgx.Tx, rec *entities.Record) error
}

type RecordRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRecordRepository(storage *pgxpool.Pool, logger *zap.Logger) RecordRepositoryInterface {
	return &RecordRepository{storage: storage, logger: logger}
}

const recordColumns = `id, state, sub_state, centre_id, product_type, client_name, client_phone,
	agent_id, commercial_ids, confirmer_ids, appointment_at, is_urgent, structured_fields,
	version, created_at, updated_at`

func scanRecord(row pgx.Row) (*entities.Record, error) {
	var rec entities.Record
	err := row.Scan(
		&rec.ID, &rec.State, &rec.SubState, &rec.CentreID, &rec.ProductType,
		&rec.ClientName, &rec.ClientPhone,
		&rec.AgentID, &rec.CommercialIDs, &rec.ConfirmerIDs,
		&rec.AppointmentAt, &rec.IsUrgent, &rec.StructuredFields,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	if rec.StructuredFields == nil {
		rec.StructuredFields = map[string]interface{}{}
	}
	return &rec, nil
}

func (r *RecordRepository) findByID(ctx context.Context, q querier, id uint64, forUpdate bool) (*entities.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM records WHERE id = $1 AND deleted_at IS NULL`, recordColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}
	return scanRecord(q.QueryRow(ctx, query, id))
}

func (r *RecordRepository) FindByID(ctx context.Context, id uint64) (*entities.Record, error) {
	return r.findByID(ctx, r.storage, id, false)
}

// FindForUpdateInTx locks the record row for the duration of the transaction,
// making the engine the single writer for this record.
func (r *RecordRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Record, error) {
	return r.findByID(ctx, tx, id, true)
}

func (r *RecordRepository) GetRecords(ctx context.Context, filter dto.RecordFilter) ([]entities.Record, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	base := psql.Select().From("records").Where("deleted_at IS NULL")
	if filter.State != "" {
		base = base.Where(sq.Eq{"state": filter.State})
	}
	if filter.CentreID != 0 {
		base = base.Where(sq.Eq{"centre_id": filter.CentreID})
	}
	if filter.CommercialID != 0 {
		base = base.Where("commercial_ids @> ARRAY[?]::bigint[]", int64(filter.CommercialID))
	}
	if filter.UrgentOnly {
		base = base.Where(sq.Eq{"is_urgent": true})
	}

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build record count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 50
	}
	listSQL, listArgs, err := base.Column(recordColumns).
		OrderBy("created_at DESC").
		Limit(limit).Offset(filter.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build record list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]entities.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	return records, total, rows.Err()
}

// ApplyTransitionInTx writes the new state, sub-state, merged fields,
// appointment and urgency in one statement guarded by the row version.
func (r *RecordRepository) ApplyTransitionInTx(ctx context.Context, tx pgx.Tx, rec *entities.Record) error {
	tag, err := tx.Exec(ctx, `
		UPDATE records
		SET state = $1, sub_state = $2, structured_fields = $3,
		    appointment_at = $4, is_urgent = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7 AND deleted_at IS NULL`,
		rec.State, rec.SubState, rec.StructuredFields,
		rec.AppointmentAt, rec.IsUrgent,
		rec.ID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to apply transition to record %d: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// row version moved under us despite the lock; never half-apply
		r.logger.Warn("record version conflict on transition", zap.Uint64("recordID", rec.ID))
		return apperrors.ErrStaleOriginal
	}
	rec.Version++
	return nil
}
