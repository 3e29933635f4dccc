package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StateCount struct {
	State  string
	Urgent uint64
	Total  uint64
}

type ReportRepositoryInterface interface {
	StateCounts(ctx context.Context, centreID uint64) ([]StateCount, error)
}

type ReportRepository struct {
	storage *pgxpool.Pool
}

func NewReportRepository(storage *pgxpool.Pool) ReportRepositoryInterface {
	return &ReportRepository{storage: storage}
}

func (r *ReportRepository) StateCounts(ctx context.Context, centreID uint64) ([]StateCount, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.
		Select("state", "COUNT(*) FILTER (WHERE is_urgent)", "COUNT(*)").
		From("records").
		Where("deleted_at IS NULL").
		GroupBy("state").
		OrderBy("state")
	if centreID != 0 {
		builder = builder.Where(sq.Eq{"centre_id": centreID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build state count query: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by state: %w", err)
	}
	defer rows.Close()

	counts := make([]StateCount, 0)
	for rows.Next() {
		var c StateCount
		if err := rows.Scan(&c.State, &c.Urgent, &c.Total); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
