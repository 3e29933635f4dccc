package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/internal/entities"
	apperrors "lead-system/pkg/errors"
)

type CentreRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Centre, error)
	GetCentres(ctx context.Context) ([]entities.Centre, error)
}

type CentreRepository struct {
	storage *pgxpool.Pool
}

func NewCentreRepository(storage *pgxpool.Pool) CentreRepositoryInterface {
	return &CentreRepository{storage: storage}
}

func (r *CentreRepository) FindByID(ctx context.Context, id uint64) (*entities.Centre, error) {
	var c entities.Centre
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, city, created_at FROM centres WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.City, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan centre: %w", err)
	}
	return &c, nil
}

func (r *CentreRepository) GetCentres(ctx context.Context) ([]entities.Centre, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name, city, created_at FROM centres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list centres: %w", err)
	}
	defer rows.Close()

	centres := make([]entities.Centre, 0)
	for rows.Next() {
		var c entities.Centre
		if err := rows.Scan(&c.ID, &c.Name, &c.City, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan centre: %w", err)
		}
		centres = append(centres, c)
	}
	return centres, rows.Err()
}
