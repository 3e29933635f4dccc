package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/pkg/constants"
)

type CapabilityRepositoryInterface interface {
	GetCapabilityNamesByRole(ctx context.Context, role constants.Role) ([]string, error)
}

type CapabilityRepository struct {
	storage *pgxpool.Pool
}

func NewCapabilityRepository(storage *pgxpool.Pool) CapabilityRepositoryInterface {
	return &CapabilityRepository{storage: storage}
}

func (r *CapabilityRepository) GetCapabilityNamesByRole(ctx context.Context, role constants.Role) ([]string, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT c.name
		FROM capabilities c
		JOIN role_capabilities rc ON rc.capability_id = c.id
		WHERE rc.role = $1`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load capabilities for role %s: %w", role, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan capability name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
