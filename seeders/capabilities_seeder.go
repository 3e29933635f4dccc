package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/pkg/constants"
)

type capabilityData struct {
	Name        string
	Description string
	Roles       []constants.Role
}

var capabilitiesData = []capabilityData{
	{
		Name:        constants.CapReportCommentWrite,
		Description: "attach a free-text comment to a compte-rendu proposal",
		Roles:       []constants.Role{constants.RoleAdmin, constants.RoleManager, constants.RoleCommercial},
	},
	{
		Name:        constants.CapRecordsExport,
		Description: "export record listings to a spreadsheet",
		Roles:       []constants.Role{constants.RoleAdmin, constants.RoleManager},
	},
	{
		Name:        constants.CapPendingDecide,
		Description: "approve or reject pending changes",
		Roles:       []constants.Role{constants.RoleAdmin},
	},
}

func seedCapabilities(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - capabilities...")
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, c := range capabilitiesData {
		var id uint64
		err := tx.QueryRow(ctx, `
			INSERT INTO capabilities (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id`, c.Name, c.Description,
		).Scan(&id)
		if err != nil {
			return err
		}
		for _, role := range c.Roles {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_capabilities (role, capability_id) VALUES ($1, $2)
				ON CONFLICT (role, capability_id) DO NOTHING`, role, id,
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

var centresData = []struct {
	Name string
	City string
}{
	{Name: "Centre Rhône-Alpes", City: "Lyon"},
	{Name: "Centre Provence", City: "Aix-en-Provence"},
	{Name: "Centre Occitanie", City: "Toulouse"},
}

func seedCentres(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - centres...")
	for _, c := range centresData {
		if _, err := db.Exec(ctx, `
			INSERT INTO centres (name, city)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM centres WHERE name = $1)`, c.Name, c.City,
		); err != nil {
			return err
		}
	}
	return nil
}
