package seeders

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/pkg/config"
	"lead-system/pkg/constants"
	"lead-system/pkg/utils"
)

func seedAdminUser(ctx context.Context, db *pgxpool.Pool, cfg *config.Config) error {
	log.Println("  - admin user...")
	email := "admin@lead-system.local"

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Println("    admin already exists, skipping")
		return nil
	}

	password := os.Getenv("ADMIN_SEED_PASSWORD")
	if password == "" {
		password = "Password123!"
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO users (fio, email, phone_number, password, role, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)`,
		"System Administrator", email, "", hashed, constants.RoleAdmin,
	)
	return err
}

type demoUser struct {
	Fio   string
	Email string
	Role  constants.Role
}

var demoUsersData = []demoUser{
	{Fio: "Marie Dubois", Email: "manager@lead-system.local", Role: constants.RoleManager},
	{Fio: "Julien Caron", Email: "confirmer@lead-system.local", Role: constants.RoleConfirmer},
	{Fio: "Antoine Leroy", Email: "commercial@lead-system.local", Role: constants.RoleCommercial},
	{Fio: "Sophie Martin", Email: "commercial2@lead-system.local", Role: constants.RoleCommercial},
}

func seedDemoUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - demo users...")

	var centreID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM centres ORDER BY id LIMIT 1").Scan(&centreID); err != nil {
		return err
	}
	hashed, err := utils.HashPassword("Password123!")
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range demoUsersData {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (fio, email, phone_number, password, role, centre_id, is_active)
			VALUES ($1, $2, '', $3, $4, $5, TRUE)
			ON CONFLICT (email) DO NOTHING`,
			u.Fio, u.Email, hashed, u.Role, centreID,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
