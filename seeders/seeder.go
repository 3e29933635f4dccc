package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/pkg/config"
)

// SeedCore fills the dictionaries everything else depends on: capabilities,
// their role bindings, and the centres.
func SeedCore(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding core dictionaries...")

	if err := seedCapabilities(ctx, db); err != nil {
		log.Fatalf("seeding capabilities failed: %v", err)
	}
	if err := seedCentres(ctx, db); err != nil {
		log.Fatalf("seeding centres failed: %v", err)
	}
	log.Println("core dictionaries seeded")
}

// SeedUsers creates the admin account plus one user per role for manual
// testing.
func SeedUsers(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()
	log.Println("seeding users...")

	if err := seedAdminUser(ctx, db, cfg); err != nil {
		log.Fatalf("seeding admin failed: %v", err)
	}
	if err := seedDemoUsers(ctx, db); err != nil {
		log.Fatalf("seeding demo users failed: %v", err)
	}
	log.Println("users seeded")
}

// SeedDemoRecords creates a handful of records across states so a fresh
// install has something to click through.
func SeedDemoRecords(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding demo records...")

	if err := seedDemoRecords(ctx, db); err != nil {
		log.Fatalf("seeding demo records failed: %v", err)
	}
	log.Println("demo records seeded")
}
