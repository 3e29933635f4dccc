package main

import (
	"flag"
	"log"

	"lead-system/pkg/config"
	"lead-system/pkg/database/postgresql"
	"lead-system/seeders"
)

func main() {
	runCore := flag.Bool("core", false, "seed capabilities and centres")
	runUsers := flag.Bool("users", false, "seed the admin and one demo user per role")
	runRecords := flag.Bool("records", false, "seed a handful of demo records")
	runAll := flag.Bool("all", false, "run every seeder")
	flag.Parse()

	if !*runCore && !*runUsers && !*runRecords && !*runAll {
		log.Println("no seeder selected")
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	log.Println("using DSN:", cfg.Postgres.DSN)
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	if *runCore || *runAll {
		seeders.SeedCore(dbPool)
	}
	if *runUsers || *runAll {
		seeders.SeedUsers(dbPool, cfg)
	}
	if *runRecords || *runAll {
		seeders.SeedDemoRecords(dbPool)
	}
	log.Println("seeding finished")
}
