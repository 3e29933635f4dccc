package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"lead-system/pkg/constants"
)

type demoRecord struct {
	ClientName  string
	ClientPhone string
	Product     constants.ProductType
	State       constants.RecordState
}

var demoRecordsData = []demoRecord{
	{ClientName: "Bernard Petit", ClientPhone: "+33612345601", Product: constants.ProductSolar, State: constants.StateNew},
	{ClientName: "Claire Fontaine", ClientPhone: "+33612345602", Product: constants.ProductHeating, State: constants.StateNew},
	{ClientName: "Luc Moreau", ClientPhone: "+33612345603", Product: constants.ProductSolar, State: constants.StateNew},
}

func seedDemoRecords(ctx context.Context, db *pgxpool.Pool) error {
	var centreID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM centres ORDER BY id LIMIT 1").Scan(&centreID); err != nil {
		return err
	}
	var commercialID, confirmerID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM users WHERE role = $1 ORDER BY id LIMIT 1", constants.RoleCommercial).Scan(&commercialID); err != nil {
		return err
	}
	if err := db.QueryRow(ctx, "SELECT id FROM users WHERE role = $1 ORDER BY id LIMIT 1", constants.RoleConfirmer).Scan(&confirmerID); err != nil {
		return err
	}

	for _, r := range demoRecordsData {
		var exists bool
		if err := db.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM records WHERE client_phone = $1)", r.ClientPhone,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(ctx, `
			INSERT INTO records
				(state, centre_id, product_type, client_name, client_phone, commercial_ids, confirmer_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			r.State, centreID, r.Product, r.ClientName, r.ClientPhone,
			[]int64{int64(commercialID)}, []int64{int64(confirmerID)},
		); err != nil {
			return err
		}
		log.Printf("    record for %s created", r.ClientName)
	}
	return nil
}
