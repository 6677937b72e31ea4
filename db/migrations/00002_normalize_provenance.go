package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func init() {
	goose.AddMigrationContext(upNormalizeProvenance, downNormalizeProvenance)
}

// provenanceTables lists the tables whose rows carry an external_id. Tables with a
// data_source column get it derived from the external_id.
var provenanceTables = []struct {
	name          string
	hasDataSource bool
}{
	{"launches", true},
	{"reentries", true},
	{"launch_sites", false},
	{"rockets", false},
	{"reentry_sites", false},
}

// upNormalizeProvenance trims external identifiers, turns blank ones into NULL so a manual
// row can never be matched by a sync pass, and derives data_source from the result.
func upNormalizeProvenance(ctx context.Context, tx *sql.Tx) error {
	for _, table := range provenanceTables {
		rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT id, external_id FROM %s", table.name))
		if err != nil {
			return fmt.Errorf("getting rows of %s: %w", table.name, err)
		}

		type row struct {
			id         string
			externalID sql.NullString
		}
		var pending []row
		for rows.Next() {
			var r row
			if err := rows.Scan(&r.id, &r.externalID); err != nil {
				rows.Close()
				return fmt.Errorf("scanning row of %s: %w", table.name, err)
			}
			pending = append(pending, r)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterating rows of %s: %w", table.name, err)
		}

		for _, r := range pending {
			var externalID sql.NullString
			if r.externalID.Valid {
				if trimmed := strings.TrimSpace(r.externalID.String); trimmed != "" {
					externalID = sql.NullString{String: trimmed, Valid: true}
				}
			}

			if table.hasDataSource {
				dataSource := "MANUAL"
				if externalID.Valid {
					dataSource = "SPACE_DEVS"
				}
				_, err = tx.ExecContext(ctx,
					fmt.Sprintf("UPDATE %s SET external_id = ?, data_source = ? WHERE id = ?", table.name),
					externalID, dataSource, r.id)
			} else {
				_, err = tx.ExecContext(ctx,
					fmt.Sprintf("UPDATE %s SET external_id = ? WHERE id = ?", table.name),
					externalID, r.id)
			}
			if err != nil {
				return fmt.Errorf("updating row %s of %s: %w", r.id, table.name, err)
			}
		}
	}
	return nil
}

// downNormalizeProvenance is a no-op, blank identifiers are not worth restoring.
func downNormalizeProvenance(ctx context.Context, tx *sql.Tx) error {
	return nil
}
