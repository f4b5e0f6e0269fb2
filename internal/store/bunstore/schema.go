package bunstore

import (
	"context"

	"github.com/uptrace/bun"

	"consulta/backend/internal/domain"
)

// CreateSchema creates the tables and indexes when they do not exist yet. Postgres
// deployments run the SQL files in migrations/ instead; this path serves the
// embedded SQLite backend and tests.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*domain.Consultation)(nil),
		(*domain.JobLease)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	_, err := db.NewCreateIndex().
		Model((*domain.Consultation)(nil)).
		Index("consultations_series_date_uidx").
		IfNotExists().
		Unique().
		Column("first_id", "start_date").
		Where("first_id IS NOT NULL AND first_id <> id AND is_deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*domain.Consultation)(nil)).
		Index("consultations_office_slot_idx").
		IfNotExists().
		Column("office_id", "start_date").
		Exec(ctx)
	return err
}
