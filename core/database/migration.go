package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Migration is one schema version step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Migrate applies pending migrations in version order, recording progress
// in PRAGMA user_version so re-runs are no-ops.
func (p *Pool) Migrate(ctx context.Context, migrations []Migration) error {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	current, err := p.Version()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	for _, migration := range sorted {
		if migration.Version <= current {
			continue
		}
		err := p.Transaction(ctx, func(tx *sql.Tx) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", migration.Version, migration.Description, err)
		}
	}
	return nil
}
