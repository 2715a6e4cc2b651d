// Package migrations holds the gormigrate versions applied at startup.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/letsettle/letsettle/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: nil db")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// The vote table carries two unique backstop indexes,
			// (debate_id, ip) and (debate_id, fingerprint_id); they catch
			// duplicate inserts that race past the application check.
			ID: "202608140001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Debate{}, &domain.Option{}, &domain.Vote{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("votes", "options", "debates")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: apply failed: %w", err)
	}

	return nil
}
