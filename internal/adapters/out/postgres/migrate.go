package postgres

import (
	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/adapters/out/postgres/manifestrepo"
	"parcelhub/internal/adapters/out/postgres/parcelrepo"
	"parcelhub/internal/adapters/out/postgres/transitrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&parcelrepo.ParcelDTO{},
		&manifestrepo.ManifestDTO{},
		&transitrepo.TransitRouteDTO{},
		&eventrepo.EventDTO{},
		&eventrepo.RelayCursorDTO{},
	)
}
