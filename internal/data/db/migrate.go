package db

import (
	"gorm.io/gorm"

	types "github.com/dashfault/dashfault-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Storage lifecycle
		&types.StoredObject{},
		&types.MediaAsset{},

		// Reports
		&types.Report{},

		// Push delivery
		&types.PushToken{},
	)
}
