package app

import (
	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type Repos struct {
	MediaAsset   repos.MediaAssetRepo
	Report       repos.ReportRepo
	StoredObject repos.StoredObjectRepo
	PushToken    repos.PushTokenRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		MediaAsset:   repos.NewMediaAssetRepo(db, log),
		Report:       repos.NewReportRepo(db, log),
		StoredObject: repos.NewStoredObjectRepo(db, log),
		PushToken:    repos.NewPushTokenRepo(db, log),
	}
}
