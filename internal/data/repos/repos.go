package repos

import (
	"gorm.io/gorm"

	mediarepo "github.com/dashfault/dashfault-backend/internal/data/repos/media"
	notificationrepo "github.com/dashfault/dashfault-backend/internal/data/repos/notification"
	reportrepo "github.com/dashfault/dashfault-backend/internal/data/repos/report"
	storagerepo "github.com/dashfault/dashfault-backend/internal/data/repos/storage"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type MediaAssetRepo = mediarepo.MediaAssetRepo
type ReportRepo = reportrepo.ReportRepo
type StoredObjectRepo = storagerepo.StoredObjectRepo
type PushTokenRepo = notificationrepo.PushTokenRepo

func NewMediaAssetRepo(db *gorm.DB, log *logger.Logger) MediaAssetRepo {
	return mediarepo.NewMediaAssetRepo(db, log)
}

func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo {
	return reportrepo.NewReportRepo(db, log)
}

func NewStoredObjectRepo(db *gorm.DB, log *logger.Logger) StoredObjectRepo {
	return storagerepo.NewStoredObjectRepo(db, log)
}

func NewPushTokenRepo(db *gorm.DB, log *logger.Logger) PushTokenRepo {
	return notificationrepo.NewPushTokenRepo(db, log)
}
