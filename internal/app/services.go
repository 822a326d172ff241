package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/knowledge"
	"github.com/dashfault/dashfault-backend/internal/pdf"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
	"github.com/dashfault/dashfault-backend/internal/services"
)

type Services struct {
	StorageGateway services.StorageGatewayService
	Media          services.MediaService
	Assembler      services.ReportAssembler
	Dispatcher     services.NotificationDispatcher
	Report         services.ReportService
	PdfExport      services.PdfExportService
	PushToken      services.PushTokenService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	caseTable, err := knowledge.Load(cfg.CaseTableCSVPath, log)
	if err != nil {
		return Services{}, fmt.Errorf("load accident case table: %w", err)
	}
	renderer, err := pdf.NewRenderer(log)
	if err != nil {
		return Services{}, fmt.Errorf("init PDF renderer: %w", err)
	}

	storageGateway := services.NewStorageGatewayService(db, log, reposet.StoredObject, reposet.MediaAsset, clients.Bucket)
	dispatcher := services.NewNotificationDispatcher(log, reposet.PushToken, clients.Push)
	media := services.NewMediaService(db, log, reposet.MediaAsset, reposet.Report, storageGateway, clients.Analysis)
	assembler := services.NewReportAssembler(db, log, reposet.MediaAsset, reposet.Report, caseTable, dispatcher)
	report := services.NewReportService(db, log, reposet.Report, reposet.MediaAsset, storageGateway)
	pdfExport := services.NewPdfExportService(log, reposet.Report, storageGateway, clients.Bucket, renderer)
	pushToken := services.NewPushTokenService(log, reposet.PushToken)

	return Services{
		StorageGateway: storageGateway,
		Media:          media,
		Assembler:      assembler,
		Dispatcher:     dispatcher,
		Report:         report,
		PdfExport:      pdfExport,
		PushToken:      pushToken,
	}, nil
}
