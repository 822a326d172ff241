package app

import (
	"github.com/dashfault/dashfault-backend/internal/http/handlers"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type Handlers struct {
	Storage    *handlers.StorageHandler
	Media      *handlers.MediaHandler
	Report     *handlers.ReportHandler
	AIInternal *handlers.AIInternalHandler
	PushToken  *handlers.PushTokenHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Storage:    handlers.NewStorageHandler(log, serviceset.StorageGateway),
		Media:      handlers.NewMediaHandler(log, serviceset.Media),
		Report:     handlers.NewReportHandler(log, serviceset.Report, serviceset.PdfExport),
		AIInternal: handlers.NewAIInternalHandler(log, serviceset.Assembler, serviceset.Media),
		PushToken:  handlers.NewPushTokenHandler(log, serviceset.PushToken),
	}
}
