package app

import (
	"fmt"

	"github.com/dashfault/dashfault-backend/internal/clients/ai"
	"github.com/dashfault/dashfault-backend/internal/clients/fcm"
	"github.com/dashfault/dashfault-backend/internal/platform/gcs"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type Clients struct {
	Bucket   gcs.BucketService
	Push     fcm.PushClient
	Analysis ai.AnalysisClient
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := gcs.NewBucketService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket service: %w", err)
	}
	push, err := fcm.NewPushClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init push client: %w", err)
	}
	analysis, err := ai.NewAnalysisClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init analysis client: %w", err)
	}

	return Clients{
		Bucket:   bucket,
		Push:     push,
		Analysis: analysis,
	}, nil
}
