package services

import (
	"context"
	"strings"

	"github.com/dashfault/dashfault-backend/internal/clients/fcm"
	"github.com/dashfault/dashfault-backend/internal/data/repos"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

const (
	pushTitle = "Accident analysis complete"
	pushBody  = "Your accident report is ready."
)

// NotificationDispatcher decides how the owner learns a report is ready.
// AUTO uploads get a push; MANUAL uploads get nothing and the client
// polls the status endpoint instead.
type NotificationDispatcher interface {
	DispatchReportReady(ctx context.Context, asset *types.MediaAsset, rep *types.Report)
}

type notificationDispatcher struct {
	log           *logger.Logger
	pushTokenRepo repos.PushTokenRepo
	pushClient    fcm.PushClient
}

func NewNotificationDispatcher(log *logger.Logger, pushTokenRepo repos.PushTokenRepo, pushClient fcm.PushClient) NotificationDispatcher {
	serviceLog := log.With("service", "NotificationDispatcher")
	return &notificationDispatcher{
		log:           serviceLog,
		pushTokenRepo: pushTokenRepo,
		pushClient:    pushClient,
	}
}

// DispatchReportReady is best effort. Nothing here may fail the callback
// that produced the report, so every failure path logs and returns.
func (nd *notificationDispatcher) DispatchReportReady(ctx context.Context, asset *types.MediaAsset, rep *types.Report) {
	if asset.UploadType != types.UploadTypeAuto {
		nd.log.Info("Manual upload, client will poll", "media_asset_id", asset.ID)
		return
	}

	token, err := nd.pushTokenRepo.GetByUserID(dbctx.Context{Ctx: ctx}, asset.OwnerID)
	if err != nil {
		nd.log.Error("Failed to look up push token", "owner_id", asset.OwnerID, "error", err)
		return
	}
	if token == nil || strings.TrimSpace(token.Token) == "" {
		nd.log.Info("No push token registered, skipping push", "owner_id", asset.OwnerID)
		return
	}

	if err := nd.pushClient.Send(ctx, token.Token, pushTitle, pushBody, rep.ID.String()); err != nil {
		nd.log.Error("Push delivery failed", "report_id", rep.ID, "error", err)
		return
	}
	nd.log.Info("Push delivered", "report_id", rep.ID)
}
