package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

func dispatcherUnderTest(t *testing.T, tokenRepo *fakePushTokenRepo, push *fakePushClient) NotificationDispatcher {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewNotificationDispatcher(log, tokenRepo, push)
}

func testAsset(uploadType types.UploadType) *types.MediaAsset {
	return &types.MediaAsset{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		UploadType: uploadType,
	}
}

func TestDispatchAutoWithTokenSendsExactlyOne(t *testing.T) {
	tokenRepo := &fakePushTokenRepo{}
	push := &fakePushClient{}
	dispatcher := dispatcherUnderTest(t, tokenRepo, push)

	asset := testAsset(types.UploadTypeAuto)
	if err := tokenRepo.Upsert(dbctx.Context{Ctx: context.Background()}, asset.OwnerID, "device-token-1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rep := &types.Report{ID: uuid.New(), MediaAssetID: asset.ID}

	dispatcher.DispatchReportReady(context.Background(), asset, rep)

	sends := push.sent()
	if len(sends) != 1 {
		t.Fatalf("got %d push attempts, want 1", len(sends))
	}
	if sends[0].Token != "device-token-1" {
		t.Errorf("sent to token %q", sends[0].Token)
	}
	if sends[0].ReportID != rep.ID.String() {
		t.Errorf("reportId = %q, want %q", sends[0].ReportID, rep.ID)
	}
	if sends[0].Title == "" || sends[0].Body == "" {
		t.Errorf("payload must carry title and body")
	}
}

func TestDispatchAutoWithoutTokenSkipsSilently(t *testing.T) {
	push := &fakePushClient{}
	dispatcher := dispatcherUnderTest(t, &fakePushTokenRepo{}, push)

	asset := testAsset(types.UploadTypeAuto)
	rep := &types.Report{ID: uuid.New(), MediaAssetID: asset.ID}

	dispatcher.DispatchReportReady(context.Background(), asset, rep)

	if got := len(push.sent()); got != 0 {
		t.Fatalf("got %d push attempts, want 0", got)
	}
}

func TestDispatchManualNeverSends(t *testing.T) {
	tokenRepo := &fakePushTokenRepo{}
	push := &fakePushClient{}
	dispatcher := dispatcherUnderTest(t, tokenRepo, push)

	asset := testAsset(types.UploadTypeManual)
	if err := tokenRepo.Upsert(dbctx.Context{Ctx: context.Background()}, asset.OwnerID, "device-token-1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rep := &types.Report{ID: uuid.New(), MediaAssetID: asset.ID}

	dispatcher.DispatchReportReady(context.Background(), asset, rep)

	if got := len(push.sent()); got != 0 {
		t.Fatalf("got %d push attempts, want 0", got)
	}
}

func TestDispatchSwallowsDeliveryFailure(t *testing.T) {
	tokenRepo := &fakePushTokenRepo{}
	push := &fakePushClient{err: fmt.Errorf("fcm unreachable")}
	dispatcher := dispatcherUnderTest(t, tokenRepo, push)

	asset := testAsset(types.UploadTypeAuto)
	if err := tokenRepo.Upsert(dbctx.Context{Ctx: context.Background()}, asset.OwnerID, "device-token-1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rep := &types.Report{ID: uuid.New(), MediaAssetID: asset.ID}

	// Must not panic or surface the error anywhere.
	dispatcher.DispatchReportReady(context.Background(), asset, rep)
}
