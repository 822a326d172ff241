package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/clients/ai"
	"github.com/dashfault/dashfault-backend/internal/data/repos"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// UploadNotifyInput is submitted after the client has already PUT the
// file to storage with a previously issued upload intent.
type UploadNotifyInput struct {
	FileName    string           `json:"file_name"`
	StorageKey  string           `json:"storage_key"`
	ContentType string           `json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
	UploadType  types.UploadType `json:"upload_type"`
}

// MediaStatus is the poll response for MANUAL uploads.
type MediaStatus struct {
	AnalysisStatus types.AnalysisStatus `json:"analysis_status"`
	ReportID       *uuid.UUID           `json:"report_id"`
}

// MediaAssetView is an asset plus a fresh signed download URL.
type MediaAssetView struct {
	Asset       *types.MediaAsset `json:"asset"`
	DownloadURL string            `json:"download_url"`
	ExpiresIn   int               `json:"expires_in"`
}

type MediaService interface {
	HandleUploadNotify(ctx context.Context, ownerID uuid.UUID, input UploadNotifyInput) (*types.MediaAsset, error)
	GetStatus(ctx context.Context, ownerID, assetID uuid.UUID) (*MediaStatus, error)
	ListVideos(ctx context.Context, ownerID uuid.UUID) ([]*MediaAssetView, error)
	GetVideo(ctx context.Context, ownerID, assetID uuid.UUID) (*MediaAssetView, error)
	DeleteVideo(ctx context.Context, ownerID, assetID uuid.UUID) error
	// RequestReanalysis re-triggers the outbound analysis call for a video
	// that has no report yet.
	RequestReanalysis(ctx context.Context, assetID uuid.UUID) error
}

type mediaService struct {
	db             *gorm.DB
	log            *logger.Logger
	mediaRepo      repos.MediaAssetRepo
	reportRepo     repos.ReportRepo
	storageGateway StorageGatewayService
	analysisClient ai.AnalysisClient
}

func NewMediaService(
	db *gorm.DB,
	log *logger.Logger,
	mediaRepo repos.MediaAssetRepo,
	reportRepo repos.ReportRepo,
	storageGateway StorageGatewayService,
	analysisClient ai.AnalysisClient,
) MediaService {
	serviceLog := log.With("service", "MediaService")
	return &mediaService{
		db:             db,
		log:            serviceLog,
		mediaRepo:      mediaRepo,
		reportRepo:     reportRepo,
		storageGateway: storageGateway,
		analysisClient: analysisClient,
	}
}

func (ms *mediaService) HandleUploadNotify(ctx context.Context, ownerID uuid.UUID, input UploadNotifyInput) (*types.MediaAsset, error) {
	dbc := dbctx.Context{Ctx: ctx}

	input.FileName = strings.TrimSpace(input.FileName)
	input.StorageKey = strings.TrimSpace(input.StorageKey)
	if input.FileName == "" || input.StorageKey == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("fileName and storageKey are required"))
	}
	if input.UploadType != types.UploadTypeAuto && input.UploadType != types.UploadTypeManual {
		return nil, apierr.InvalidInput(fmt.Errorf("uploadType must be AUTO or MANUAL"))
	}

	// The key must come from an upload intent this owner was issued.
	known, err := ms.storageGateway.HasObject(dbc, ownerID, input.StorageKey)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, apierr.InvalidInput(fmt.Errorf("storage key %q was not issued to this user", input.StorageKey))
	}

	duplicate, err := ms.mediaRepo.GetByOwnerKeyAndFileName(dbc, ownerID, input.StorageKey, input.FileName)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, apierr.AlreadyExists(fmt.Errorf("upload already notified for this file"))
	}

	isVideo := strings.HasPrefix(input.ContentType, "video/")
	fileType := types.FileTypeVideo
	status := types.AnalysisStatusAnalyzing
	if !isVideo {
		fileType = types.FileTypePDF
		status = types.AnalysisStatusCompleted
	}

	asset := &types.MediaAsset{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		FileName:       input.FileName,
		StorageKey:     input.StorageKey,
		ContentType:    input.ContentType,
		SizeBytes:      input.SizeBytes,
		UploadType:     input.UploadType,
		FileType:       fileType,
		AnalysisStatus: status,
	}
	if _, err := ms.mediaRepo.Create(dbc, asset); err != nil {
		return nil, err
	}

	if isVideo {
		// Fire and forget. The analysis result arrives later through the
		// callback endpoint; only the request handoff happens here.
		go ms.triggerAnalysis(asset.ID, asset.StorageKey)
	}

	ms.log.Info("Upload registered",
		"media_asset_id", asset.ID, "file_type", fileType, "upload_type", input.UploadType)
	return asset, nil
}

func (ms *mediaService) triggerAnalysis(assetID uuid.UUID, storageKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	videoURL, _, err := ms.storageGateway.DownloadURL(ctx, storageKey)
	if err == nil {
		err = ms.analysisClient.RequestAnalysis(ctx, assetID, videoURL)
	}
	if err != nil {
		ms.log.Error("Analysis request failed, marking asset FAILED",
			"media_asset_id", assetID, "error", err)
		if updErr := ms.mediaRepo.UpdateAnalysisStatus(dbctx.Context{Ctx: ctx}, assetID, types.AnalysisStatusFailed); updErr != nil {
			ms.log.Error("Failed to flip asset to FAILED", "media_asset_id", assetID, "error", updErr)
		}
	}
}

func (ms *mediaService) GetStatus(ctx context.Context, ownerID, assetID uuid.UUID) (*MediaStatus, error) {
	dbc := dbctx.Context{Ctx: ctx}

	asset, err := ms.mediaRepo.GetByIDAndOwnerID(dbc, assetID, ownerID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound(fmt.Errorf("video %s not found", assetID))
	}

	status := &MediaStatus{AnalysisStatus: asset.AnalysisStatus}
	rep, err := ms.reportRepo.GetByMediaAssetID(dbc, assetID)
	if err != nil {
		return nil, err
	}
	if rep != nil {
		status.ReportID = &rep.ID
	}
	return status, nil
}

func (ms *mediaService) ListVideos(ctx context.Context, ownerID uuid.UUID) ([]*MediaAssetView, error) {
	dbc := dbctx.Context{Ctx: ctx}

	assets, err := ms.mediaRepo.GetByOwnerID(dbc, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]*MediaAssetView, 0, len(assets))
	for _, asset := range assets {
		url, expiresIn, err := ms.storageGateway.DownloadURL(ctx, asset.StorageKey)
		if err != nil {
			return nil, err
		}
		views = append(views, &MediaAssetView{Asset: asset, DownloadURL: url, ExpiresIn: expiresIn})
	}
	return views, nil
}

func (ms *mediaService) GetVideo(ctx context.Context, ownerID, assetID uuid.UUID) (*MediaAssetView, error) {
	dbc := dbctx.Context{Ctx: ctx}

	asset, err := ms.mediaRepo.GetByIDAndOwnerID(dbc, assetID, ownerID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound(fmt.Errorf("video %s not found", assetID))
	}

	url, expiresIn, err := ms.storageGateway.DownloadURL(ctx, asset.StorageKey)
	if err != nil {
		return nil, err
	}
	return &MediaAssetView{Asset: asset, DownloadURL: url, ExpiresIn: expiresIn}, nil
}

// DeleteVideo removes the asset, its report and PDF when present, then
// releases storage keys that no row references anymore.
func (ms *mediaService) DeleteVideo(ctx context.Context, ownerID, assetID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}

	asset, err := ms.mediaRepo.GetByIDAndOwnerID(dbc, assetID, ownerID)
	if err != nil {
		return err
	}
	if asset == nil {
		return apierr.NotFound(fmt.Errorf("video %s not found", assetID))
	}

	rep, err := ms.reportRepo.GetByMediaAssetID(dbc, assetID)
	if err != nil {
		return err
	}

	var pdfKey string
	err = ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if rep != nil {
			if rep.PdfKey != nil {
				pdfKey = *rep.PdfKey
			}
			if err := ms.reportRepo.Delete(txc, rep.ID); err != nil {
				return err
			}
		}
		return ms.mediaRepo.Delete(txc, asset.ID)
	})
	if err != nil {
		return err
	}

	// Rows are gone; physical deletion is reference counted.
	if pdfKey != "" {
		if err := ms.storageGateway.ReleaseObject(ctx, pdfKey); err != nil {
			ms.log.Warn("Failed to release PDF object", "storage_key", pdfKey, "error", err)
		}
	}
	if err := ms.storageGateway.ReleaseObject(ctx, asset.StorageKey); err != nil {
		return err
	}

	ms.log.Info("Video deleted", "media_asset_id", assetID)
	return nil
}

func (ms *mediaService) RequestReanalysis(ctx context.Context, assetID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}

	asset, err := ms.mediaRepo.GetByID(dbc, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return apierr.NotFound(fmt.Errorf("video %s not found", assetID))
	}

	rep, err := ms.reportRepo.GetByMediaAssetID(dbc, assetID)
	if err != nil {
		return err
	}
	if rep != nil {
		return apierr.AlreadyExists(fmt.Errorf("report already exists for video %s", assetID))
	}

	if err := ms.mediaRepo.UpdateAnalysisStatus(dbc, assetID, types.AnalysisStatusAnalyzing); err != nil {
		return err
	}
	go ms.triggerAnalysis(asset.ID, asset.StorageKey)
	return nil
}
