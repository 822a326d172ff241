package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/envutil"
	"github.com/dashfault/dashfault-backend/internal/platform/gcs"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// UploadIntent is what a client needs to PUT a file directly to storage.
type UploadIntent struct {
	UploadURL  string `json:"upload_url"`
	StorageKey string `json:"storage_key"`
	ExpiresIn  int    `json:"expires_in"`
}

// StorageGatewayService owns storage keys: dedup on issue, fresh signed
// URLs on demand, reference-counted physical deletion.
type StorageGatewayService interface {
	CreateUploadIntent(ctx context.Context, ownerID uuid.UUID, fileName, contentType string) (*UploadIntent, error)
	DownloadURL(ctx context.Context, storageKey string) (string, int, error)
	RegisterObject(dbc dbctx.Context, ownerID uuid.UUID, storageKey, fileName, contentType string) error
	HasObject(dbc dbctx.Context, ownerID uuid.UUID, storageKey string) (bool, error)
	// ReleaseObject physically deletes the object and its record once no
	// media asset row references the key anymore. Callers remove their
	// own referencing row first.
	ReleaseObject(ctx context.Context, storageKey string) error
	PresignTTL() time.Duration
}

type storageGatewayService struct {
	db            *gorm.DB
	log           *logger.Logger
	objectRepo    repos.StoredObjectRepo
	mediaRepo     repos.MediaAssetRepo
	bucketService gcs.BucketService
	presignTTL    time.Duration
}

func NewStorageGatewayService(
	db *gorm.DB,
	log *logger.Logger,
	objectRepo repos.StoredObjectRepo,
	mediaRepo repos.MediaAssetRepo,
	bucketService gcs.BucketService,
) StorageGatewayService {
	serviceLog := log.With("service", "StorageGatewayService")
	ttlSeconds := envutil.GetEnvAsInt("PRESIGN_TTL_SECONDS", 300, serviceLog)
	return &storageGatewayService{
		db:            db,
		log:           serviceLog,
		objectRepo:    objectRepo,
		mediaRepo:     mediaRepo,
		bucketService: bucketService,
		presignTTL:    time.Duration(ttlSeconds) * time.Second,
	}
}

func (sg *storageGatewayService) PresignTTL() time.Duration {
	return sg.presignTTL
}

// CreateUploadIntent reuses the key of an earlier intent for the same
// {fileName, contentType, owner} triple; only the signed URL is fresh.
// A new triple mints a new unique key and persists its record.
func (sg *storageGatewayService) CreateUploadIntent(ctx context.Context, ownerID uuid.UUID, fileName, contentType string) (*UploadIntent, error) {
	fileName = strings.TrimSpace(fileName)
	contentType = strings.TrimSpace(contentType)
	if fileName == "" || contentType == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("fileName and contentType are required"))
	}

	dbc := dbctx.Context{Ctx: ctx}
	existing, err := sg.objectRepo.GetByDedupTriple(dbc, fileName, contentType, ownerID)
	if err != nil {
		return nil, err
	}

	var storageKey string
	if existing != nil {
		storageKey = existing.StorageKey
	} else {
		storageKey = mintStorageKey(fileName)
		if _, err := sg.objectRepo.Create(dbc, &types.StoredObject{
			StorageKey:  storageKey,
			FileName:    fileName,
			ContentType: contentType,
			OwnerID:     ownerID,
		}); err != nil {
			return nil, err
		}
	}

	uploadURL, err := sg.bucketService.SignedPutURL(storageKey, contentType, sg.presignTTL)
	if err != nil {
		return nil, apierr.ExternalFailure(fmt.Errorf("failed to sign upload URL: %w", err))
	}

	return &UploadIntent{
		UploadURL:  uploadURL,
		StorageKey: storageKey,
		ExpiresIn:  int(sg.presignTTL.Seconds()),
	}, nil
}

// DownloadURL mints a fresh short-lived GET URL. Ownership checks happen
// in the calling service before the key reaches here.
func (sg *storageGatewayService) DownloadURL(ctx context.Context, storageKey string) (string, int, error) {
	url, err := sg.bucketService.SignedGetURL(storageKey, sg.presignTTL)
	if err != nil {
		return "", 0, apierr.ExternalFailure(fmt.Errorf("failed to sign download URL: %w", err))
	}
	return url, int(sg.presignTTL.Seconds()), nil
}

func (sg *storageGatewayService) RegisterObject(dbc dbctx.Context, ownerID uuid.UUID, storageKey, fileName, contentType string) error {
	_, err := sg.objectRepo.Create(dbc, &types.StoredObject{
		StorageKey:  storageKey,
		FileName:    fileName,
		ContentType: contentType,
		OwnerID:     ownerID,
	})
	return err
}

func (sg *storageGatewayService) HasObject(dbc dbctx.Context, ownerID uuid.UUID, storageKey string) (bool, error) {
	obj, err := sg.objectRepo.GetByKeyAndOwnerID(dbc, storageKey, ownerID)
	if err != nil {
		return false, err
	}
	return obj != nil, nil
}

func (sg *storageGatewayService) ReleaseObject(ctx context.Context, storageKey string) error {
	dbc := dbctx.Context{Ctx: ctx}
	remaining, err := sg.mediaRepo.CountByStorageKey(dbc, storageKey)
	if err != nil {
		return err
	}
	if remaining > 0 {
		sg.log.Info("Storage key still referenced, keeping object",
			"storage_key", storageKey, "references", remaining)
		return nil
	}

	// The referencing row is already gone. If the physical delete fails
	// now we are left with an orphaned object, which is the accepted
	// trade-off for never deleting an object a row still depends on.
	if err := sg.bucketService.DeleteFile(ctx, storageKey); err != nil {
		sg.log.Warn("Physical object deletion failed, object orphaned",
			"storage_key", storageKey, "error", err)
	}
	if err := sg.objectRepo.DeleteByStorageKey(dbc, storageKey); err != nil {
		return err
	}
	sg.log.Info("Storage object released", "storage_key", storageKey)
	return nil
}

// mintStorageKey never derives the key from content; a fresh UUID plus
// the original extension keeps keys unique and debuggable.
func mintStorageKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return uuid.New().String() + ext
}
