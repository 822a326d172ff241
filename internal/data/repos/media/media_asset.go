package media

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type MediaAssetRepo interface {
	Create(dbc dbctx.Context, asset *types.MediaAsset) (*types.MediaAsset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error)
	GetByIDAndOwnerID(dbc dbctx.Context, id, ownerID uuid.UUID) (*types.MediaAsset, error)
	GetByOwnerID(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.MediaAsset, error)
	GetByOwnerKeyAndFileName(dbc dbctx.Context, ownerID uuid.UUID, storageKey, fileName string) (*types.MediaAsset, error)
	UpdateAnalysisStatus(dbc dbctx.Context, id uuid.UUID, status types.AnalysisStatus) error
	CountByStorageKey(dbc dbctx.Context, storageKey string) (int64, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type mediaAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaAssetRepo(db *gorm.DB, baseLog *logger.Logger) MediaAssetRepo {
	repoLog := baseLog.With("repo", "MediaAssetRepo")
	return &mediaAssetRepo{db: db, log: repoLog}
}

func (r *mediaAssetRepo) Create(dbc dbctx.Context, asset *types.MediaAsset) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

func (r *mediaAssetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.MediaAsset
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *mediaAssetRepo) GetByIDAndOwnerID(dbc dbctx.Context, id, ownerID uuid.UUID) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.MediaAsset
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *mediaAssetRepo) GetByOwnerID(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MediaAsset
	if err := transaction.WithContext(dbc.Ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *mediaAssetRepo) GetByOwnerKeyAndFileName(dbc dbctx.Context, ownerID uuid.UUID, storageKey, fileName string) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.MediaAsset
	err := transaction.WithContext(dbc.Ctx).
		Where("owner_id = ? AND storage_key = ? AND file_name = ?", ownerID, storageKey, fileName).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *mediaAssetRepo) UpdateAnalysisStatus(dbc dbctx.Context, id uuid.UUID, status types.AnalysisStatus) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"analysis_status": status,
			"updated_at":      time.Now(),
		}).Error
}

func (r *mediaAssetRepo) CountByStorageKey(dbc dbctx.Context, storageKey string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("storage_key = ?", storageKey).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *mediaAssetRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.MediaAsset{}).Error
}
