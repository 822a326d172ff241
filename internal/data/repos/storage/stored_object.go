package storage

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type StoredObjectRepo interface {
	Create(dbc dbctx.Context, obj *types.StoredObject) (*types.StoredObject, error)
	// GetByDedupTriple finds an existing record for the same
	// {fileName, contentType, ownerID} so a repeated upload intent can
	// reuse its key.
	GetByDedupTriple(dbc dbctx.Context, fileName, contentType string, ownerID uuid.UUID) (*types.StoredObject, error)
	GetByKeyAndOwnerID(dbc dbctx.Context, storageKey string, ownerID uuid.UUID) (*types.StoredObject, error)
	DeleteByStorageKey(dbc dbctx.Context, storageKey string) error
}

type storedObjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoredObjectRepo(db *gorm.DB, baseLog *logger.Logger) StoredObjectRepo {
	repoLog := baseLog.With("repo", "StoredObjectRepo")
	return &storedObjectRepo{db: db, log: repoLog}
}

func (r *storedObjectRepo) Create(dbc dbctx.Context, obj *types.StoredObject) (*types.StoredObject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if obj.ID == uuid.Nil {
		obj.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(obj).Error; err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *storedObjectRepo) GetByDedupTriple(dbc dbctx.Context, fileName, contentType string, ownerID uuid.UUID) (*types.StoredObject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.StoredObject
	err := transaction.WithContext(dbc.Ctx).
		Where("file_name = ? AND content_type = ? AND owner_id = ?", fileName, contentType, ownerID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *storedObjectRepo) GetByKeyAndOwnerID(dbc dbctx.Context, storageKey string, ownerID uuid.UUID) (*types.StoredObject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.StoredObject
	err := transaction.WithContext(dbc.Ctx).
		Where("storage_key = ? AND owner_id = ?", storageKey, ownerID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *storedObjectRepo) DeleteByStorageKey(dbc dbctx.Context, storageKey string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("storage_key = ?", storageKey).
		Delete(&types.StoredObject{}).Error
}
