package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type ReportRepo interface {
	Create(dbc dbctx.Context, rep *types.Report) (*types.Report, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Report, error)
	GetByIDAndOwnerID(dbc dbctx.Context, id, ownerID uuid.UUID) (*types.Report, error)
	GetByMediaAssetID(dbc dbctx.Context, mediaAssetID uuid.UUID) (*types.Report, error)
	GetByOwnerID(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Report, error)
	// SetPdfKeyIfUnset is the atomic check-and-set guarding single-shot PDF
	// generation; it reports whether this caller won.
	SetPdfKeyIfUnset(dbc dbctx.Context, id uuid.UUID, pdfKey string) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (r *reportRepo) Create(dbc dbctx.Context, rep *types.Report) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(rep).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *reportRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Report
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reportRepo) GetByIDAndOwnerID(dbc dbctx.Context, id, ownerID uuid.UUID) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Report
	err := transaction.WithContext(dbc.Ctx).
		Joins("JOIN media_asset ON media_asset.id = report.media_asset_id").
		Where("report.id = ? AND media_asset.owner_id = ?", id, ownerID).
		Preload("MediaAsset").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reportRepo) GetByMediaAssetID(dbc dbctx.Context, mediaAssetID uuid.UUID) (*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Report
	err := transaction.WithContext(dbc.Ctx).
		Where("media_asset_id = ?", mediaAssetID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reportRepo) GetByOwnerID(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Report, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Report
	if err := transaction.WithContext(dbc.Ctx).
		Joins("JOIN media_asset ON media_asset.id = report.media_asset_id").
		Where("media_asset.owner_id = ?", ownerID).
		Order("report.created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reportRepo) SetPdfKeyIfUnset(dbc dbctx.Context, id uuid.UUID, pdfKey string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Report{}).
		Where("id = ? AND pdf_key IS NULL", id).
		Updates(map[string]interface{}{
			"pdf_key":    pdfKey,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *reportRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Report{}).Error
}
