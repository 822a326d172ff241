package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// ReportView is a report plus a fresh signed URL for its source video.
type ReportView struct {
	Report     *types.Report `json:"report"`
	VideoURL   string        `json:"video_url"`
	URLExpires int           `json:"url_expires_in"`
	HasPdf     bool          `json:"has_pdf"`
}

type ReportService interface {
	ListReports(ctx context.Context, ownerID uuid.UUID) ([]*types.Report, error)
	GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*ReportView, error)
	DeleteReport(ctx context.Context, ownerID, reportID uuid.UUID) error
}

type reportService struct {
	db             *gorm.DB
	log            *logger.Logger
	reportRepo     repos.ReportRepo
	mediaRepo      repos.MediaAssetRepo
	storageGateway StorageGatewayService
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	reportRepo repos.ReportRepo,
	mediaRepo repos.MediaAssetRepo,
	storageGateway StorageGatewayService,
) ReportService {
	serviceLog := log.With("service", "ReportService")
	return &reportService{
		db:             db,
		log:            serviceLog,
		reportRepo:     reportRepo,
		mediaRepo:      mediaRepo,
		storageGateway: storageGateway,
	}
}

func (rs *reportService) ListReports(ctx context.Context, ownerID uuid.UUID) ([]*types.Report, error) {
	return rs.reportRepo.GetByOwnerID(dbctx.Context{Ctx: ctx}, ownerID)
}

func (rs *reportService) GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*ReportView, error) {
	dbc := dbctx.Context{Ctx: ctx}

	rep, err := rs.reportRepo.GetByIDAndOwnerID(dbc, reportID, ownerID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, apierr.NotFound(fmt.Errorf("report %s not found", reportID))
	}

	view := &ReportView{Report: rep, HasPdf: rep.PdfKey != nil}
	if rep.MediaAsset != nil {
		url, expiresIn, err := rs.storageGateway.DownloadURL(ctx, rep.MediaAsset.StorageKey)
		if err != nil {
			return nil, err
		}
		view.VideoURL = url
		view.URLExpires = expiresIn
	}
	return view, nil
}

// DeleteReport removes the report row and releases the PDF object when
// one was generated. The source video stays.
func (rs *reportService) DeleteReport(ctx context.Context, ownerID, reportID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}

	rep, err := rs.reportRepo.GetByIDAndOwnerID(dbc, reportID, ownerID)
	if err != nil {
		return err
	}
	if rep == nil {
		return apierr.NotFound(fmt.Errorf("report %s not found", reportID))
	}

	if err := rs.reportRepo.Delete(dbc, reportID); err != nil {
		return err
	}
	if rep.PdfKey != nil {
		if err := rs.storageGateway.ReleaseObject(ctx, *rep.PdfKey); err != nil {
			rs.log.Warn("Failed to release PDF object", "storage_key", *rep.PdfKey, "error", err)
		}
	}

	rs.log.Info("Report deleted", "report_id", reportID)
	return nil
}
