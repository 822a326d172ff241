package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/pdf"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/gcs"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// PdfDownload is a fresh signed URL for a stored report PDF.
type PdfDownload struct {
	DownloadURL string `json:"download_url"`
	ExpiresIn   int    `json:"expires_in"`
}

// PdfExportService renders a report to PDF exactly once. Re-generation
// is an AlreadyExists error; callers fetch the existing URL instead.
type PdfExportService interface {
	Generate(ctx context.Context, ownerID, reportID uuid.UUID) (*PdfDownload, error)
	GetExistingURL(ctx context.Context, ownerID, reportID uuid.UUID) (*PdfDownload, error)
}

// ReportRenderer is satisfied by pdf.Renderer.
type ReportRenderer interface {
	Render(data pdf.ReportData) ([]byte, error)
}

type pdfExportService struct {
	log            *logger.Logger
	reportRepo     repos.ReportRepo
	storageGateway StorageGatewayService
	bucketService  gcs.BucketService
	renderer       ReportRenderer
}

func NewPdfExportService(
	log *logger.Logger,
	reportRepo repos.ReportRepo,
	storageGateway StorageGatewayService,
	bucketService gcs.BucketService,
	renderer ReportRenderer,
) PdfExportService {
	serviceLog := log.With("service", "PdfExportService")
	return &pdfExportService{
		log:            serviceLog,
		reportRepo:     reportRepo,
		storageGateway: storageGateway,
		bucketService:  bucketService,
		renderer:       renderer,
	}
}

func (ps *pdfExportService) Generate(ctx context.Context, ownerID, reportID uuid.UUID) (*PdfDownload, error) {
	dbc := dbctx.Context{Ctx: ctx}

	rep, err := ps.reportRepo.GetByIDAndOwnerID(dbc, reportID, ownerID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, apierr.NotFound(fmt.Errorf("report %s not found", reportID))
	}
	if rep.PdfKey != nil {
		return nil, apierr.AlreadyExists(fmt.Errorf("PDF already generated for report %s", reportID))
	}

	rendered, err := ps.renderer.Render(toRenderData(rep))
	if err != nil {
		return nil, apierr.ExternalFailure(fmt.Errorf("failed to render PDF: %w", err))
	}

	pdfKey := fmt.Sprintf("report-pdf/%s.pdf", uuid.New())
	if err := ps.bucketService.UploadFile(ctx, pdfKey, bytes.NewReader(rendered)); err != nil {
		return nil, apierr.ExternalFailure(fmt.Errorf("failed to store PDF: %w", err))
	}

	// The pdf_key column only moves NULL -> value. Losing a concurrent
	// race leaves our freshly uploaded object unreferenced, which beats a
	// lost update.
	won, err := ps.reportRepo.SetPdfKeyIfUnset(dbc, reportID, pdfKey)
	if err != nil {
		return nil, err
	}
	if !won {
		ps.log.Info("Lost PDF generation race, uploaded object unreferenced",
			"report_id", reportID, "storage_key", pdfKey)
		return nil, apierr.AlreadyExists(fmt.Errorf("PDF already generated for report %s", reportID))
	}

	if err := ps.storageGateway.RegisterObject(dbc, ownerID, pdfKey, pdfKey, "application/pdf"); err != nil {
		ps.log.Warn("Failed to record PDF object", "storage_key", pdfKey, "error", err)
	}

	ps.log.Info("Report PDF generated", "report_id", reportID, "storage_key", pdfKey)

	url, expiresIn, err := ps.storageGateway.DownloadURL(ctx, pdfKey)
	if err != nil {
		return nil, err
	}
	return &PdfDownload{DownloadURL: url, ExpiresIn: expiresIn}, nil
}

func (ps *pdfExportService) GetExistingURL(ctx context.Context, ownerID, reportID uuid.UUID) (*PdfDownload, error) {
	dbc := dbctx.Context{Ctx: ctx}

	rep, err := ps.reportRepo.GetByIDAndOwnerID(dbc, reportID, ownerID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, apierr.NotFound(fmt.Errorf("report %s not found", reportID))
	}
	if rep.PdfKey == nil {
		return nil, apierr.NotFound(fmt.Errorf("no PDF generated for report %s", reportID))
	}

	url, expiresIn, err := ps.storageGateway.DownloadURL(ctx, *rep.PdfKey)
	if err != nil {
		return nil, err
	}
	return &PdfDownload{DownloadURL: url, ExpiresIn: expiresIn}, nil
}

func toRenderData(rep *types.Report) pdf.ReportData {
	code, _ := strconv.Atoi(rep.AccidentCode)

	var stored []timelineEvent
	_ = json.Unmarshal(rep.TimelineLog, &stored)
	timeline := make([]pdf.TimelineEvent, 0, len(stored))
	for _, ev := range stored {
		timeline = append(timeline, pdf.TimelineEvent{Seconds: ev.Seconds, Event: ev.Event})
	}

	return pdf.ReportData{
		ReportID:          rep.ID.String(),
		Title:             rep.Title,
		AccidentCode:      code,
		FaultA:            rep.FaultA,
		FaultB:            rep.FaultB,
		VehicleADirection: rep.VehicleADirection,
		VehicleBDirection: rep.VehicleBDirection,
		DamageLocation:    rep.DamageLocation,
		Laws:              rep.Laws,
		Precedents:        rep.Precedents,
		Timeline:          timeline,
		CreatedAt:         rep.CreatedAt,
	}
}
