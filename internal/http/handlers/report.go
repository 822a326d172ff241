package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/http/response"
	"github.com/dashfault/dashfault-backend/internal/platform/ctxutil"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
	"github.com/dashfault/dashfault-backend/internal/services"
)

type ReportHandler struct {
	log           *logger.Logger
	reportService services.ReportService
	pdfService    services.PdfExportService
}

func NewReportHandler(log *logger.Logger, reportService services.ReportService, pdfService services.PdfExportService) *ReportHandler {
	return &ReportHandler{
		log:           log.With("handler", "ReportHandler"),
		reportService: reportService,
		pdfService:    pdfService,
	}
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reports": reports})
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	view, err := h.reportService.GetReport(c.Request.Context(), rd.UserID, reportID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (h *ReportHandler) DeleteReport(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	if err := h.reportService.DeleteReport(c.Request.Context(), rd.UserID, reportID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GeneratePdf renders and stores the report PDF. A second call for the
// same report gets already_exists; clients then call GetPdf.
func (h *ReportHandler) GeneratePdf(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	download, err := h.pdfService.Generate(c.Request.Context(), rd.UserID, reportID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, download)
}

func (h *ReportHandler) GetPdf(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	download, err := h.pdfService.GetExistingURL(c.Request.Context(), rd.UserID, reportID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, download)
}
