package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/http/response"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
	"github.com/dashfault/dashfault-backend/internal/services"
)

// Callback bodies are bounded; anything larger is not a plausible
// analysis result.
const maxCallbackBody = 1 << 20

// AIInternalHandler receives calls from the analysis service, not from
// end users. The routes sit on the internal group.
type AIInternalHandler struct {
	log          *logger.Logger
	assembler    services.ReportAssembler
	mediaService services.MediaService
}

func NewAIInternalHandler(log *logger.Logger, assembler services.ReportAssembler, mediaService services.MediaService) *AIInternalHandler {
	return &AIInternalHandler{
		log:          log.With("handler", "AIInternalHandler"),
		assembler:    assembler,
		mediaService: mediaService,
	}
}

// AnalysisCallback accepts the analysis result payload. The body shape
// is whatever the analysis service currently emits; decoding is
// defensive and delivery is at least once.
func (h *AIInternalHandler) AnalysisCallback(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	rep, err := h.assembler.HandleAnalysisCallback(c.Request.Context(), videoID, raw)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report_id": rep.ID})
}

// RequestAnalysis re-triggers the outbound analysis call for a video
// that does not have a report yet.
func (h *AIInternalHandler) RequestAnalysis(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	if err := h.mediaService.RequestReanalysis(c.Request.Context(), videoID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"requested": true})
}
