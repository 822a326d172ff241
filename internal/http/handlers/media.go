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

type MediaHandler struct {
	log          *logger.Logger
	mediaService services.MediaService
}

func NewMediaHandler(log *logger.Logger, mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{
		log:          log.With("handler", "MediaHandler"),
		mediaService: mediaService,
	}
}

func (h *MediaHandler) UploadNotify(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req services.UploadNotifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	asset, err := h.mediaService.HandleUploadNotify(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"video_id":        asset.ID,
		"file_type":       asset.FileType,
		"analysis_status": asset.AnalysisStatus,
	})
}

func (h *MediaHandler) ListVideos(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	views, err := h.mediaService.ListVideos(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": views})
}

func (h *MediaHandler) GetVideo(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	view, err := h.mediaService.GetVideo(c.Request.Context(), rd.UserID, videoID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (h *MediaHandler) DeleteVideo(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	if err := h.mediaService.DeleteVideo(c.Request.Context(), rd.UserID, videoID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GetStatus is the poll endpoint MANUAL uploads rely on instead of push.
func (h *MediaHandler) GetStatus(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	status, err := h.mediaService.GetStatus(c.Request.Context(), rd.UserID, videoID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, status)
}
