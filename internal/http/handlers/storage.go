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

type StorageHandler struct {
	log            *logger.Logger
	storageGateway services.StorageGatewayService
}

func NewStorageHandler(log *logger.Logger, storageGateway services.StorageGatewayService) *StorageHandler {
	return &StorageHandler{
		log:            log.With("handler", "StorageHandler"),
		storageGateway: storageGateway,
	}
}

type uploadIntentRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

func (h *StorageHandler) CreateUploadIntent(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req uploadIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	intent, err := h.storageGateway.CreateUploadIntent(c.Request.Context(), rd.UserID, req.FileName, req.ContentType)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, intent)
}
