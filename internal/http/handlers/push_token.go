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

type PushTokenHandler struct {
	log              *logger.Logger
	pushTokenService services.PushTokenService
}

func NewPushTokenHandler(log *logger.Logger, pushTokenService services.PushTokenService) *PushTokenHandler {
	return &PushTokenHandler{
		log:              log.With("handler", "PushTokenHandler"),
		pushTokenService: pushTokenService,
	}
}

type registerTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *PushTokenHandler) Register(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	if err := h.pushTokenService.Register(c.Request.Context(), rd.UserID, req.Token); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"registered": true})
}
