package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/productivityhub/backend/internal/http/response"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/requestdata"
	"github.com/productivityhub/backend/internal/services"
	"github.com/productivityhub/backend/internal/types"
)

type SelectionHandler struct {
	log              *logger.Logger
	selectionService services.SelectionService
}

func NewSelectionHandler(log *logger.Logger, selectionService services.SelectionService) *SelectionHandler {
	return &SelectionHandler{
		log:              log.With("handler", "SelectionHandler"),
		selectionService: selectionService,
	}
}

func (h *SelectionHandler) CreateSelection(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var body struct {
		Filter *types.ContactFilter `json:"filter"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	token, expiresAt, err := h.selectionService.CreateSelection(c.Request.Context(), rd.TenantID, body.Filter)
	if err != nil {
		respondServiceError(c, h.log, "CreateSelection", err)
		return
	}
	response.RespondCreated(c, gin.H{
		"selection_token": token,
		"expires_at":      expiresAt,
	})
}
