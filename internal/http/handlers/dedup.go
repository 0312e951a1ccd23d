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

type DedupHandler struct {
	log          *logger.Logger
	dedupService services.DedupService
}

func NewDedupHandler(log *logger.Logger, dedupService services.DedupService) *DedupHandler {
	return &DedupHandler{
		log:          log.With("handler", "DedupHandler"),
		dedupService: dedupService,
	}
}

func (h *DedupHandler) Preview(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req types.DedupPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.dedupService.FindDuplicateClusters(c.Request.Context(), rd.TenantID, &req)
	if err != nil {
		respondServiceError(c, h.log, "Dedup preview", err)
		return
	}
	response.RespondOK(c, resp)
}

func (h *DedupHandler) Merge(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req types.MergeContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.dedupService.MergeContacts(c.Request.Context(), rd.TenantID, &req, rd.UserID, rd.UserName)
	if err != nil {
		respondServiceError(c, h.log, "Merge", err)
		return
	}
	response.RespondOK(c, resp)
}
