package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/productivityhub/backend/internal/http/response"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/requestdata"
	"github.com/productivityhub/backend/internal/services"
)

type TagHandler struct {
	log        *logger.Logger
	tagService services.TagService
}

func NewTagHandler(log *logger.Logger, tagService services.TagService) *TagHandler {
	return &TagHandler{
		log:        log.With("handler", "TagHandler"),
		tagService: tagService,
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	tags, err := h.tagService.List(c.Request.Context(), rd.TenantID)
	if err != nil {
		respondServiceError(c, h.log, "ListTags", err)
		return
	}
	response.RespondOK(c, gin.H{"tags": tags})
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var body struct {
		Name  string  `json:"name"`
		Color *string `json:"color,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	tag, err := h.tagService.Create(c.Request.Context(), rd.TenantID, body.Name, body.Color)
	if err != nil {
		respondServiceError(c, h.log, "CreateTag", err)
		return
	}
	response.RespondCreated(c, gin.H{"tag": tag})
}
