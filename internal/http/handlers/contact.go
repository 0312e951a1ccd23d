package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/productivityhub/backend/internal/http/response"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/requestdata"
	"github.com/productivityhub/backend/internal/services"
	"github.com/productivityhub/backend/internal/types"
)

type ContactHandler struct {
	log            *logger.Logger
	contactService services.ContactService
}

func NewContactHandler(log *logger.Logger, contactService services.ContactService) *ContactHandler {
	return &ContactHandler{
		log:            log.With("handler", "ContactHandler"),
		contactService: contactService,
	}
}

func (h *ContactHandler) ListContacts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}
	contacts, err := h.contactService.List(c.Request.Context(), rd.TenantID, filter)
	if err != nil {
		respondServiceError(c, h.log, "ListContacts", err)
		return
	}
	response.RespondOK(c, gin.H{"contacts": contacts})
}

func (h *ContactHandler) GetContact(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contact, err := h.contactService.Get(c.Request.Context(), rd.TenantID, contactID)
	if err != nil {
		respondServiceError(c, h.log, "GetContact", err)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact})
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.CreateContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contact, err := h.contactService.Create(c.Request.Context(), rd.TenantID, &input, rd.UserID, rd.UserName)
	if err != nil {
		respondServiceError(c, h.log, "CreateContact", err)
		return
	}
	response.RespondCreated(c, gin.H{"contact": contact})
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var input services.UpdateContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contact, err := h.contactService.Update(c.Request.Context(), rd.TenantID, contactID, &input, rd.UserID, rd.UserName)
	if err != nil {
		respondServiceError(c, h.log, "UpdateContact", err)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact})
}

func (h *ContactHandler) DeleteContact(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.contactService.Delete(c.Request.Context(), rd.TenantID, contactID, rd.UserID, rd.UserName); err != nil {
		respondServiceError(c, h.log, "DeleteContact", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContactHandler) ReplaceContactTags(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var body struct {
		TagIDs []uuid.UUID `json:"tag_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	contact, err := h.contactService.ReplaceTags(c.Request.Context(), rd.TenantID, contactID, body.TagIDs, rd.UserID, rd.UserName)
	if err != nil {
		respondServiceError(c, h.log, "ReplaceContactTags", err)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact})
}

func (h *ContactHandler) ListContactHistory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rows, err := h.contactService.History(c.Request.Context(), rd.TenantID, contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListContactHistory", err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows})
}

// filterFromQuery builds a ContactFilter out of list query params.
func filterFromQuery(c *gin.Context) (*types.ContactFilter, error) {
	filter := &types.ContactFilter{Name: c.Query("name")}
	for _, raw := range c.QueryArray("tag_id") {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		filter.TagIDs = append(filter.TagIDs, id)
	}
	if raw := c.Query("updated_after"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		filter.UpdatedAfter = &ts
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid limit %q", raw)
		}
		filter.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid offset %q", raw)
		}
		filter.Offset = n
	}
	if filter.Name == "" && len(filter.TagIDs) == 0 && filter.UpdatedAfter == nil &&
		filter.Limit == 0 && filter.Offset == 0 {
		return nil, nil
	}
	return filter, nil
}
