package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/productivityhub/backend/internal/http/response"
	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
)

var errInternal = errors.New("internal server error")

// statusForError maps service errors to HTTP status and error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, apperrors.ErrDatasetTooLarge):
		return http.StatusBadRequest, "dataset_too_large"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusBadRequest, "selection_expired"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// respondServiceError writes the envelope for a failed service call.
// Internal failures log the wrapped detail and return a generic body;
// driver errors and query fragments never reach the client.
func respondServiceError(c *gin.Context, log *logger.Logger, op string, err error) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", "error", err)
		response.RespondError(c, status, code, errInternal)
		return
	}
	response.RespondError(c, status, code, err)
}
