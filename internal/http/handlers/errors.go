package handlers

import (
	"errors"
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"
	"busbooking/internal/services"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsDuplicate(err):
		respondError(c, http.StatusConflict, "duplicate", err.Error(), nil)
	case domain.IsInsufficientInventory(err):
		respondError(c, http.StatusConflict, "insufficient_inventory", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnavailable(err):
		respondError(c, http.StatusServiceUnavailable, "authority_unavailable", "booking database is unreachable, try again", nil)
	case domain.IsCorrupt(err):
		logger := utils.Logger("http")
		logger.Error().Err(err).Str(utils.FieldRequestID, middleware.GetRequestID(c)).Msg("corrupt offline record")
		respondError(c, http.StatusInternalServerError, "corrupt_record", "offline data is damaged, contact an operator", nil)
	default:
		logger := utils.Logger("http")
		logger.Error().Err(err).Str(utils.FieldRequestID, middleware.GetRequestID(c)).Msg("unhandled error")
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
