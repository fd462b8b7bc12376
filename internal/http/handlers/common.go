package handlers

import (
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", err.Error())
		return false
	}
	return true
}

// mode falls back to offline when the connectivity middleware did not run.
func mode(c *gin.Context) domain.Mode {
	if m := middleware.GetMode(c); m != "" {
		return m
	}
	return domain.ModeOffline
}

// respondData wraps a payload with the mode it was served in.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"data": data,
		"mode": mode(c),
	})
}
