package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/register
func (h Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)

	u, err := svc.Register(c.Request.Context(), mode(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, u)
}

// POST /api/auth/login
func (h Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)

	token, u, err := svc.Login(c.Request.Context(), mode(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"token": token, "user": u})
}
