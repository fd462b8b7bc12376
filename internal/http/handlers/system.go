package handlers

import (
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"
	"busbooking/internal/services"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/connection
func (h Handlers) ConnectionStatus(c *gin.Context) {
	status, err := h.Connection.Status(c.Request.Context(), mode(c) == domain.ModeOnline)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// POST /api/sync
//
// The result is returned even when the run was cut short so the operator
// sees what did commit.
func (h Handlers) Sync(c *gin.Context) {
	if mode(c) == domain.ModeOffline {
		respondError(c, http.StatusServiceUnavailable, "authority_unavailable", "cannot sync while offline", nil)
		return
	}
	rid := middleware.GetRequestID(c)
	utils.LogEvent(rid, "sync", "trigger", "sync requested over http")
	res, err := h.Reconcile.Run(services.WithRequestID(c.Request.Context(), rid))
	if domain.IsUnavailable(err) {
		c.JSON(http.StatusServiceUnavailable, res)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/admin/stats
func (h Handlers) AdminStats(c *gin.Context) {
	if mode(c) == domain.ModeOffline {
		respondError(c, http.StatusServiceUnavailable, "authority_unavailable", "statistics need the booking database", nil)
		return
	}
	stats, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// POST /api/admin/cache
func (h Handlers) RefreshCache(c *gin.Context) {
	if mode(c) == domain.ModeOffline {
		respondError(c, http.StatusServiceUnavailable, "authority_unavailable", "cannot refresh the cache while offline", nil)
		return
	}
	svc := h.Schedules
	svc.RequestID = middleware.GetRequestID(c)
	n, err := svc.RefreshCache(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"cached_schedules": n})
}
