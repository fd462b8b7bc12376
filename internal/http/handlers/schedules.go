package handlers

import (
	"net/http"
	"strconv"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/schedules?origin=&destination=&date=
func (h Handlers) SearchSchedules(c *gin.Context) {
	var q models.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid query", err.Error())
		return
	}
	svc := h.Schedules
	svc.RequestID = middleware.GetRequestID(c)

	found, err := svc.Search(c.Request.Context(), mode(c), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, found)
}

// GET /api/schedules/:id
func (h Handlers) GetSchedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "must be a number"})
		return
	}
	s, err := h.Schedules.Get(c.Request.Context(), mode(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, s)
}
