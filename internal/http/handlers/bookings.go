package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
func (h Handlers) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Bookings
	svc.RequestID = middleware.GetRequestID(c)

	b, err := svc.Create(c.Request.Context(), mode(c), middleware.GetCaller(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusCreated
	if b.IsOffline {
		// recorded, not yet confirmed by the authority
		status = http.StatusAccepted
	}
	respondData(c, status, b)
}

// GET /api/bookings
func (h Handlers) ListBookings(c *gin.Context) {
	list, err := h.Bookings.List(c.Request.Context(), mode(c), middleware.GetCaller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

// GET /api/bookings/:ref
func (h Handlers) GetBooking(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), mode(c), middleware.GetCaller(c), c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, b)
}

// GET /api/bookings/:ref/e-ticket
func (h Handlers) BookingETicket(c *gin.Context) {
	svc := h.Docs
	svc.RequestID = middleware.GetRequestID(c)
	svc.Bookings = h.Bookings

	pdf, filename, err := svc.GenerateETicket(c.Request.Context(), mode(c), middleware.GetCaller(c), c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
