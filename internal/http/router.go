package api

import (
	stdhttp "net/http"

	intconfig "busbooking/internal/config"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/http/middleware"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router wires into routes.
type Deps struct {
	Env      intconfig.Env
	Handlers h.Handlers
	Prober   middleware.Prober
	Tokens   middleware.TokenParser
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(d.Env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger := utils.Logger("http")
		logger.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", h.Health)

	// every route below decides online/offline exactly once
	live := api.Group("", middleware.Connectivity(d.Prober))
	{
		live.GET("/connection", d.Handlers.ConnectionStatus)

		auth := live.Group("/auth")
		auth.POST("/register", d.Handlers.Register)
		auth.POST("/login", d.Handlers.Login)

		schedules := live.Group("/schedules")
		schedules.GET("", d.Handlers.SearchSchedules)
		schedules.GET("/:id", d.Handlers.GetSchedule)

		bookings := live.Group("/bookings", middleware.AuthRequired(d.Tokens))
		bookings.POST("", d.Handlers.CreateBooking)
		bookings.GET("", d.Handlers.ListBookings)
		bookings.GET("/:ref", d.Handlers.GetBooking)
		bookings.GET("/:ref/e-ticket", d.Handlers.BookingETicket)

		admin := live.Group("", middleware.AuthRequired(d.Tokens), middleware.AdminOnly())
		admin.POST("/sync", d.Handlers.Sync)
		admin.GET("/admin/stats", d.Handlers.AdminStats)
		admin.POST("/admin/cache", d.Handlers.RefreshCache)
	}

	return r
}
