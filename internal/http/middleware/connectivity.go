package middleware

import (
	"context"

	"busbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

const modeKey = "mode"

// Prober is satisfied by *connectivity.Monitor.
type Prober interface {
	ProbeAndRemember(ctx context.Context) bool
}

// Connectivity probes the authority once per request and records the mode
// every handler in the chain must use.
func Connectivity(p Prober) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(modeKey, domain.ModeFor(p.ProbeAndRemember(c.Request.Context())))
		c.Next()
	}
}

// GetMode returns the mode chosen for this request. Without the middleware
// it is empty.
func GetMode(c *gin.Context) domain.Mode {
	if v, ok := c.Get(modeKey); ok {
		if m, ok := v.(domain.Mode); ok {
			return m
		}
	}
	return ""
}
