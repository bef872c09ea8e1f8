package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
)

// SessionCounter reports how many rendering sessions are open.
type SessionCounter interface {
	Active() int
}

// Health returns a handler for GET /api/health.
//
// Reports the registered sources and how many rendering sessions are
// currently open. A nil counter reports zero.
func Health(s Searcher, sessions SessionCounter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := 0
		if sessions != nil {
			active = sessions.Active()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "healthy",
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			Timestamp:      time.Now().Format(time.RFC3339),
			Sources:        s.Sources(),
			ActiveSessions: active,
			Version:        "0.1.0",
		})
	}
}
