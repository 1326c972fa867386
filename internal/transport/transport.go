package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider exposes background worker state on the health endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

func InitRoutes(reminderHandler *ReminderHandler, stats StatsProvider, requestTimeout time.Duration) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	timeout := middleware.Timeout(requestTimeout)

	// API routes
	api := router.Group("/api/v1")
	{
		reminders := api.Group("/reminders")
		{
			// a sweep runs under its own deadline
			reminders.POST("/run", reminderHandler.RunReminders)
			reminders.GET("/run", reminderHandler.RunReminders)
			reminders.GET("/vouchers/:id", timeout, reminderHandler.PreviewVoucher)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		}
		if stats != nil {
			body["worker"] = stats.GetStats()
		}
		c.JSON(http.StatusOK, body)
	})

	return router
}
