package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// healthTimeout bounds the store ping of a health check.
const healthTimeout = 2 * time.Second

// Pinger is anything that can report store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
func HealthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	}
}

// StatsHandler returns the number of records of each entity
func StatsHandler(store database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := store.Counts(c.Request.Context())
		if err != nil {
			respondStoreError(c, err, "Statistics")
			return
		}

		respondOK(c, counts)
	}
}
