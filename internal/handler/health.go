package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gunnas32/QR-Stock/internal/worker"
)

// Health returns a JSON health check response.
// Probes whatever backends are actually configured: db and rdb are nil when
// the snapshot store runs without Redis, and that still counts as healthy.
func Health(db *gorm.DB, rdb *redis.Client, d *worker.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "snapshot"
		if db != nil {
			storeStatus = "connected"
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				storeStatus = "error"
			}
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		var dlqDepth int64
		if d != nil {
			if n, err := d.DLQLength(ctx); err == nil {
				dlqDepth = n
			}
		}

		status := http.StatusOK
		if storeStatus == "error" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":        status == http.StatusOK,
			"store":     storeStatus,
			"redis":     redisStatus,
			"dlq_depth": dlqDepth,
		})
	}
}
