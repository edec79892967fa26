package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/durga1023/ContactUsRepository/pkg/errors"
	"github.com/durga1023/ContactUsRepository/pkg/logger"
	"github.com/durga1023/ContactUsRepository/pkg/metrics"
	"github.com/durga1023/ContactUsRepository/pkg/response"
)

// RateLimit limits requests per (clientIP, path) within a fixed window.
// Requests beyond the limit are rejected immediately; nothing is queued.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP() + "|" + c.FullPath()
		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			// A broken counter store must not take the endpoint down.
			log.Warn("rate store unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > maxRequests {
			metrics.RateLimited.Inc()
			log.Info("request rejected",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.FullPath()),
			)
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
