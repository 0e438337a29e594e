package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"civiclens-be/logger"
)

// SubmissionRateLimiter caps report submissions per client IP per day. A nil client
// or a non-positive limit disables it.
func SubmissionRateLimiter(client *redis.Client, prefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientKey := prefix + ":" + c.ClientIP()

		count, err := client.Incr(ctx, clientKey).Result()
		if err != nil {
			// Submissions stay open while Redis is down.
			logger.Log.Errorf("Rate limiter: redis error incrementing count: %v", err)
			c.Next()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := client.Expire(ctx, clientKey, 24*time.Hour).Err(); err != nil {
				logger.Log.Errorf("Rate limiter: redis error setting TTL: %v", err)
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, clientKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "rate limit exceeded",
				"message":     "You have reached the daily report limit. Please try again tomorrow.",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
