package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
)

// RateLimiterConfig bounds a sliding window.
type RateLimiterConfig struct {
	MaxRequests   int
	WindowSeconds int
	// Strategy selects the limit key: "ip" (default), "user", "endpoint".
	Strategy string
}

// slidingWindowScript implements an atomic sliding-window counter on a
// sorted set keyed by request timestamp.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_start = now - window

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, now .. '-' .. ARGV[4])
		redis.call('EXPIRE', key, window)
		return {1, limit - current - 1, now + window}
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
		local reset_time = tonumber(oldest) + window
		return {0, 0, reset_time}
	end
`)

// RateLimiter is a Redis-backed sliding-window limiter. When Redis is
// unreachable the limiter fails open: availability of the site wins over
// strictness of the limit.
func RateLimiter(rdb *redis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "ip"
	}
	if log == nil {
		log = logger.L()
	}

	return func(c *gin.Context) {
		key := buildRateLimitKey(c, cfg.Strategy)

		allowed, remaining, resetTime, err := checkRateLimit(c.Request.Context(), rdb, key, cfg)
		if err != nil {
			log.Error("rate limiter unavailable, failing open",
				zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime))

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", cfg.WindowSeconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": fmt.Sprintf("Too many requests, please try again in %d seconds", cfg.WindowSeconds),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func buildRateLimitKey(c *gin.Context, strategy string) string {
	const prefix = "rate_limit"

	switch strategy {
	case "user":
		if userID, exists := c.Get("user_id"); exists {
			return fmt.Sprintf("%s:user:%v", prefix, userID)
		}
		return fmt.Sprintf("%s:ip:%s", prefix, c.ClientIP())
	case "endpoint":
		return fmt.Sprintf("%s:endpoint:%s:%s", prefix, c.Request.URL.Path, c.ClientIP())
	default:
		return fmt.Sprintf("%s:ip:%s", prefix, c.ClientIP())
	}
}

func checkRateLimit(ctx context.Context, rdb *redis.Client, key string, cfg RateLimiterConfig) (allowed bool, remaining int, resetTime int64, err error) {
	now := time.Now().Unix()
	nonce := time.Now().UnixNano()

	result, err := slidingWindowScript.Run(ctx, rdb, []string{key},
		now, cfg.WindowSeconds, cfg.MaxRequests, nonce).Result()
	if err != nil {
		return false, 0, 0, err
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected rate limit script result: %v", result)
	}

	allowedInt, _ := resultSlice[0].(int64)
	remainingInt, _ := resultSlice[1].(int64)
	resetTimeInt, _ := resultSlice[2].(int64)

	return allowedInt == 1, int(remainingInt), resetTimeInt, nil
}

// LoginRateLimiter throttles credential guessing: 5 attempts per 5 minutes
// per IP.
func LoginRateLimiter(rdb *redis.Client, log *logger.Logger) gin.HandlerFunc {
	return RateLimiter(rdb, RateLimiterConfig{
		MaxRequests:   5,
		WindowSeconds: 300,
		Strategy:      "ip",
	}, log)
}

// UploadRateLimiter caps uploads at 30 per minute per authenticated user.
func UploadRateLimiter(rdb *redis.Client, log *logger.Logger) gin.HandlerFunc {
	return RateLimiter(rdb, RateLimiterConfig{
		MaxRequests:   30,
		WindowSeconds: 60,
		Strategy:      "user",
	}, log)
}
