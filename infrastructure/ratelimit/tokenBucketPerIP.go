package ratelimit

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth/limiter"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"
)

const defaultRequestsPerSecond = 25

// limitFromEnv reads RATE_LIMIT_PER_SECOND, falling back to the default
// when unset or unparseable.
func limitFromEnv() float64 {
	raw := os.Getenv("RATE_LIMIT_PER_SECOND")
	if raw == "" {
		return defaultRequestsPerSecond
	}
	limit, err := strconv.ParseFloat(raw, 64)
	if err != nil || limit <= 0 {
		return defaultRequestsPerSecond
	}
	return limit
}

// TokenBucketPerIP throttles each client address. Verification probes
// are expensive to decode, so the bucket is kept small.
func TokenBucketPerIP() gin.HandlerFunc {
	message := map[string]any{
		"message": "Too many attempts from this address. Slow down and try again.",
	}
	jsonMessage, _ := json.Marshal(message)

	tlbthLimiter := tollbooth.NewLimiter(limitFromEnv(), &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Minute * 1,
	})
	tlbthLimiter.SetMessageContentType("application/json")
	tlbthLimiter.SetMessage(string(jsonMessage))

	return tollbooth_gin.LimitHandler(tlbthLimiter)
}
