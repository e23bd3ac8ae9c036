package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kodechat/internal/ratelimit"
	"kodechat/internal/transport/http/response"
)

// RateLimit gates every API request before session resolution or body parsing.
// Rejected requests never reach the database.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c)

		decision, err := limiter.Limit(c.Request.Context(), key)
		if err != nil {
			// A failing counter store is an upstream failure surfaced to the
			// caller, not a reason to let traffic through unbounded.
			response.AbortError(c, http.StatusInternalServerError, response.MsgInternal)
			return
		}
		if !decision.Allowed {
			response.AbortError(c, http.StatusTooManyRequests, response.MsgRateLimitExceeded)
			return
		}

		c.Next()
	}
}

// ClientKey derives the rate-limit subject from the request origin IP, checking
// headers in trust order: the CDN-supplied client IP, the generic real-IP
// header, then the first hop of the forwarded-for list.
func ClientKey(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	return "127.0.0.1"
}
