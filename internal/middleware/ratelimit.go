package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/ratelimit"
)

// KeyFunc picks the rate limit bucket for a request. An empty key skips limiting.
type KeyFunc func(c *gin.Context) string

// PrincipalKey buckets by authenticated principal id.
func PrincipalKey(c *gin.Context) string {
	if p := PrincipalFrom(c); p != nil {
		return p.ID
	}
	return ""
}

// RateLimit rejects requests over the limiter's window with 429. Limiter
// failures let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, key KeyFunc, m *metrics.Metrics) gin.HandlerFunc {
	record := func(outcome string) {
		if m != nil {
			m.RateLimitDecisions.WithLabelValues(scope, outcome).Inc()
		}
	}

	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), k)
		if err != nil {
			record("error")
			log.Warn().Err(err).
				Str("scope", scope).
				Str("key", k).
				Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			record("limited")
			httputil.AbortWithError(c, errors.RateLimited(scope+" limit reached for "+k))
			return
		}

		record("allowed")
		c.Next()
	}
}
