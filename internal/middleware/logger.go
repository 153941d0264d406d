package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Logger returns a middleware that logs HTTP requests. Request bodies are
// never logged.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		logger := log.With().
			Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())

		if p := PrincipalFrom(c); p != nil {
			logger = logger.Str("principal_id", p.ID).Str("role", string(p.Role))
		}
		if len(c.Errors) > 0 {
			logger = logger.Str("errors", c.Errors.String())
		}

		l := logger.Logger()
		switch {
		case status == http.StatusNotImplemented:
			l.Warn().Msg("Route not implemented")
		case status >= 500:
			l.Error().Msg("Server error")
		case status >= 400:
			l.Warn().Msg("Client error")
		default:
			l.Info().Msg("Request processed")
		}
	}
}
