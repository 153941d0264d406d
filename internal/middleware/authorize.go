package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/authz"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

// MaxAuthzBodySize bounds how much of a request body is buffered to read a
// resource identifier.
const MaxAuthzBodySize = 1 << 20 // 1MB

const ContextDecision = "authz_decision"

// RequireAuthorization gates the route on the engine's decision for d.
func RequireAuthorization(engine *authz.Engine, d authz.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := RequestFromContext(c, d.ID)
		if err != nil {
			httputil.AbortWithError(c, err)
			return
		}

		dec, err := engine.Authorize(c.Request.Context(), req, PrincipalFrom(c), d)
		if err != nil {
			httputil.AbortWithError(c, err)
			return
		}

		c.Set(ContextDecision, dec)
		c.Next()
	}
}

// RequestFromContext builds the transport-neutral view of the request. The
// body is only read when src names a body field, and is restored for the
// handler afterwards.
func RequestFromContext(c *gin.Context, src authz.IDSource) (authz.Request, error) {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}

	req := authz.Request{
		Method: c.Request.Method,
		Path:   path,
		Header: c.Request.Header,
		Params: params,
	}

	if src.Kind == authz.SourceBody && c.Request.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxAuthzBodySize))
		if err != nil {
			return req, apperrors.Misconfigured("request body unreadable", err)
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		req.Body = body
	}
	return req, nil
}
