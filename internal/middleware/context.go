package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/model"
)

const (
	ContextPrincipal = "principal"
	ContextRequestID = "request_id"
)

// SetPrincipal attaches the authenticated principal to the request.
func SetPrincipal(c *gin.Context, p *model.Principal) {
	c.Set(ContextPrincipal, p)
}

// PrincipalFrom returns the principal attached by Authenticate, or nil.
func PrincipalFrom(c *gin.Context) *model.Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Principal)
	return p
}
