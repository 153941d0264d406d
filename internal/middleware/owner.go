package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

// OwnerOrAdminConfig declares where the owning id and the optional
// caller-supplied actor id are read from.
type OwnerOrAdminConfig struct {
	Resource authz.IDSource
	// Claim, when present in the request, must equal the authenticated id.
	Claim authz.IDSource
}

// RequireOwnerOrAdmin allows the resource's own principal or any admin.
func RequireOwnerOrAdmin(cfg OwnerOrAdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		active, known := principal.IsActive()
		if !known {
			httputil.AbortWithError(c, apperrors.EvaluationFailure("missing authentication context", nil))
			return
		}

		src := cfg.Resource
		if cfg.Claim.Kind == authz.SourceBody {
			src = cfg.Claim
		}
		req, err := RequestFromContext(c, src)
		if err != nil {
			httputil.AbortWithError(c, err)
			return
		}

		resourceID, err := authz.ResolveID(req, cfg.Resource)
		if err != nil {
			httputil.AbortWithError(c, apperrors.Misconfigured("missing resource identifier", err))
			return
		}

		if cfg.Claim.Kind != authz.SourceNone {
			claimed, err := authz.ResolveID(req, cfg.Claim)
			if err != nil && !errors.Is(err, authz.ErrMissingResourceID) {
				httputil.AbortWithError(c, apperrors.Misconfigured("unreadable actor claim", err))
				return
			}
			if claimed != "" && claimed != strings.TrimSpace(principal.ID) {
				denyOwner(c, principal, resourceID, "id mismatch")
				return
			}
		}

		if !active {
			denyOwner(c, principal, resourceID, "account inactive")
			return
		}

		if resourceID != strings.TrimSpace(principal.ID) && principal.Role != model.RoleAdmin {
			denyOwner(c, principal, resourceID, "not owner")
			return
		}
		c.Next()
	}
}

func denyOwner(c *gin.Context, principal *model.Principal, resourceID, reason string) {
	log.Warn().
		Str("principal_id", principal.ID).
		Str("role", string(principal.Role)).
		Str("resource_id", resourceID).
		Str("path", c.FullPath()).
		Str("reason", reason).
		Msg("owner-or-admin gate denied")
	httputil.AbortWithError(c, apperrors.Forbidden(fmt.Sprintf("owner-or-admin: %s", reason)))
}
