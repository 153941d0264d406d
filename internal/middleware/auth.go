package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type AuthMiddleware struct {
	authenticator auth.Authenticator
	accounts      repository.AccountRepository
}

func NewAuthMiddleware(authenticator auth.Authenticator, accounts repository.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		accounts:      accounts,
	}
}

// Authenticate verifies the bearer token and attaches the principal. The
// activation flag is read on every request and never cached.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.AbortWithError(c, apperrors.Unauthenticated("missing authorization header", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			httputil.AbortWithError(c, apperrors.Unauthenticated("invalid authorization format", nil))
			return
		}

		claims, err := m.authenticator.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			httputil.AbortWithError(c, apperrors.Unauthenticated("invalid token", err))
			return
		}

		role, err := model.ParseRole(claims.Role)
		if err != nil {
			httputil.AbortWithError(c, apperrors.Unauthenticated("invalid role claim", err))
			return
		}

		active, err := m.accounts.IsActive(c.Request.Context(), claims.PrincipalID(), role)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			httputil.AbortWithError(c, apperrors.Unauthenticated("unknown principal", err))
			return
		case err != nil:
			httputil.AbortWithError(c, apperrors.Internal(fmt.Errorf("failed to read account status: %w", err)))
			return
		}

		SetPrincipal(c, &model.Principal{
			ID:         claims.PrincipalID(),
			Role:       role,
			Email:      claims.Email,
			HospitalID: claims.HospitalID,
			Active:     &active,
		})
		c.Next()
	}
}
