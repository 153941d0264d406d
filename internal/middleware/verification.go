package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type VerificationGateConfig struct {
	// ProtectedRoutes holds "METHOD /route/:param" entries, or "/route" for
	// every method. Paths are matched against the registered route pattern.
	ProtectedRoutes []string
	PrivilegedRole  model.Role
}

type routeKey struct {
	method string
	path   string
}

type protectedSet map[routeKey]struct{}

func newProtectedSet(entries []string) (protectedSet, error) {
	set := make(protectedSet, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(entry)
		switch len(fields) {
		case 1:
			set[routeKey{path: fields[0]}] = struct{}{}
		case 2:
			set[routeKey{method: strings.ToUpper(fields[0]), path: fields[1]}] = struct{}{}
		default:
			return nil, fmt.Errorf("invalid protected route %q", entry)
		}
	}
	return set, nil
}

func (s protectedSet) contains(method, path string) bool {
	if _, ok := s[routeKey{path: path}]; ok {
		return true
	}
	_, ok := s[routeKey{method: method, path: path}]
	return ok
}

// ApprovalGate decides whether a privileged principal's onboarding allows it
// through a protected route.
type ApprovalGate struct {
	provider   repository.VerificationRepository
	routes     protectedSet
	privileged model.Role
	metrics    *metrics.Metrics
}

func NewApprovalGate(provider repository.VerificationRepository, cfg VerificationGateConfig, m *metrics.Metrics) (*ApprovalGate, error) {
	routes, err := newProtectedSet(cfg.ProtectedRoutes)
	if err != nil {
		return nil, err
	}
	privileged := cfg.PrivilegedRole
	if privileged == "" {
		privileged = model.RoleAdmin
	}
	return &ApprovalGate{
		provider:   provider,
		routes:     routes,
		privileged: privileged,
		metrics:    m,
	}, nil
}

// Protects reports whether method and route pattern are behind the gate.
func (g *ApprovalGate) Protects(method, path string) bool {
	return g.routes.contains(strings.ToUpper(method), path)
}

// Verify returns nil when principal may pass a protected route. Roles other
// than the privileged one always pass. A missing verification record is an
// ordinary deny.
func (g *ApprovalGate) Verify(ctx context.Context, principal *model.Principal) error {
	active, known := principal.IsActive()
	if !known {
		g.record("error")
		return apperrors.EvaluationFailure("missing authentication context", nil)
	}
	if principal.Role != g.privileged {
		return nil
	}
	if !active {
		g.record("inactive")
		return apperrors.Forbidden("account inactive")
	}

	status, err := g.provider.Status(ctx, principal.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = model.VerificationPending
	case err != nil:
		g.record("error")
		log.Error().Err(err).
			Str("principal_id", principal.ID).
			Msg("verification status lookup failed")
		return apperrors.EvaluationFailure("verification lookup failed", err)
	}

	if status != model.VerificationApproved {
		g.record(string(status))
		log.Warn().
			Str("principal_id", principal.ID).
			Str("verification_status", string(status)).
			Msg("unapproved account blocked")
		return apperrors.NotApproved(fmt.Sprintf("verification status %s", status))
	}

	g.record("approved")
	return nil
}

func (g *ApprovalGate) record(outcome string) {
	if g.metrics != nil {
		g.metrics.VerificationGates.WithLabelValues(outcome).Inc()
	}
}

// Handler gates the protected routes. Mount it before RequireAuthorization.
func (g *ApprovalGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if !g.Protects(c.Request.Method, path) {
			c.Next()
			return
		}

		if err := g.Verify(c.Request.Context(), PrincipalFrom(c)); err != nil {
			httputil.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireApprovedAccount blocks privileged principals whose onboarding is not
// approved from the configured routes.
func RequireApprovedAccount(provider repository.VerificationRepository, cfg VerificationGateConfig, m *metrics.Metrics) (gin.HandlerFunc, error) {
	gate, err := NewApprovalGate(provider, cfg, m)
	if err != nil {
		return nil, err
	}
	return gate.Handler(), nil
}
