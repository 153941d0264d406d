package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/handler/decision"
	"github.com/jwalitptl/booking-api/internal/handler/health"
	prom "github.com/jwalitptl/booking-api/internal/handler/prometheus"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/ratelimit"
)

const reviewScope = "reviews"

type RouterConfig struct {
	Mode              string
	Verification      middleware.VerificationGateConfig
	RequestsPerSecond float64
	Burst             int
}

// Dependencies are the collaborators the router mounts. Handlers maps route
// names to controllers; unmapped routes answer 501 once their gates pass.
type Dependencies struct {
	Auth         *middleware.AuthMiddleware
	Table        *authz.Table
	Engine       *authz.Engine
	Verification repository.VerificationRepository
	// Approval is shared with the check endpoint; when nil it is built from
	// RouterConfig.Verification.
	Approval      *middleware.ApprovalGate
	ReviewLimiter ratelimit.Limiter
	Metrics       *metrics.Metrics
	Health        *health.Handler
	Prometheus    *prom.Handler
	Decision      *decision.Handler
	Handlers      map[string]gin.HandlerFunc
}

type Router struct {
	engine *gin.Engine
	deps   Dependencies
	config RouterConfig
	routes []Route
}

// NewRouter builds the HTTP engine. It fails when a route relies on a
// (role, resource, action) the policy table does not define.
func NewRouter(config RouterConfig, deps Dependencies, routes []Route) (*Router, error) {
	if err := deps.Table.Validate(Requirements(routes)); err != nil {
		return nil, fmt.Errorf("policy table does not cover routes: %w", err)
	}
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	r := &Router{
		engine: gin.New(),
		deps:   deps,
		config: config,
		routes: routes,
	}

	r.engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)
	if deps.Prometheus != nil {
		r.engine.Use(deps.Prometheus.Middleware())
	}
	r.engine.Use(middleware.Throttle(config.RequestsPerSecond, config.Burst))

	if err := r.setup(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) setup() error {
	if r.deps.Health != nil {
		r.deps.Health.RegisterRoutes(r.engine)
	}
	if r.deps.Prometheus != nil {
		r.engine.GET("/metrics", r.deps.Prometheus.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(r.deps.Auth.Authenticate())

	if r.deps.Decision != nil {
		r.deps.Decision.RegisterRoutes(api)
	}

	approval := r.deps.Approval
	if approval == nil {
		var err error
		approval, err = middleware.NewApprovalGate(r.deps.Verification, r.config.Verification, r.deps.Metrics)
		if err != nil {
			return err
		}
	}
	gate := approval.Handler()

	for _, route := range r.routes {
		chain := []gin.HandlerFunc{gate}

		if route.OwnerOrAdmin != nil {
			chain = append(chain, middleware.RequireOwnerOrAdmin(*route.OwnerOrAdmin))
		} else {
			chain = append(chain, middleware.RequireAuthorization(r.deps.Engine, route.Descriptor))
		}

		if route.RateLimited && r.deps.ReviewLimiter != nil {
			chain = append(chain, middleware.RateLimit(r.deps.ReviewLimiter, reviewScope, middleware.PrincipalKey, r.deps.Metrics))
		}

		h, ok := r.deps.Handlers[route.Name]
		if !ok {
			h = handler.NotImplemented
		}
		chain = append(chain, h)

		api.Handle(route.Method, route.Path, chain...)
	}

	log.Info().Int("routes", len(r.routes)).Msg("api routes registered")
	return nil
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
