package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Deny reasons recorded in AppError.Detail and the audit log. They are never
// sent to clients.
const (
	ReasonNoPrincipal     = "missing authentication context"
	ReasonInactive        = "account inactive"
	ReasonNoPolicy        = "no policy"
	ReasonNoResourceID    = "missing resource identifier"
	ReasonEvaluationError = "evaluation failure"
	ReasonCancelled       = "request cancelled during evaluation"
)

const (
	outcomeAllow = "allow"
	outcomeDeny  = "deny"
	outcomeError = "error"
	outcomeAbort = "cancelled"
)

// Decision describes one authorization evaluation.
type Decision struct {
	Allowed     bool         `json:"allowed"`
	PrincipalID string       `json:"principal_id,omitempty"`
	Role        model.Role   `json:"role,omitempty"`
	Resource    ResourceType `json:"resource"`
	Action      Action       `json:"action"`
	ResourceID  string       `json:"resource_id,omitempty"`
	Path        string       `json:"path,omitempty"`
	Reason      string       `json:"-"`
}

// Engine is the single enforcement point for the policy table. It holds no
// per-request state.
type Engine struct {
	table   *Table
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewEngine(table *Table, m *metrics.Metrics, logger zerolog.Logger) *Engine {
	return &Engine{
		table:   table,
		metrics: m,
		logger:  logger.With().Str("component", "authz").Logger(),
	}
}

// Authorize evaluates the descriptor for the principal. A nil error means
// the request may proceed; otherwise the error is an *errors.AppError.
func (e *Engine) Authorize(ctx context.Context, req Request, principal *model.Principal, d Descriptor) (Decision, error) {
	dec := Decision{
		Resource: d.Resource,
		Action:   d.Action,
		Path:     req.Path,
	}
	if dec.Action == "" {
		dec.Action = InferAction(req.Method)
	}

	active, known := principal.IsActive()
	if principal == nil || !known {
		return e.fail(dec, apperrors.EvaluationFailure(ReasonNoPrincipal, nil))
	}
	dec.PrincipalID = principal.ID
	dec.Role = principal.Role

	if !active {
		return e.deny(dec, ReasonInactive)
	}

	perm, ok := e.table.Lookup(principal.Role, dec.Resource, dec.Action)
	if !ok {
		return e.deny(dec, ReasonNoPolicy)
	}

	switch perm.effect {
	case effectAllow:
		dec.ResourceID, _ = ResolveID(req, d.ID)
		return e.allow(dec)
	case effectDeny:
		dec.ResourceID, _ = ResolveID(req, d.ID)
		return e.deny(dec, insufficient(dec))
	case effectCheck:
		id, err := ResolveID(req, d.ID)
		if err != nil {
			return e.fail(dec, apperrors.Misconfigured(ReasonNoResourceID, err))
		}
		dec.ResourceID = id

		granted, err := e.evaluate(ctx, perm.check, req, *principal, dec)
		if errors.Is(err, context.Canceled) {
			return e.abandon(dec, err)
		}
		if err != nil {
			return e.fail(dec, apperrors.EvaluationFailure(ReasonEvaluationError, err))
		}
		if !granted {
			return e.deny(dec, insufficient(dec))
		}
		return e.allow(dec)
	default:
		return e.fail(dec, apperrors.EvaluationFailure(ReasonEvaluationError,
			fmt.Errorf("unknown permission %s", perm)))
	}
}

// evaluate runs the predicate, converting panics into errors. A result that
// arrives after the request was cancelled is discarded.
func (e *Engine) evaluate(ctx context.Context, pred Predicate, req Request, principal model.Principal, dec Decision) (granted bool, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			granted, err = false, fmt.Errorf("predicate panic: %v", r)
		}
		if e.metrics != nil {
			e.metrics.PredicateLatency.
				WithLabelValues(string(dec.Resource), string(dec.Action)).
				Observe(time.Since(start).Seconds())
		}
	}()

	granted, err = pred(ctx, req, principal, dec.ResourceID)
	if err != nil {
		return false, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, fmt.Errorf("request ended during evaluation: %w", ctxErr)
	}
	return granted, nil
}

func insufficient(dec Decision) string {
	return fmt.Sprintf("insufficient permissions to %s this %s", dec.Action, dec.Resource)
}

func (e *Engine) allow(dec Decision) (Decision, error) {
	dec.Allowed = true
	e.record(dec, outcomeAllow)
	e.audit(e.logger.Info(), dec).Msg("authorization granted")
	return dec, nil
}

func (e *Engine) deny(dec Decision, reason string) (Decision, error) {
	dec.Reason = reason
	e.record(dec, outcomeDeny)
	e.audit(e.logger.Warn(), dec).Str("reason", reason).Msg("authorization denied")
	return dec, apperrors.Forbidden(reason)
}

// fail records a decision that could not be made. These are wiring or
// evaluation problems rather than ordinary denies.
func (e *Engine) fail(dec Decision, appErr *apperrors.AppError) (Decision, error) {
	dec.Reason = appErr.Detail
	e.record(dec, outcomeError)
	e.audit(e.logger.Error(), dec).
		Err(appErr.Err).
		Str("reason", appErr.Detail).
		Bool("operational", appErr.IsOperational).
		Int("status", appErr.HTTPStatus).
		Msg("authorization failed")
	return dec, appErr
}

// abandon records an evaluation cut short by the client going away.
func (e *Engine) abandon(dec Decision, err error) (Decision, error) {
	dec.Reason = ReasonCancelled
	e.record(dec, outcomeAbort)
	e.audit(e.logger.Info(), dec).Err(err).Msg("authorization abandoned")
	return dec, apperrors.Cancelled(ReasonCancelled, err)
}

func (e *Engine) audit(ev *zerolog.Event, dec Decision) *zerolog.Event {
	return ev.
		Str("principal_id", dec.PrincipalID).
		Str("role", string(dec.Role)).
		Str("resource", string(dec.Resource)).
		Str("action", string(dec.Action)).
		Str("resource_id", dec.ResourceID).
		Str("path", dec.Path)
}

func (e *Engine) record(dec Decision, outcome string) {
	if e.metrics == nil {
		return
	}
	e.metrics.AuthzDecisions.
		WithLabelValues(string(dec.Role), string(dec.Resource), string(dec.Action), outcome).
		Inc()
}
