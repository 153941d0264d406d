package decision

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/middleware"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

const resourceIDParam = "resource_id"

type CheckRequest struct {
	Resource   string `json:"resource" validate:"required"`
	Action     string `json:"action" validate:"required"`
	ResourceID string `json:"resource_id"`
	// Method and Route name the route pattern the caller intends to use, e.g.
	// "DELETE" and "/api/v1/doctors/:id". Without them the approval gate is
	// applied as if the route were protected.
	Method string `json:"method" validate:"required_with=Route"`
	Route  string `json:"route"`
}

type CheckResponse struct {
	Allowed    bool   `json:"allowed"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	ResourceID string `json:"resource_id,omitempty"`
}

// Handler answers "may I?" for the caller without performing anything. It
// applies the same approval gate and policy engine as the real routes.
type Handler struct {
	engine    *authz.Engine
	gate      *middleware.ApprovalGate
	validator validator.Validator
}

// NewHandler builds the check handler. A nil gate skips the approval check.
func NewHandler(engine *authz.Engine, gate *middleware.ApprovalGate) *Handler {
	return &Handler{
		engine:    engine,
		gate:      gate,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/authz/check", h.Check)
}

func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.AbortWithError(c, apperrors.Misconfigured("invalid check request", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.AbortWithError(c, apperrors.Misconfigured("invalid check request", err))
		return
	}

	principal := middleware.PrincipalFrom(c)

	if h.gate != nil && (req.Route == "" || h.gate.Protects(req.Method, req.Route)) {
		if err := h.gate.Verify(c.Request.Context(), principal); err != nil {
			if !denied(err) {
				httputil.AbortWithError(c, err)
				return
			}
			httputil.RespondWithSuccess(c, CheckResponse{
				Allowed:    false,
				Resource:   req.Resource,
				Action:     req.Action,
				ResourceID: req.ResourceID,
			})
			return
		}
	}

	d := authz.Descriptor{
		Resource: authz.ResourceType(req.Resource),
		Action:   authz.Action(req.Action),
		ID:       authz.FromParam(resourceIDParam),
	}
	areq := authz.Request{
		Method: c.Request.Method,
		Path:   c.FullPath(),
		Header: c.Request.Header,
		Params: map[string]string{resourceIDParam: req.ResourceID},
	}

	dec, err := h.engine.Authorize(c.Request.Context(), areq, principal, d)
	if err != nil && !denied(err) {
		httputil.AbortWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, CheckResponse{
		Allowed:    dec.Allowed,
		Resource:   string(dec.Resource),
		Action:     string(dec.Action),
		ResourceID: dec.ResourceID,
	})
}

// denied reports an ordinary 403, as opposed to a request or evaluation failure.
func denied(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusForbidden
}
