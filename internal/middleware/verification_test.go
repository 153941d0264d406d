package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

var gateConfig = VerificationGateConfig{
	ProtectedRoutes: []string{"DELETE /api/v1/doctors/:id", "/api/v1/admin/doctors"},
}

func gateRouter(t *testing.T, p *model.Principal, provider *stubVerification) *gin.Engine {
	t.Helper()
	gate, err := RequireApprovedAccount(provider, gateConfig, metrics.NewNop())
	require.NoError(t, err)

	engine := newTestEngine(t)
	r := gin.New()
	r.Use(withPrincipal(p))
	r.DELETE("/api/v1/doctors/:id", gate, RequireAuthorization(engine, authz.Descriptor{
		Resource: authz.ResourceDoctor, ID: authz.FromParam("id"),
	}), ok)
	r.GET("/api/v1/doctors/:id", gate, RequireAuthorization(engine, authz.Descriptor{
		Resource: authz.ResourceDoctor, ID: authz.FromParam("id"),
	}), ok)
	r.POST("/api/v1/admin/doctors", gate, ok)
	return r
}

func TestPendingAdminBlockedOnProtectedRoute(t *testing.T) {
	provider := &stubVerification{status: map[string]model.VerificationStatus{adminID: model.VerificationPending}}
	r := gateRouter(t, principal(adminID, model.RoleAdmin, true), provider)

	w := perform(r, http.MethodDelete, "/api/v1/doctors/"+doctorID, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	e := decodeError(t, w)
	assert.Equal(t, apperrors.KindAuthorization, e.Kind)
	assert.Equal(t, apperrors.MsgNotApproved, e.Message)

	w = perform(r, http.MethodPost, "/api/v1/admin/doctors", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "path-only entry covers every method")
}

func TestPendingAdminPassesUnprotectedRoute(t *testing.T) {
	provider := &stubVerification{status: map[string]model.VerificationStatus{adminID: model.VerificationPending}}
	r := gateRouter(t, principal(adminID, model.RoleAdmin, true), provider)

	w := perform(r, http.MethodGet, "/api/v1/doctors/"+doctorID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerificationGate(t *testing.T) {
	tests := []struct {
		name      string
		principal *model.Principal
		provider  *stubVerification
		want      int
	}{
		{
			name:      "approved admin",
			principal: principal(adminID, model.RoleAdmin, true),
			provider:  &stubVerification{status: map[string]model.VerificationStatus{adminID: model.VerificationApproved}},
			want:      http.StatusOK,
		},
		{
			name:      "rejected admin",
			principal: principal(adminID, model.RoleAdmin, true),
			provider:  &stubVerification{status: map[string]model.VerificationStatus{adminID: model.VerificationRejected}},
			want:      http.StatusForbidden,
		},
		{
			name:      "inactive admin",
			principal: principal(adminID, model.RoleAdmin, false),
			provider:  &stubVerification{status: map[string]model.VerificationStatus{adminID: model.VerificationApproved}},
			want:      http.StatusForbidden,
		},
		{
			name:      "missing verification record",
			principal: principal(adminID, model.RoleAdmin, true),
			provider:  &stubVerification{status: map[string]model.VerificationStatus{}},
			want:      http.StatusForbidden,
		},
		{
			name:      "lookup failure",
			principal: principal(adminID, model.RoleAdmin, true),
			provider:  &stubVerification{err: errStorage},
			want:      http.StatusInternalServerError,
		},
		{
			name:      "missing principal",
			principal: nil,
			provider:  &stubVerification{},
			want:      http.StatusInternalServerError,
		},
		{
			name:      "non-privileged role is not gated",
			principal: principal(patientID, model.RolePatient, true),
			provider:  &stubVerification{err: errStorage},
			want:      http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gateRouter(t, tt.principal, tt.provider)
			w := perform(r, http.MethodPost, "/api/v1/admin/doctors", "", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMissingVerificationRecordIsNotApproved(t *testing.T) {
	r := gateRouter(t, principal(adminID, model.RoleAdmin, true), &stubVerification{})

	w := perform(r, http.MethodDelete, "/api/v1/doctors/"+doctorID, "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	e := decodeError(t, w)
	assert.Equal(t, apperrors.KindAuthorization, e.Kind)
	assert.Equal(t, apperrors.MsgNotApproved, e.Message)
	assert.True(t, e.IsOperational)
}

func TestVerificationGateRejectsBadEntries(t *testing.T) {
	_, err := RequireApprovedAccount(&stubVerification{}, VerificationGateConfig{
		ProtectedRoutes: []string{"DELETE /a /b"},
	}, nil)
	assert.Error(t, err)
}
