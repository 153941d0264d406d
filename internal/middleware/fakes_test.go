package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/httputil"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

const (
	apptID    = "6f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f"
	patientID = "pat-1"
	otherID   = "pat-2"
	doctorID  = "doc-1"
	adminID   = "adm-1"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	claims map[string]*auth.Claims
}

func (s *stubAuthenticator) Verify(_ context.Context, token string) (*auth.Claims, error) {
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

type stubAccounts struct {
	mu     sync.Mutex
	active map[string]bool
	err    error
}

func (s *stubAccounts) IsActive(_ context.Context, id string, _ model.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	active, ok := s.active[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	return active, nil
}

func (s *stubAccounts) set(id string, active bool) {
	s.mu.Lock()
	s.active[id] = active
	s.mu.Unlock()
}

type stubVerification struct {
	status map[string]model.VerificationStatus
	err    error
}

func (s *stubVerification) Status(_ context.Context, id string) (model.VerificationStatus, error) {
	if s.err != nil {
		return "", s.err
	}
	if st, ok := s.status[id]; ok {
		return st, nil
	}
	return "", repository.ErrNotFound
}

type stubOwnership struct{}

func (stubOwnership) FindAppointmentOwner(_ context.Context, id string) (*model.AppointmentParticipants, error) {
	if id == apptID {
		return &model.AppointmentParticipants{AppointmentID: apptID, DoctorID: doctorID, PatientID: patientID}, nil
	}
	return nil, repository.ErrNotFound
}

func (stubOwnership) FindReviewOwner(context.Context, string) (*model.ReviewOwner, error) {
	return nil, repository.ErrNotFound
}

func (stubOwnership) FindDoctorAssignedPatients(context.Context, string) ([]string, error) {
	return nil, nil
}

func (stubOwnership) FindHospitalOfAdmin(context.Context, string) (string, error) {
	return "", repository.ErrNotFound
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

var errStorage = errors.New("connection refused")

func newTestEngine(t *testing.T) *authz.Engine {
	t.Helper()
	table, err := authz.DefaultTable(authz.NewPredicates(stubOwnership{}))
	require.NoError(t, err)
	return authz.NewEngine(table, metrics.NewNop(), zerolog.Nop())
}

// withPrincipal stands in for Authenticate.
func withPrincipal(p *model.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			SetPrincipal(c, p)
		}
		c.Next()
	}
}

func ok(c *gin.Context) {
	c.Status(http.StatusOK)
}

func principal(id string, role model.Role, active bool) *model.Principal {
	return &model.Principal{ID: id, Role: role, Active: &active}
}

func perform(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *httputil.Error {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return resp.Error
}
