package authz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

func newTestEngine(t *testing.T, repo *fakeOwnership) (*Engine, *bytes.Buffer) {
	t.Helper()
	table, err := DefaultTable(NewPredicates(repo))
	require.NoError(t, err)
	var buf bytes.Buffer
	return NewEngine(table, metrics.NewNop(), zerolog.New(&buf)), &buf
}

func appErr(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	var ae *apperrors.AppError
	require.True(t, errors.As(err, &ae), "expected AppError, got %v", err)
	return ae
}

func apptRequest(method, id string) Request {
	return Request{
		Method: method,
		Path:   "/api/v1/appointments/" + id,
		Params: map[string]string{"appointmentId": id},
	}
}

var apptDescriptor = Descriptor{Resource: ResourceAppointment, ID: FromParam("appointmentId")}

func TestAbsentPolicyDenies(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	ctx := context.Background()

	cases := []struct {
		role     model.Role
		resource ResourceType
		action   Action
	}{
		{model.RolePatient, ResourceAdmin, ActionApprove},
		{model.RoleDoctor, ResourceFavourite, ActionCreate},
		{model.RoleAdmin, ResourceType("billing"), ActionRead},
		{model.RolePatient, ResourceReview, Action("publish")},
		{model.Role("nurse"), ResourceSearch, ActionRead},
	}
	for _, tc := range cases {
		dec, err := engine.Authorize(ctx, Request{Method: http.MethodPost},
			principal("u-1", tc.role, true), Descriptor{Resource: tc.resource, Action: tc.action})
		require.Error(t, err)
		assert.False(t, dec.Allowed)
		ae := appErr(t, err)
		assert.Equal(t, http.StatusForbidden, ae.HTTPStatus)
		assert.Equal(t, ReasonNoPolicy, ae.Detail)
		assert.Equal(t, apperrors.MsgNotAuthorized, ae.Message)
	}
}

func TestUninferableActionDenies(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	_, err := engine.Authorize(context.Background(), Request{Method: http.MethodOptions},
		principal(adminID, model.RoleAdmin, true), Descriptor{Resource: ResourceDoctor})
	assert.Equal(t, ReasonNoPolicy, appErr(t, err).Detail)
}

func TestInactivePrincipalAlwaysDenied(t *testing.T) {
	repo := newFakeOwnership()
	engine, _ := newTestEngine(t, repo)
	table := engine.table

	for _, role := range table.Roles() {
		for resource, actions := range table.roles[role] {
			for action := range actions {
				p := principal(patientID, role, false)
				req := Request{Method: http.MethodGet, Params: map[string]string{"id": apptID}}
				dec, err := engine.Authorize(context.Background(), req, p,
					Descriptor{Resource: resource, Action: action, ID: FromParam("id")})
				require.Error(t, err, "%s/%s/%s", role, resource, action)
				assert.False(t, dec.Allowed)
				assert.Equal(t, ReasonInactive, appErr(t, err).Detail)
			}
		}
	}
	assert.Zero(t, repo.calls, "inactive principals never reach predicates")
}

func TestBooleanEntries(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	ctx := context.Background()

	dec, err := engine.Authorize(ctx, Request{Method: http.MethodGet}, principal(patientID, model.RolePatient, true),
		Descriptor{Resource: ResourceSearch})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, ActionRead, dec.Action)

	_, err = engine.Authorize(ctx, Request{Method: http.MethodDelete, Params: map[string]string{"reviewId": reviewID}},
		principal(patientID, model.RolePatient, true),
		Descriptor{Resource: ResourceReview, ID: FromParam("reviewId")})
	require.Error(t, err)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusForbidden, ae.HTTPStatus)
	assert.Equal(t, "insufficient permissions to delete this review", ae.Detail)
}

// Scenario A
func TestPatientCannotUpdateAnotherPatientsAppointment(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())

	dec, err := engine.Authorize(context.Background(), apptRequest(http.MethodPut, otherApptID),
		principal(patientID, model.RolePatient, true), apptDescriptor)
	require.Error(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, otherApptID, dec.ResourceID)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusForbidden, ae.HTTPStatus)
	assert.True(t, ae.IsOperational)
	assert.Equal(t, "insufficient permissions to update this appointment", ae.Detail)

	dec, err = engine.Authorize(context.Background(), apptRequest(http.MethodPut, apptID),
		principal(patientID, model.RolePatient, true), apptDescriptor)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

// Scenario B
func TestAdminCreatesDoctor(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())

	dec, err := engine.Authorize(context.Background(), Request{Method: http.MethodPost, Path: "/api/v1/doctors"},
		principal(adminID, model.RoleAdmin, true), Descriptor{Resource: ResourceDoctor, Action: ActionCreate})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

// Scenario E
func TestActiveFlagIsReadPerRequest(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	ctx := context.Background()
	req := apptRequest(http.MethodGet, apptID)

	_, err := engine.Authorize(ctx, req, principal(doctorID, model.RoleDoctor, true), apptDescriptor)
	require.NoError(t, err)

	_, err = engine.Authorize(ctx, req, principal(doctorID, model.RoleDoctor, false), apptDescriptor)
	require.Error(t, err)
	assert.Equal(t, ReasonInactive, appErr(t, err).Detail)
}

func TestDecisionIsIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	ctx := context.Background()
	p := principal(doctorID, model.RoleDoctor, true)

	for _, id := range []string{apptID, otherApptID} {
		first, err1 := engine.Authorize(ctx, apptRequest(http.MethodGet, id), p, apptDescriptor)
		second, err2 := engine.Authorize(ctx, apptRequest(http.MethodGet, id), p, apptDescriptor)
		assert.Equal(t, first, second)
		assert.Equal(t, err1 == nil, err2 == nil)
	}
}

func TestMissingPrincipalIsWiringError(t *testing.T) {
	engine, buf := newTestEngine(t, newFakeOwnership())

	_, err := engine.Authorize(context.Background(), Request{Method: http.MethodGet}, nil,
		Descriptor{Resource: ResourceSearch})
	ae := appErr(t, err)
	assert.Equal(t, ReasonNoPrincipal, ae.Detail)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
	assert.False(t, ae.IsOperational)

	undefined := &model.Principal{ID: patientID, Role: model.RolePatient}
	_, err = engine.Authorize(context.Background(), Request{Method: http.MethodGet}, undefined,
		Descriptor{Resource: ResourceSearch})
	assert.Equal(t, ReasonNoPrincipal, appErr(t, err).Detail)

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "authorization failed")
}

func TestMissingResourceIDIsConfigurationError(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())

	_, err := engine.Authorize(context.Background(), Request{Method: http.MethodGet},
		principal(patientID, model.RolePatient, true), apptDescriptor)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
	assert.Equal(t, ReasonNoResourceID, ae.Detail)
	assert.ErrorIs(t, err, ErrMissingResourceID)
}

func TestStorageErrorIsEvaluationFailure(t *testing.T) {
	repo := newFakeOwnership()
	repo.err = errors.New("connection refused")
	engine, _ := newTestEngine(t, repo)

	dec, err := engine.Authorize(context.Background(), apptRequest(http.MethodGet, apptID),
		principal(patientID, model.RolePatient, true), apptDescriptor)
	assert.False(t, dec.Allowed)
	ae := appErr(t, err)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
	assert.False(t, ae.IsOperational)
	assert.Equal(t, ReasonEvaluationError, ae.Detail)
	assert.Equal(t, apperrors.MsgInternal, ae.Message)
}

func TestPredicatePanicIsContained(t *testing.T) {
	table, err := NewTable(map[model.Role]RolePolicy{
		model.RolePatient: {
			ResourceFile: {ActionRead: Check(func(context.Context, Request, model.Principal, string) (bool, error) {
				panic("nil map")
			})},
		},
	})
	require.NoError(t, err)
	engine := NewEngine(table, nil, zerolog.Nop())

	dec, err := engine.Authorize(context.Background(),
		Request{Method: http.MethodGet, Params: map[string]string{"fileId": "f-1"}},
		principal(patientID, model.RolePatient, true),
		Descriptor{Resource: ResourceFile, ID: FromParam("fileId")})
	assert.False(t, dec.Allowed)
	ae := appErr(t, err)
	assert.False(t, ae.IsOperational)
	assert.Contains(t, ae.Error(), "predicate panic")
}

func TestCancelledRequestDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	table, err := NewTable(map[model.Role]RolePolicy{
		model.RolePatient: {
			ResourceFile: {ActionRead: Check(func(context.Context, Request, model.Principal, string) (bool, error) {
				cancel()
				return true, nil
			})},
		},
	})
	require.NoError(t, err)
	engine := NewEngine(table, nil, zerolog.Nop())

	dec, err := engine.Authorize(ctx,
		Request{Method: http.MethodGet, Params: map[string]string{"fileId": "f-1"}},
		principal(patientID, model.RolePatient, true),
		Descriptor{Resource: ResourceFile, ID: FromParam("fileId")})
	assert.False(t, dec.Allowed)
	assert.ErrorIs(t, err, context.Canceled)
	ae := appErr(t, err)
	assert.True(t, ae.IsOperational)
	assert.Equal(t, apperrors.KindCancelled, ae.Kind)
	assert.Equal(t, ReasonCancelled, dec.Reason)
}

func TestPredicateSeeingCancellationIsOperational(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	table, err := NewTable(map[model.Role]RolePolicy{
		model.RolePatient: {
			ResourceFile: {ActionRead: Check(func(ctx context.Context, _ Request, _ model.Principal, _ string) (bool, error) {
				cancel()
				return false, fmt.Errorf("lookup file owner: %w", ctx.Err())
			})},
		},
	})
	require.NoError(t, err)
	engine := NewEngine(table, nil, zerolog.Nop())

	_, err = engine.Authorize(ctx,
		Request{Method: http.MethodGet, Params: map[string]string{"fileId": "f-1"}},
		principal(patientID, model.RolePatient, true),
		Descriptor{Resource: ResourceFile, ID: FromParam("fileId")})
	ae := appErr(t, err)
	assert.True(t, ae.IsOperational)
	assert.Equal(t, apperrors.StatusClientClosedRequest, ae.HTTPStatus)
}

func TestDeadlineDuringEvaluationStillFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	table, err := NewTable(map[model.Role]RolePolicy{
		model.RolePatient: {
			ResourceFile: {ActionRead: Check(func(ctx context.Context, _ Request, _ model.Principal, _ string) (bool, error) {
				<-ctx.Done()
				return true, nil
			})},
		},
	})
	require.NoError(t, err)
	engine := NewEngine(table, nil, zerolog.Nop())

	_, err = engine.Authorize(ctx,
		Request{Method: http.MethodGet, Params: map[string]string{"fileId": "f-1"}},
		principal(patientID, model.RolePatient, true),
		Descriptor{Resource: ResourceFile, ID: FromParam("fileId")})
	ae := appErr(t, err)
	assert.False(t, ae.IsOperational)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoctorNotesNeedAssignment(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	desc := Descriptor{Resource: ResourcePatientNotes, Action: ActionReadByDoctor, ID: FromParam("patientId")}
	doctor := principal(doctorID, model.RoleDoctor, true)

	_, err := engine.Authorize(context.Background(),
		Request{Method: http.MethodGet, Params: map[string]string{"patientId": patientID}}, doctor, desc)
	assert.NoError(t, err)

	_, err = engine.Authorize(context.Background(),
		Request{Method: http.MethodGet, Params: map[string]string{"patientId": "pat-9"}}, doctor, desc)
	assert.Error(t, err)
}

func TestHospitalMutationNeedsMatchingClaim(t *testing.T) {
	engine, _ := newTestEngine(t, newFakeOwnership())
	desc := Descriptor{Resource: ResourceHospital, ID: FromParam("hospitalId")}
	admin := principal(adminID, model.RoleAdmin, true)
	admin.HospitalID = "hosp-1"

	_, err := engine.Authorize(context.Background(),
		Request{Method: http.MethodPatch, Params: map[string]string{"hospitalId": "hosp-1"}}, admin, desc)
	assert.NoError(t, err)

	_, err = engine.Authorize(context.Background(),
		Request{Method: http.MethodDelete, Params: map[string]string{"hospitalId": "hosp-2"}}, admin, desc)
	assert.Error(t, err)
}

func TestAuditLogCarriesDecisionFields(t *testing.T) {
	engine, buf := newTestEngine(t, newFakeOwnership())

	_, _ = engine.Authorize(context.Background(), apptRequest(http.MethodPut, otherApptID),
		principal(patientID, model.RolePatient, true), apptDescriptor)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"role":"patient"`)
	assert.Contains(t, out, `"action":"update"`)
	assert.Contains(t, out, `"resource":"appointment"`)
	assert.Contains(t, out, `"resource_id":"`+otherApptID+`"`)
	assert.Contains(t, out, `"path":"/api/v1/appointments/`+otherApptID+`"`)
}
