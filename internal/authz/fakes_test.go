package authz

import (
	"context"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

const (
	apptID      = "6f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f"
	otherApptID = "7a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	reviewID    = "1b2c3d4e-5f6a-4b7c-8d9e-0f1a2b3c4d5e"
	doctorID    = "doc-1"
	patientID   = "pat-1"
	adminID     = "adm-1"
)

type fakeOwnership struct {
	appointments map[string]*model.AppointmentParticipants
	reviews      map[string]*model.ReviewOwner
	assigned     map[string][]string
	hospitals    map[string]string
	err          error
	calls        int
}

func newFakeOwnership() *fakeOwnership {
	return &fakeOwnership{
		appointments: map[string]*model.AppointmentParticipants{
			apptID:      {AppointmentID: apptID, DoctorID: doctorID, PatientID: patientID},
			otherApptID: {AppointmentID: otherApptID, DoctorID: "doc-2", PatientID: "pat-2"},
		},
		reviews: map[string]*model.ReviewOwner{
			reviewID: {ReviewID: reviewID, AuthorID: patientID, DoctorID: doctorID},
		},
		assigned: map[string][]string{
			doctorID: {patientID, "pat-3"},
		},
		hospitals: map[string]string{
			adminID: "hosp-1",
		},
	}
}

func (f *fakeOwnership) FindAppointmentOwner(_ context.Context, id string) (*model.AppointmentParticipants, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.appointments[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOwnership) FindReviewOwner(_ context.Context, id string) (*model.ReviewOwner, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.reviews[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOwnership) FindDoctorAssignedPatients(_ context.Context, id string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.assigned[id], nil
}

func (f *fakeOwnership) FindHospitalOfAdmin(_ context.Context, id string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if h, ok := f.hospitals[id]; ok {
		return h, nil
	}
	return "", repository.ErrNotFound
}

func principal(id string, role model.Role, active bool) *model.Principal {
	return &model.Principal{ID: id, Role: role, Active: &active}
}
