package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

// Predicates is the ownership predicate library. Every predicate fails
// closed: blank or malformed identifiers and lookup misses deny.
type Predicates struct {
	repo repository.OwnershipRepository
}

func NewPredicates(repo repository.OwnershipRepository) *Predicates {
	return &Predicates{repo: repo}
}

// sameID compares identifiers as trimmed strings. Blank never matches.
func sameID(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && a == b
}

func wellFormed(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// missing folds a lookup miss into a deny.
func missing(err error) (bool, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// SelfOnly allows a principal to act on a record keyed by its own id.
func (p *Predicates) SelfOnly(_ context.Context, _ Request, principal model.Principal, resourceID string) (bool, error) {
	return sameID(principal.ID, resourceID), nil
}

func (p *Predicates) DoctorOwnsAppointment(ctx context.Context, _ Request, principal model.Principal, appointmentID string) (bool, error) {
	if !wellFormed(appointmentID) {
		return false, nil
	}
	owner, err := p.repo.FindAppointmentOwner(ctx, strings.TrimSpace(appointmentID))
	if err != nil {
		return missing(err)
	}
	return sameID(owner.DoctorID, principal.ID), nil
}

func (p *Predicates) PatientOwnsAppointment(ctx context.Context, _ Request, principal model.Principal, appointmentID string) (bool, error) {
	if !wellFormed(appointmentID) {
		return false, nil
	}
	owner, err := p.repo.FindAppointmentOwner(ctx, strings.TrimSpace(appointmentID))
	if err != nil {
		return missing(err)
	}
	return sameID(owner.PatientID, principal.ID), nil
}

func (p *Predicates) PatientOwnsReview(ctx context.Context, _ Request, principal model.Principal, reviewID string) (bool, error) {
	if !wellFormed(reviewID) {
		return false, nil
	}
	owner, err := p.repo.FindReviewOwner(ctx, strings.TrimSpace(reviewID))
	if err != nil {
		return missing(err)
	}
	return sameID(owner.AuthorID, principal.ID), nil
}

// DoctorAssignedToPatient allows a doctor to reach a patient's notes while
// the patient is currently assigned to them.
func (p *Predicates) DoctorAssignedToPatient(ctx context.Context, _ Request, principal model.Principal, patientID string) (bool, error) {
	if strings.TrimSpace(patientID) == "" {
		return false, nil
	}
	patients, err := p.repo.FindDoctorAssignedPatients(ctx, principal.ID)
	if err != nil {
		return missing(err)
	}
	for _, assigned := range patients {
		if sameID(assigned, patientID) {
			return true, nil
		}
	}
	return false, nil
}

// HospitalAdmin allows an admin to act on the hospital named in its token.
// Tokens without a hospital claim fall back to the stored assignment.
func (p *Predicates) HospitalAdmin(ctx context.Context, _ Request, principal model.Principal, hospitalID string) (bool, error) {
	if strings.TrimSpace(hospitalID) == "" {
		return false, nil
	}
	if strings.TrimSpace(principal.HospitalID) != "" {
		return sameID(principal.HospitalID, hospitalID), nil
	}
	assigned, err := p.repo.FindHospitalOfAdmin(ctx, principal.ID)
	if err != nil {
		return missing(err)
	}
	return sameID(assigned, hospitalID), nil
}
