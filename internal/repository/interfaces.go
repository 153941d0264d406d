package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/booking-api/internal/model"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// All repository interfaces in one file
type (
	// OwnershipRepository answers the read-only ownership questions asked by
	// authorization predicates. Misses return ErrNotFound.
	OwnershipRepository interface {
		FindAppointmentOwner(ctx context.Context, appointmentID string) (*model.AppointmentParticipants, error)
		FindReviewOwner(ctx context.Context, reviewID string) (*model.ReviewOwner, error)
		FindDoctorAssignedPatients(ctx context.Context, doctorID string) ([]string, error)
		FindHospitalOfAdmin(ctx context.Context, adminID string) (string, error)
	}

	// AccountRepository reports the activation flag maintained by account management.
	AccountRepository interface {
		IsActive(ctx context.Context, principalID string, role model.Role) (bool, error)
	}

	// VerificationRepository reports onboarding progress for privileged accounts.
	VerificationRepository interface {
		Status(ctx context.Context, principalID string) (model.VerificationStatus, error)
	}
)
