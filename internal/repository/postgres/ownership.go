package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

func (r *ownershipRepository) FindAppointmentOwner(ctx context.Context, appointmentID string) (*model.AppointmentParticipants, error) {
	query := `
		SELECT id, doctor_id, patient_id
		FROM appointments
		WHERE id = $1
	`
	var owner model.AppointmentParticipants
	if err := r.db.GetContext(ctx, &owner, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment owner: %w", err)
	}
	return &owner, nil
}

func (r *ownershipRepository) FindReviewOwner(ctx context.Context, reviewID string) (*model.ReviewOwner, error) {
	query := `
		SELECT id, patient_id, doctor_id
		FROM reviews
		WHERE id = $1
	`
	var owner model.ReviewOwner
	if err := r.db.GetContext(ctx, &owner, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review owner: %w", err)
	}
	return &owner, nil
}

// FindDoctorAssignedPatients returns the patients currently assigned to the
// doctor. Ended assignments are excluded.
func (r *ownershipRepository) FindDoctorAssignedPatients(ctx context.Context, doctorID string) ([]string, error) {
	query := `
		SELECT patient_id
		FROM doctor_patients
		WHERE doctor_id = $1 AND unassigned_at IS NULL
	`
	var patients []string
	if err := r.db.SelectContext(ctx, &patients, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list assigned patients: %w", err)
	}
	return patients, nil
}

func (r *ownershipRepository) FindHospitalOfAdmin(ctx context.Context, adminID string) (string, error) {
	query := `
		SELECT hospital_id
		FROM hospital_admins
		WHERE admin_id = $1
	`
	var hospitalID string
	if err := r.db.GetContext(ctx, &hospitalID, query, adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get admin hospital: %w", err)
	}
	return hospitalID, nil
}
