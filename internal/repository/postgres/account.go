package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

var accountTables = map[model.Role]string{
	model.RoleAdmin:   "admins",
	model.RoleDoctor:  "doctors",
	model.RolePatient: "patients",
}

func (r *accountRepository) IsActive(ctx context.Context, principalID string, role model.Role) (bool, error) {
	table, ok := accountTables[role]
	if !ok {
		return false, fmt.Errorf("unknown role %q", role)
	}

	query := fmt.Sprintf(`SELECT is_active FROM %s WHERE id = $1`, table)
	var active bool
	if err := r.db.GetContext(ctx, &active, query, principalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, repository.ErrNotFound
		}
		return false, fmt.Errorf("failed to get account status: %w", err)
	}
	return active, nil
}

func (r *verificationRepository) Status(ctx context.Context, principalID string) (model.VerificationStatus, error) {
	query := `
		SELECT verification_status
		FROM admins
		WHERE id = $1
	`
	var status string
	if err := r.db.GetContext(ctx, &status, query, principalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get verification status: %w", err)
	}
	return model.ParseVerificationStatus(status), nil
}
