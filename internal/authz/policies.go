package authz

import "github.com/jwalitptl/booking-api/internal/model"

// DefaultTable assembles the role policies of the booking platform.
func DefaultTable(p *Predicates) (*Table, error) {
	return NewTable(map[model.Role]RolePolicy{
		model.RoleAdmin:   AdminPolicy(p),
		model.RoleDoctor:  DoctorPolicy(p),
		model.RolePatient: PatientPolicy(p),
	})
}
