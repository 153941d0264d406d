package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleAdmin, RoleDoctor, RolePatient}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Principal is the authenticated caller of one request. It is built from a
// verified token plus a fresh activation read and is never mutated.
type Principal struct {
	ID         string
	Role       Role
	Email      string
	HospitalID string
	// Active is nil until the account status has been resolved.
	Active *bool
}

// IsActive reports the activation flag; ok is false when it was never set.
func (p *Principal) IsActive() (active, ok bool) {
	if p == nil || p.Active == nil {
		return false, false
	}
	return *p.Active, true
}
