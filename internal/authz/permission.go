package authz

import (
	"context"
	"net/http"

	"github.com/jwalitptl/booking-api/internal/model"
)

// Request is the transport-neutral view of an inbound request that
// identifier resolution and predicates read from.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Params map[string]string
	Body   []byte
}

// Predicate decides whether the specific resource instance is accessible to
// the principal. It may read storage but must not write. A miss must return
// (false, nil); an error means the check could not be completed.
type Predicate func(ctx context.Context, req Request, principal model.Principal, resourceID string) (bool, error)

type effect uint8

const (
	effectUnset effect = iota
	effectDeny
	effectAllow
	effectCheck
)

// Permission is one policy entry: Allow, Deny, or Check(predicate). The zero
// value is invalid and rejected when a Table is built.
type Permission struct {
	effect effect
	check  Predicate
}

func Allow() Permission { return Permission{effect: effectAllow} }

func Deny() Permission { return Permission{effect: effectDeny} }

func Check(p Predicate) Permission { return Permission{effect: effectCheck, check: p} }

// IsCheck reports whether evaluating p needs a resource identifier.
func (p Permission) IsCheck() bool { return p.effect == effectCheck }

func (p Permission) valid() bool {
	switch p.effect {
	case effectAllow, effectDeny:
		return true
	case effectCheck:
		return p.check != nil
	default:
		return false
	}
}

func (p Permission) String() string {
	switch p.effect {
	case effectAllow:
		return "allow"
	case effectDeny:
		return "deny"
	case effectCheck:
		return "check"
	default:
		return "unset"
	}
}
