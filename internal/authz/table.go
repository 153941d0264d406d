package authz

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/jwalitptl/booking-api/internal/model"
)

// RolePolicy is one role's resource → action → permission table.
type RolePolicy map[ResourceType]map[Action]Permission

// Table is the process-wide policy registry. It is immutable after NewTable
// and safe for concurrent readers without locking.
type Table struct {
	roles map[model.Role]RolePolicy
}

// NewTable copies and validates the given role policies. Every entry must be
// a valid Permission.
func NewTable(policies map[model.Role]RolePolicy) (*Table, error) {
	var errs error
	roles := make(map[model.Role]RolePolicy, len(policies))

	for role, policy := range policies {
		if _, err := model.ParseRole(string(role)); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		cp := make(RolePolicy, len(policy))
		for resource, actions := range policy {
			entries := make(map[Action]Permission, len(actions))
			for action, perm := range actions {
				if !perm.valid() {
					errs = multierr.Append(errs, fmt.Errorf("%s/%s/%s: invalid permission", role, resource, action))
					continue
				}
				entries[action] = perm
			}
			cp[resource] = entries
		}
		roles[role] = cp
	}

	if errs != nil {
		return nil, errs
	}
	return &Table{roles: roles}, nil
}

// Lookup returns the permission for the triple. ok is false for an unknown
// role, resource or action; callers treat that as deny.
func (t *Table) Lookup(role model.Role, resource ResourceType, action Action) (Permission, bool) {
	policy, ok := t.roles[role]
	if !ok {
		return Permission{}, false
	}
	actions, ok := policy[resource]
	if !ok {
		return Permission{}, false
	}
	perm, ok := actions[action]
	return perm, ok
}

// Roles returns the roles with a policy, sorted.
func (t *Table) Roles() []model.Role {
	roles := make([]model.Role, 0, len(t.roles))
	for r := range t.roles {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// RouteRequirement is what a route registration declares: the descriptor it
// guards and the roles expected to reach it.
type RouteRequirement struct {
	Method     string
	Path       string
	Descriptor Descriptor
	Roles      []model.Role
}

// Validate reports every (role, resource, action) triple a route relies on
// that has no policy entry, plus Check entries on routes with no identifier
// source. It turns silent runtime denies into startup errors.
func (t *Table) Validate(reqs []RouteRequirement) error {
	var errs error
	for _, req := range reqs {
		action := req.Descriptor.Action
		if action == "" {
			action = InferAction(req.Method)
		}
		for _, role := range req.Roles {
			perm, ok := t.Lookup(role, req.Descriptor.Resource, action)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("%s %s: no policy for %s/%s/%s",
					req.Method, req.Path, role, req.Descriptor.Resource, action))
				continue
			}
			if perm.IsCheck() && req.Descriptor.ID.Kind == SourceNone {
				errs = multierr.Append(errs, fmt.Errorf("%s %s: %s/%s/%s needs a resource identifier source",
					req.Method, req.Path, role, req.Descriptor.Resource, action))
			}
		}
	}
	return errs
}
