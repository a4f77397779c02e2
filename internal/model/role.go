package model

// RoleKind enumerates the closed set of roles a user may hold.
// Roles are serialized in both API responses and token claims as
// objects of the form {"role":"diner"} or, for franchise-scoped
// roles, {"objectId":3,"role":"franchisee"}.
type RoleKind string

const (
	RoleDiner      RoleKind = "diner"
	RoleFranchisee RoleKind = "franchisee"
	RoleAdmin      RoleKind = "admin"
)

// Role is one entry in a user's role set. ObjectID carries the
// franchise a franchisee role is scoped to and is zero for the
// unscoped diner and admin roles.
type Role struct {
	Kind     RoleKind `json:"role"`
	ObjectID uint64   `json:"objectId,omitempty"`
}

// Roles is a user's full role set. Duplicate entries are harmless;
// all checks are existential.
type Roles []Role

// IsAdmin reports whether the set contains the global admin role.
func (rs Roles) IsAdmin() bool {
	for _, r := range rs {
		if r.Kind == RoleAdmin {
			return true
		}
	}
	return false
}

// IsFranchiseeOf reports whether the set contains a franchisee role
// scoped to the given franchise. Admins are not implicitly
// franchisees; callers combine the two checks where the policy
// allows either.
func (rs Roles) IsFranchiseeOf(franchiseID uint64) bool {
	for _, r := range rs {
		if r.Kind == RoleFranchisee && r.ObjectID == franchiseID {
			return true
		}
	}
	return false
}

// Has reports whether the set contains a role of the given kind,
// ignoring scope.
func (rs Roles) Has(kind RoleKind) bool {
	for _, r := range rs {
		if r.Kind == kind {
			return true
		}
	}
	return false
}
