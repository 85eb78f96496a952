// Package policy centralises every role-based access decision. All functions
// are pure: they take a principal and (optionally) a lead, and return a
// boolean. Handlers and services must not compare roles directly.
package policy

import "github.com/leadstack/crm-api/internal/core/domain"

// Principal is the authenticated identity a decision is made for.
type Principal struct {
	UserID int64
	Role   domain.Role
}

// rank orders roles by privilege. Unknown roles rank below every real role.
func rank(r domain.Role) int {
	switch r {
	case domain.RoleAdmin:
		return 3
	case domain.RoleManager:
		return 2
	case domain.RoleSalesExec:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the principal's role carries at least the privilege
// of required.
func AtLeast(p Principal, required domain.Role) bool {
	return rank(p.Role) >= rank(required)
}

// CanViewLead reports whether p may read lead. SALES_EXEC principals see only
// leads they own; MANAGER and ADMIN see all.
func CanViewLead(p Principal, lead *domain.Lead) bool {
	if AtLeast(p, domain.RoleManager) {
		return true
	}
	return lead.OwnerID != nil && *lead.OwnerID == p.UserID
}

// CanMutateLead reports whether p may update lead or attach activities to it.
// The rule is identical to viewing.
func CanMutateLead(p Principal, lead *domain.Lead) bool {
	return CanViewLead(p, lead)
}

// CanDeleteLead reports whether p may hard-delete leads.
func CanDeleteLead(p Principal) bool {
	return AtLeast(p, domain.RoleManager)
}

// CanListUsers reports whether p may enumerate user accounts.
func CanListUsers(p Principal) bool {
	return AtLeast(p, domain.RoleManager)
}

// CanManageUsers reports whether p may create, update or delete user
// accounts.
func CanManageUsers(p Principal) bool {
	return AtLeast(p, domain.RoleAdmin)
}

// ForcedOwner returns the owner id a new lead must carry for p. SALES_EXEC
// principals may only create self-owned leads, so their requested owner is
// silently overridden; higher roles keep the requested value.
func ForcedOwner(p Principal, requested *int64) *int64 {
	if AtLeast(p, domain.RoleManager) {
		return requested
	}
	id := p.UserID
	return &id
}
