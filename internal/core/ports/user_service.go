package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
)

// CreateUserInput carries admin-created account data.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     string // defaults to SALES_EXEC when empty
}

// UpdateUserInput is a partial patch; nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserDetail is the full user view returned by Get: recent leads plus
// aggregate counts.
type UserDetail struct {
	domain.User
	Leads         []*domain.Lead `json:"leads"`
	LeadCount     int64          `json:"leadCount"`
	ActivityCount int64          `json:"activityCount"`
}

// UserService manages user accounts. Listing requires MANAGER, mutations
// require ADMIN, and an admin may not delete their own account.
type UserService interface {
	List(ctx context.Context, p policy.Principal) ([]*UserSummary, error)
	Get(ctx context.Context, p policy.Principal, id int64) (*UserDetail, error)
	Create(ctx context.Context, p policy.Principal, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, p policy.Principal, id int64, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, p policy.Principal, id int64) error
}
