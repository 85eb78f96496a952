package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// UserSummary is a user plus aggregate counts, used in list views.
type UserSummary struct {
	domain.User
	LeadCount     int64 `json:"leadCount"`
	ActivityCount int64 `json:"activityCount"`
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user, filling ID and timestamp. Returns
	// domain.ErrUserExists when the email is already registered.
	Create(ctx context.Context, u *domain.User) error

	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// EmailTakenByOther reports whether email belongs to a user other than id.
	EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error)

	// List returns all users with their lead and activity counts, most
	// recently created first.
	List(ctx context.Context) ([]*UserSummary, error)

	// Counts returns how many leads the user owns and how many activities
	// they created.
	Counts(ctx context.Context, id int64) (leads, activities int64, err error)

	// Update persists the user's mutable fields (name, email, role,
	// password hash).
	Update(ctx context.Context, u *domain.User) error

	Delete(ctx context.Context, id int64) error
}
