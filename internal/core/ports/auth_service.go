package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// RegisterInput carries self-service registration data.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string // defaults to SALES_EXEC when empty
}

// AuthService implements registration, login and current-user lookup.
type AuthService interface {
	// Register creates the account and returns it with a signed token.
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)

	// Login verifies credentials and returns a signed token with the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// Me returns the account behind an authenticated user id.
	Me(ctx context.Context, userID int64) (*domain.User, error)
}
