package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
	"github.com/leadstack/crm-api/internal/core/ports"
)

const minPasswordLength = 6

// UserService manages user accounts. Listing requires MANAGER privilege,
// every mutation requires ADMIN, and an admin cannot delete their own
// account.
type UserService struct {
	users ports.UserRepository
	leads ports.LeadRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, leads ports.LeadRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, leads: leads, log: log}
}

// List returns all users with lead and activity counts.
func (s *UserService) List(ctx context.Context, p policy.Principal) ([]*ports.UserSummary, error) {
	if !policy.CanListUsers(p) {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns one user with their recent leads and aggregate counts.
func (s *UserService) Get(ctx context.Context, p policy.Principal, id int64) (*ports.UserDetail, error) {
	if !policy.CanListUsers(p) {
		return nil, domain.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	leads, err := s.leads.Recent(ctx, &id, 10)
	if err != nil {
		return nil, fmt.Errorf("get user: recent leads: %w", err)
	}
	leadCount, activityCount, err := s.users.Counts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: counts: %w", err)
	}

	return &ports.UserDetail{
		User:          *user,
		Leads:         leads,
		LeadCount:     leadCount,
		ActivityCount: activityCount,
	}, nil
}

// Create adds a user account on behalf of an admin.
func (s *UserService) Create(ctx context.Context, p policy.Principal, in ports.CreateUserInput) (*domain.User, error) {
	if !policy.CanManageUsers(p) {
		return nil, domain.ErrForbidden
	}
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email, name, and password are required", domain.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	role := domain.RoleSalesExec
	if in.Role != "" {
		role = domain.Role(in.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, in.Role)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// Update applies a partial patch to a user account.
func (s *UserService) Update(ctx context.Context, p policy.Principal, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	if !policy.CanManageUsers(p) {
		return nil, domain.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		taken, err := s.users.EmailTakenByOther(ctx, *in.Email, id)
		if err != nil {
			return nil, fmt.Errorf("update user: check email: %w", err)
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
		user.Email = *in.Email
	}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, *in.Role)
		}
		user.Role = role
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info().Int64("user_id", id).Msg("user updated")
	return user, nil
}

// Delete removes a user account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if !policy.CanManageUsers(p) {
		return domain.ErrForbidden
	}
	if id == p.UserID {
		return fmt.Errorf("%w: you cannot delete your own account", domain.ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
