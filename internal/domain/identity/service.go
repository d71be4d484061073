package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/errs"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// ResolvePatient returns the user record for username, requiring the patient
// role. A missing user or a user holding another role is an invalid
// reference, not a lookup miss: the caller supplied the name in a payload.
func (s *Service) ResolvePatient(ctx context.Context, username string) (*User, error) {
	return s.resolveRole(ctx, username, RolePatient)
}

// ResolveHCP returns the user record for username, requiring the hcp role.
func (s *Service) ResolveHCP(ctx context.Context, username string) (*User, error) {
	return s.resolveRole(ctx, username, RoleHCP)
}

func (s *Service) resolveRole(ctx context.Context, username string, role Role) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, errs.InvalidReference("no %s named %q", role, username)
	}
	if user.Role != role {
		return nil, errs.InvalidReference("user %q is not a %s", username, role)
	}
	return user, nil
}

func (s *Service) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error) {
	if !role.Valid() {
		return nil, 0, errs.InvalidReference("unknown role %q", role)
	}
	return s.repo.List(ctx, role, limit, offset)
}

// CallerResolver adapts the service to the authentication middleware.
type CallerResolver struct {
	svc *Service
}

func NewCallerResolver(svc *Service) *CallerResolver {
	return &CallerResolver{svc: svc}
}

func (r *CallerResolver) ResolveCaller(ctx context.Context, username string) (*auth.Caller, error) {
	user, err := r.svc.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, errs.Forbidden("account %q is disabled", username)
	}
	return &auth.Caller{
		ID:       user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}, nil
}
