package user

import (
	"context"

	"github.com/go-auth-otp/internal/domain"
)

// Service exposes read access to account profiles. The caller's own
// profile comes from the access guard's resolved account; this service
// covers the cross-account listing.
type Service interface {
	List(ctx context.Context) ([]domain.User, error)
}

type userStore interface {
	List(ctx context.Context) ([]domain.User, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}
