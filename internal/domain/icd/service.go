package icd

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup returns the vocabulary entry for a code string, NotFound when the
// code is not in the directory. Matching is exact apart from surrounding
// whitespace.
func (s *Service) Lookup(ctx context.Context, code string) (*Code, error) {
	return s.repo.GetByCode(ctx, strings.TrimSpace(code))
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Code, int, error) {
	return s.repo.List(ctx, limit, offset)
}
