package icd

import "context"

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Code, error)
	List(ctx context.Context, limit, offset int) ([]*Code, int, error)
}
