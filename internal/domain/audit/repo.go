package audit

import "context"

// Filter narrows a trail search. Zero values mean no constraint.
type Filter struct {
	Actor   string
	Kind    Kind
	Subject string
}

type Repository interface {
	Insert(ctx context.Context, event *Event) error
	Search(ctx context.Context, filter Filter, limit, offset int) ([]*Event, int, error)
}
