package audit

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a Repository writing through the pool. Trail writes never
// join a caller's transaction: a rolled-back domain write must not take its
// trail entries down with it, and a committed one records after the fact.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const eventCols = `id, kind, actor, subject, created_at`

func (r *repoPG) Insert(ctx context.Context, event *Event) error {
	event.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_event (id, kind, actor, subject)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		event.ID, event.Kind, event.Actor, event.Subject,
	).Scan(&event.CreatedAt)
}

func (r *repoPG) Search(ctx context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	pred := sq.Eq{}
	if filter.Actor != "" {
		pred["actor"] = filter.Actor
	}
	if filter.Kind != "" {
		pred["kind"] = filter.Kind
	}
	if filter.Subject != "" {
		pred["subject"] = filter.Subject
	}

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countSQL, countArgs, err := builder.
		Select("COUNT(*)").From("audit_event").Where(pred).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL, dataArgs, err := builder.
		Select(eventCols).From("audit_event").Where(pred).
		OrderBy("created_at DESC, id").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Actor, &e.Subject, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, &e)
	}
	return events, total, rows.Err()
}
