package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// Sink records trail events. Recording is best effort: implementations never
// surface a failure to the caller, because the domain outcome an event
// describes has already happened.
type Sink interface {
	Record(ctx context.Context, kind Kind, actor string, subject ...string)
}

// Log is the production sink: every event goes to the audit_event table and
// is echoed as a structured log line. Storage failures are logged and
// swallowed.
type Log struct {
	repo   Repository
	logger zerolog.Logger
}

func NewLog(repo Repository, logger zerolog.Logger) *Log {
	return &Log{repo: repo, logger: logger}
}

func (l *Log) Record(ctx context.Context, kind Kind, actor string, subject ...string) {
	event := &Event{Kind: kind, Actor: actor}
	if len(subject) > 0 && subject[0] != "" {
		event.Subject = &subject[0]
	}

	evt := l.logger.Info().
		Str("kind", string(kind)).
		Str("actor", actor)
	if event.Subject != nil {
		evt = evt.Str("subject", *event.Subject)
	}
	evt.Msg("audit event")

	if err := l.repo.Insert(ctx, event); err != nil {
		l.logger.Error().Err(err).
			Str("kind", string(kind)).
			Str("actor", actor).
			Msg("audit event not persisted")
	}
}

// Search exposes the stored trail for the admin endpoint.
func (l *Log) Search(ctx context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	return l.repo.Search(ctx, filter, limit, offset)
}
