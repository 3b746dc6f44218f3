package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent appends a domain event row and returns the stored record.
func (s *PGStore) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("events: pool not configured")
	}
	ev := Event{
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
	}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (id, topic, aggregate_id, payload)
		 VALUES (gen_random_uuid(), $1, $2, $3)
		 RETURNING id, occurred_at`,
		topic, aggregateID, payload,
	)
	if err := row.Scan(&ev.ID, &ev.OccurredAt); err != nil {
		return Event{}, err
	}
	return ev, nil
}
