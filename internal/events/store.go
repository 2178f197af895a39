package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events to the domain_events table.
type PGStore struct {
	Pool *pgxpool.Pool
}

const insertEventSQL = `
INSERT INTO domain_events (id, topic, aggregate_id, payload)
VALUES ($1, $2, $3, $4)
RETURNING occurred_at`

// InsertEvent implements the Store interface.
func (s PGStore) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s.Pool == nil {
		return Event{}, fmt.Errorf("events: pool not configured")
	}
	ev := Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
	}
	var occurred pgtype.Timestamptz
	err := s.Pool.QueryRow(ctx, insertEventSQL,
		pgtype.UUID{Bytes: ev.ID, Valid: true},
		topic,
		pgtype.UUID{Bytes: aggregateID, Valid: true},
		payload,
	).Scan(&occurred)
	if err != nil {
		return Event{}, err
	}
	ev.OccurredAt = occurred.Time
	return ev, nil
}
