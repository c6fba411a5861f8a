package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icdstack/terminal/internal/domain"
)

// EventStore appends emitted events into the events journal table.
type EventStore struct {
	pool *pgxpool.Pool
}

func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

func (s *EventStore) AppendEvent(ctx context.Context, e domain.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload %s: %w", e.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO events (id, type, severity, source, tenant_id, facility_id, correlation_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Type, string(e.Severity), e.Source, e.TenantID, e.FacilityID, e.CorrelationID, payload, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", e.ID, err)
	}
	return nil
}
