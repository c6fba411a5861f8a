package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icdstack/terminal/internal/domain"
)

// WorkOrderStore persists work order snapshots into the work_orders table.
type WorkOrderStore struct {
	pool *pgxpool.Pool
}

func NewWorkOrderStore(pool *pgxpool.Pool) *WorkOrderStore {
	return &WorkOrderStore{pool: pool}
}

func (s *WorkOrderStore) SaveWorkOrder(ctx context.Context, w domain.WorkOrder) error {
	doc, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal work order %s: %w", w.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO work_orders (id, tenant_id, facility_id, number, container_id, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status     = EXCLUDED.status,
			doc        = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at`,
		w.ID, w.TenantID, w.FacilityID, w.Number, w.ContainerID, string(w.Status), doc, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save work order %s: %w", w.ID, err)
	}
	return nil
}

func (s *WorkOrderStore) WorkOrdersByFacility(ctx context.Context, facilityID string) ([]domain.WorkOrder, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM work_orders WHERE facility_id = $1 ORDER BY created_at`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("query work orders for facility %s: %w", facilityID, err)
	}
	defer rows.Close()

	var out []domain.WorkOrder
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan work order row: %w", err)
		}
		var w domain.WorkOrder
		if err := json.Unmarshal(doc, &w); err != nil {
			return nil, fmt.Errorf("decode work order row: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
