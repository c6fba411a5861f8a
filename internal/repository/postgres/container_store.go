package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/repository"
)

// ContainerStore persists container snapshots into the containers table.
type ContainerStore struct {
	pool *pgxpool.Pool
}

func NewContainerStore(pool *pgxpool.Pool) *ContainerStore {
	return &ContainerStore{pool: pool}
}

func (s *ContainerStore) SaveContainer(ctx context.Context, c domain.Container) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal container %s: %w", c.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO containers (id, tenant_id, facility_id, container_number, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			facility_id = EXCLUDED.facility_id,
			status      = EXCLUDED.status,
			doc         = EXCLUDED.doc,
			updated_at  = EXCLUDED.updated_at`,
		c.ID, c.TenantID, c.FacilityID, c.ContainerNumber, string(c.Status), doc, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save container %s: %w", c.ID, err)
	}
	return nil
}

func (s *ContainerStore) ContainerByID(ctx context.Context, id string) (domain.Container, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM containers WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Container{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.Container{}, fmt.Errorf("query container %s: %w", id, err)
	}
	var c domain.Container
	if err := json.Unmarshal(doc, &c); err != nil {
		return domain.Container{}, fmt.Errorf("decode container %s: %w", id, err)
	}
	return c, nil
}

func (s *ContainerStore) ContainersByFacility(ctx context.Context, facilityID string) ([]domain.Container, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM containers WHERE facility_id = $1 ORDER BY created_at`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("query containers for facility %s: %w", facilityID, err)
	}
	defer rows.Close()

	var out []domain.Container
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan container row: %w", err)
		}
		var c domain.Container
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decode container row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
