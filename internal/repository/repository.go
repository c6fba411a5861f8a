// Package repository defines the persistence boundary of the terminal
// engines. The engines are authoritative in memory; stores receive
// write-behind snapshots and are queried only on startup or by reporting
// tools.
package repository

import (
	"context"

	"github.com/icdstack/terminal/internal/domain"
)

// ContainerStore persists container snapshots.
type ContainerStore interface {
	SaveContainer(ctx context.Context, c domain.Container) error
	ContainerByID(ctx context.Context, id string) (domain.Container, error)
	ContainersByFacility(ctx context.Context, facilityID string) ([]domain.Container, error)
}

// WorkOrderStore persists work order snapshots.
type WorkOrderStore interface {
	SaveWorkOrder(ctx context.Context, w domain.WorkOrder) error
	WorkOrdersByFacility(ctx context.Context, facilityID string) ([]domain.WorkOrder, error)
}

// EventStore appends emitted events to a durable journal.
type EventStore interface {
	AppendEvent(ctx context.Context, e domain.Event) error
}
