// Package yard implements the work-order engine: issuing, dispatching and
// closing physical move orders, slot recommendation and yard occupancy
// reporting.
package yard

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
	"github.com/icdstack/terminal/internal/facility"
	"github.com/icdstack/terminal/internal/repository"
)

// ContainerDirectory is the read-only view of the container engine the yard
// engine validates orders against.
type ContainerDirectory interface {
	Container(id string) (domain.Container, error)
	ContainersByFacility(facilityID string) []domain.Container
}

// Engine owns all work-order state for the process. Orders are guarded by a
// single mutex so "one outstanding order per container" holds under
// concurrent callers.
type Engine struct {
	mu         sync.Mutex
	bus        *eventbus.Bus
	topo       facility.Topology
	containers ContainerDirectory
	store      repository.WorkOrderStore
	clock      clock.Clock
	log        *slog.Logger

	orders            map[string]*domain.WorkOrder
	byFacility        map[string][]string
	activeByContainer map[string]string
	seq               map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore attaches a snapshot store.
func WithStore(s repository.WorkOrderStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithClock injects the time source.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger injects the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs a yard engine.
func New(bus *eventbus.Bus, topo facility.Topology, containers ContainerDirectory, opts ...Option) *Engine {
	e := &Engine{
		bus:               bus,
		topo:              topo,
		containers:        containers,
		clock:             clock.NewSystem(),
		log:               slog.Default(),
		orders:            make(map[string]*domain.WorkOrder),
		byFacility:        make(map[string][]string),
		activeByContainer: make(map[string]string),
		seq:               make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateInput is the payload for CreateWorkOrder.
type CreateInput struct {
	TenantID    string
	FacilityID  string
	Type        domain.WorkOrderType
	ContainerID string

	From domain.LocationRef
	To   domain.LocationRef

	Priority     int
	Urgent       bool
	Instructions string
}

// CreateWorkOrder opens a pending order for an existing container. A
// container can have at most one non-terminal order; a second one is
// rejected with WORK_ORDER_CONFLICT.
func (e *Engine) CreateWorkOrder(ctx context.Context, in CreateInput) (domain.WorkOrder, error) {
	c, err := e.containers.Container(in.ContainerID)
	if err != nil {
		return domain.WorkOrder{}, domain.Errorf(domain.CodeContainerNotFound,
			"container %s does not exist", in.ContainerID)
	}

	e.mu.Lock()
	if activeID, busy := e.activeByContainer[in.ContainerID]; busy {
		number := e.orders[activeID].Number
		e.mu.Unlock()
		return domain.WorkOrder{}, domain.Errorf(domain.CodeWorkOrderConflict,
			"container %s already has outstanding order %s", c.ContainerNumber, number)
	}

	priority := in.Priority
	if priority < 1 {
		priority = 5
	}
	if priority > 10 {
		priority = 10
	}
	now := e.clock.Now()
	w := &domain.WorkOrder{
		ID:              uuid.NewString(),
		TenantID:        in.TenantID,
		FacilityID:      in.FacilityID,
		Number:          e.nextNumberLocked(in.FacilityID),
		Type:            in.Type,
		ContainerID:     c.ID,
		ContainerNumber: c.ContainerNumber,
		ContainerSize:   c.Size,
		From:            in.From,
		To:              in.To,
		Priority:        priority,
		Urgent:          in.Urgent,
		Status:          domain.OrderPending,
		Instructions:    in.Instructions,
		History: []domain.WorkOrderTransition{
			{Status: domain.OrderPending, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.orders[w.ID] = w
	e.byFacility[w.FacilityID] = append(e.byFacility[w.FacilityID], w.ID)
	e.activeByContainer[w.ContainerID] = w.ID
	snapshot := w.Clone()
	e.mu.Unlock()

	e.persist(ctx, snapshot)
	e.emit(domain.EventWorkOrderCreated, snapshot, "")
	return snapshot, nil
}

// nextNumberLocked generates a facility-unique order number from a base36
// timestamp and a facility-scoped counter. Caller holds e.mu.
func (e *Engine) nextNumberLocked(facilityID string) string {
	e.seq[facilityID]++
	ts := strconv.FormatInt(e.clock.Now().Unix(), 36)
	return "WO-" + ts + "-" + strconv.Itoa(e.seq[facilityID])
}

// AssignWorkOrder hands a pending order to equipment and operator.
func (e *Engine) AssignWorkOrder(ctx context.Context, id, equipmentID, operatorID string) (domain.WorkOrder, error) {
	snapshot, err := e.update(id, func(w *domain.WorkOrder) error {
		if w.Status != domain.OrderPending {
			return statusError(w, domain.OrderAssigned)
		}
		now := e.clock.Now()
		w.Status = domain.OrderAssigned
		w.EquipmentID = equipmentID
		w.OperatorID = operatorID
		w.AssignedAt = &now
		w.History = append(w.History, domain.WorkOrderTransition{Status: domain.OrderAssigned, At: now})
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventWorkOrderAssigned, snapshot, "")
	return snapshot, nil
}

// StartWorkOrder marks an assigned order as physically underway.
func (e *Engine) StartWorkOrder(ctx context.Context, id string) (domain.WorkOrder, error) {
	snapshot, err := e.update(id, func(w *domain.WorkOrder) error {
		if w.Status != domain.OrderAssigned {
			return statusError(w, domain.OrderInProgress)
		}
		now := e.clock.Now()
		w.Status = domain.OrderInProgress
		w.StartedAt = &now
		w.History = append(w.History, domain.WorkOrderTransition{Status: domain.OrderInProgress, At: now})
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventWorkOrderStarted, snapshot, "")
	return snapshot, nil
}

// CompleteWorkOrder closes an in-progress order successfully.
func (e *Engine) CompleteWorkOrder(ctx context.Context, id, notes string) (domain.WorkOrder, error) {
	snapshot, err := e.update(id, func(w *domain.WorkOrder) error {
		if w.Status != domain.OrderInProgress {
			return statusError(w, domain.OrderCompleted)
		}
		now := e.clock.Now()
		w.Status = domain.OrderCompleted
		w.CompletedAt = &now
		w.CompletionNotes = notes
		if w.StartedAt != nil {
			w.ActualDuration = now.Sub(*w.StartedAt)
		}
		w.History = append(w.History, domain.WorkOrderTransition{Status: domain.OrderCompleted, At: now})
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventWorkOrderCompleted, snapshot, "")
	return snapshot, nil
}

// CancelWorkOrder aborts any non-terminal order.
func (e *Engine) CancelWorkOrder(ctx context.Context, id, reason string) (domain.WorkOrder, error) {
	snapshot, err := e.update(id, func(w *domain.WorkOrder) error {
		if w.Status.Terminal() {
			return statusError(w, domain.OrderCancelled)
		}
		now := e.clock.Now()
		w.Status = domain.OrderCancelled
		w.CancelledAt = &now
		w.History = append(w.History, domain.WorkOrderTransition{Status: domain.OrderCancelled, At: now, Reason: reason})
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventWorkOrderCancelled, snapshot, reason)
	return snapshot, nil
}

// FailWorkOrder records that an attempted move could not be carried out.
// Legal once the order has been dispatched (assigned or in progress).
func (e *Engine) FailWorkOrder(ctx context.Context, id, reason string) (domain.WorkOrder, error) {
	snapshot, err := e.update(id, func(w *domain.WorkOrder) error {
		if w.Status != domain.OrderAssigned && w.Status != domain.OrderInProgress {
			return statusError(w, domain.OrderFailed)
		}
		now := e.clock.Now()
		w.Status = domain.OrderFailed
		w.FailureReason = reason
		w.History = append(w.History, domain.WorkOrderTransition{Status: domain.OrderFailed, At: now, Reason: reason})
		return nil
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventWorkOrderFailed, snapshot, reason)
	return snapshot, nil
}

// WorkOrder returns a snapshot by id.
func (e *Engine) WorkOrder(id string) (domain.WorkOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.orders[id]
	if !ok {
		return domain.WorkOrder{}, domain.Errorf(domain.CodeNotFound, "work order %s not found", id)
	}
	return w.Clone(), nil
}

// WorkOrdersByFacility returns every order of a facility in creation order.
func (e *Engine) WorkOrdersByFacility(facilityID string) []domain.WorkOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.byFacility[facilityID]
	out := make([]domain.WorkOrder, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.orders[id].Clone())
	}
	return out
}

// ActiveForContainer returns the container's outstanding order, if any.
func (e *Engine) ActiveForContainer(containerID string) (domain.WorkOrder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok := e.activeByContainer[containerID]
	if !ok {
		return domain.WorkOrder{}, false
	}
	return e.orders[id].Clone(), true
}

// PendingWorkOrders returns dispatchable orders: urgent before non-urgent
// regardless of priority, then priority descending, ties kept in creation
// order.
func (e *Engine) PendingWorkOrders(facilityID string) []domain.WorkOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []domain.WorkOrder
	for _, id := range e.byFacility[facilityID] {
		if w := e.orders[id]; w.Status == domain.OrderPending {
			out = append(out, w.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Urgent != out[j].Urgent {
			return out[i].Urgent
		}
		return out[i].Priority > out[j].Priority
	})
	return out
}

// update mutates one order under the mutex, keeping the active-per-container
// index in step with terminal transitions.
func (e *Engine) update(id string, mutate func(*domain.WorkOrder) error) (domain.WorkOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.orders[id]
	if !ok {
		return domain.WorkOrder{}, domain.Errorf(domain.CodeNotFound, "work order %s not found", id)
	}
	next := current.Clone()
	if err := mutate(&next); err != nil {
		return domain.WorkOrder{}, err
	}
	next.UpdatedAt = e.clock.Now()
	e.orders[id] = &next
	if next.Status.Terminal() && e.activeByContainer[next.ContainerID] == id {
		delete(e.activeByContainer, next.ContainerID)
	}
	return next.Clone(), nil
}

func (e *Engine) emit(eventType string, snapshot domain.WorkOrder, reason string) {
	_, err := e.bus.Emit(eventType, domain.WorkOrderEventPayload{
		WorkOrder: snapshot,
		Reason:    reason,
	}, eventbus.Meta{
		TenantID:   snapshot.TenantID,
		FacilityID: snapshot.FacilityID,
		Source:     "yard-engine",
	})
	if err != nil {
		e.log.Error("emit work order event failed", "type", eventType, "number", snapshot.Number, "error", err)
	}
}

func (e *Engine) persist(ctx context.Context, snapshot domain.WorkOrder) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveWorkOrder(ctx, snapshot); err != nil {
		e.log.Error("persist work order failed", "number", snapshot.Number, "error", err)
	}
}

func statusError(w *domain.WorkOrder, target domain.WorkOrderStatus) error {
	return domain.Errorf(domain.CodeInvalidStatus,
		"work order %s cannot move %s -> %s", w.Number, w.Status, target)
}
