// Package container implements the container lifecycle engine: identity,
// status state machine, holds, reefer monitoring and the movement audit
// trail. The engine is authoritative in memory; an injected store receives
// write-behind snapshots after each committed transition.
package container

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
	"github.com/icdstack/terminal/internal/facility"
	"github.com/icdstack/terminal/internal/repository"
)

// reeferDeviationC is the fixed alert threshold for reefer temperature
// excursions, in degrees Celsius.
const reeferDeviationC = 3.0

// defaultFreeDays is the free storage period granted at gate-in when the
// engine is not configured otherwise.
const defaultFreeDays = 5

// Engine owns all container state for the process. Every mutation is
// computed on a deep copy and committed under the mutex only when fully
// valid, so a failed operation never leaves partial state behind.
type Engine struct {
	mu    sync.RWMutex
	bus   *eventbus.Bus
	topo  facility.Topology
	store repository.ContainerStore
	clock clock.Clock
	log   *slog.Logger

	containers map[string]*domain.Container
	byNumber   map[string]string
	byFacility map[string][]string

	freeDays int
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore attaches a snapshot store. Store failures are logged and never
// roll back the in-memory transition.
func WithStore(s repository.ContainerStore) Option {
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

// WithFreeDays overrides the free storage period applied at gate-in.
func WithFreeDays(days int) Option {
	return func(e *Engine) { e.freeDays = days }
}

// New constructs a container engine publishing on bus and validating yard
// placements against topo.
func New(bus *eventbus.Bus, topo facility.Topology, opts ...Option) *Engine {
	e := &Engine{
		bus:        bus,
		topo:       topo,
		clock:      clock.NewSystem(),
		log:        slog.Default(),
		containers: make(map[string]*domain.Container),
		byNumber:   make(map[string]string),
		byFacility: make(map[string][]string),
		freeDays:   defaultFreeDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterInput is the payload for RegisterContainer.
type RegisterInput struct {
	TenantID        string
	FacilityID      string
	ContainerNumber string
	ISOType         string

	Owner     string
	OwnerName string
	BLNumber  string
	BOENumber string
	SBNumber  string

	TareWeightKg  float64
	GrossWeightKg float64
	MaxPayloadKg  float64

	Hazmat        *domain.HazmatInfo
	ReeferSetTemp *float64
	OOG           *domain.OverGaugeInfo
}

// GateInfo carries the gate metadata recorded on gate-in and gate-out
// movements.
type GateInfo struct {
	GateNumber  string
	TruckNumber string
	DriverName  string
	SealNumbers []string
	Condition   string
	OperatorID  string
}

// MoveInfo identifies the equipment and work order behind a yard move.
type MoveInfo struct {
	EquipmentID string
	OperatorID  string
	WorkOrderID string
	Notes       string
}

// HoldInput is the payload for PlaceHold.
type HoldInput struct {
	Type      domain.HoldType
	Reason    string
	Reference string
	Priority  domain.HoldPriority
	PlacedBy  string
}

// RegisterContainer validates the ISO 6346 number, rejects duplicates per
// tenant and creates the container in the announced state.
func (e *Engine) RegisterContainer(ctx context.Context, in RegisterInput) (domain.Container, error) {
	number := strings.ToUpper(strings.TrimSpace(in.ContainerNumber))
	if !domain.ValidContainerNumber(number) {
		return domain.Container{}, domain.Errorf(domain.CodeInvalidContainerNumber,
			"container number %q fails ISO 6346 validation", in.ContainerNumber)
	}
	info, err := domain.ParseISOType(strings.ToUpper(in.ISOType))
	if err != nil {
		return domain.Container{}, err
	}

	e.mu.Lock()
	key := numberKey(in.TenantID, number)
	if _, exists := e.byNumber[key]; exists {
		e.mu.Unlock()
		return domain.Container{}, domain.Errorf(domain.CodeDuplicateContainer,
			"container %s already registered for tenant", number)
	}

	now := e.clock.Now()
	c := &domain.Container{
		ID:              uuid.NewString(),
		TenantID:        in.TenantID,
		FacilityID:      in.FacilityID,
		ContainerNumber: number,
		ISOType:         strings.ToUpper(in.ISOType),
		Size:            info.Size,
		Kind:            info.Kind,
		HighCube:        info.HighCube,
		Status:          domain.StatusAnnounced,
		CustomsStatus:   domain.CustomsPending,
		Owner:           in.Owner,
		OwnerName:       in.OwnerName,
		BLNumber:        in.BLNumber,
		BOENumber:       in.BOENumber,
		SBNumber:        in.SBNumber,
		TareWeightKg:    in.TareWeightKg,
		GrossWeightKg:   in.GrossWeightKg,
		MaxPayloadKg:    in.MaxPayloadKg,
		Hazmat:          in.Hazmat,
		OOG:             in.OOG,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if c.TareWeightKg == 0 {
		c.TareWeightKg = domain.DefaultTareWeightKg(c.Size)
	}
	if c.MaxPayloadKg == 0 {
		c.MaxPayloadKg = domain.DefaultMaxPayloadKg(c.Size)
	}
	if info.Kind == domain.KindReefer || in.ReeferSetTemp != nil {
		set := 0.0
		if in.ReeferSetTemp != nil {
			set = *in.ReeferSetTemp
		}
		c.Reefer = &domain.ReeferInfo{SetTemperature: set, CurrentTemperature: set}
	}

	e.containers[c.ID] = c
	e.byNumber[key] = c.ID
	e.byFacility[c.FacilityID] = append(e.byFacility[c.FacilityID], c.ID)
	snapshot := c.Clone()
	e.mu.Unlock()

	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerRegistered, snapshot, nil, "", "")
	return snapshot, nil
}

// RecordArrival transitions an announced container to arrived, marking
// physical presence at the facility before gate processing.
func (e *Engine) RecordArrival(ctx context.Context, id, actor string) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Status != domain.StatusAnnounced {
			return transitionError(c, domain.StatusArrived)
		}
		c.Status = domain.StatusArrived
		moved = e.appendMovement(c, domain.MoveArrival,
			domain.AtEndpoint(domain.EndpointGate), domain.AtEndpoint(domain.EndpointGate),
			MoveInfo{OperatorID: actor}, nil)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerArrived, snapshot, moved, "", actor)
	return snapshot, nil
}

// GateIn admits a container through the gate. Legal from announced or
// arrived; stamps the gate-in time and the free storage expiry.
func (e *Engine) GateIn(ctx context.Context, id string, gate GateInfo) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Status != domain.StatusAnnounced && c.Status != domain.StatusArrived {
			return transitionError(c, domain.StatusGatedIn)
		}
		now := e.clock.Now()
		c.Status = domain.StatusGatedIn
		c.GateInTime = &now
		expiry := now.Add(time.Duration(e.freeDays) * 24 * time.Hour)
		c.FreeTimeExpiry = &expiry
		if len(gate.SealNumbers) > 0 {
			c.SealNumbers = append(c.SealNumbers, gate.SealNumbers...)
		}
		moved = e.appendMovement(c, domain.MoveGateIn,
			domain.AtEndpoint(domain.EndpointGate), domain.AtEndpoint(domain.EndpointStaging),
			MoveInfo{OperatorID: gate.OperatorID}, gateMeta(gate))
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerGatedIn, snapshot, moved, "", gate.OperatorID)
	return snapshot, nil
}

// Ground places a container into the yard slot identified by barcode. Legal
// from gated_in, or from picked when the container is being restacked. The
// slot must exist, have a free tier and accept the container's size and
// handling class.
func (e *Engine) Ground(ctx context.Context, id, barcode string, move MoveInfo) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Status != domain.StatusGatedIn && c.Status != domain.StatusPicked {
			return transitionError(c, domain.StatusGrounded)
		}
		loc, err := e.placement(c, barcode)
		if err != nil {
			return err
		}
		from := domain.AtEndpoint(domain.EndpointStaging)
		if c.Status == domain.StatusPicked && len(c.PreviousLocations) > 0 {
			from = domain.AtSlot(c.PreviousLocations[len(c.PreviousLocations)-1])
		}
		now := e.clock.Now()
		c.Status = domain.StatusGrounded
		c.CurrentLocation = &loc
		c.GroundedTime = &now
		moved = e.appendMovement(c, domain.MoveGround, from, domain.AtSlot(loc), move, nil)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerGrounded, snapshot, moved, "", move.OperatorID)
	return snapshot, nil
}

// placement validates the target slot against the yard topology and returns
// the concrete location at the next free tier.
func (e *Engine) placement(c *domain.Container, barcode string) (domain.YardLocation, error) {
	slot, ok := e.topo.Slot(barcode)
	if !ok {
		return domain.YardLocation{}, domain.Errorf(domain.CodeSlotUnavailable, "slot %s does not exist", barcode)
	}
	if !slot.Available() {
		return domain.YardLocation{}, domain.Errorf(domain.CodeSlotUnavailable, "slot %s is full or blocked", barcode)
	}
	block, ok := e.topo.Block(slot.BlockID)
	if !ok {
		return domain.YardLocation{}, domain.Errorf(domain.CodeSlotUnavailable, "block %s does not exist", slot.BlockID)
	}
	if !block.AllowsSize(c.Size) {
		return domain.YardLocation{}, domain.Errorf(domain.CodeLOAExceeded,
			"block %s does not take %sft containers", block.Code, c.Size)
	}
	if c.Reefer != nil && !block.ReeferCapable {
		return domain.YardLocation{}, domain.Errorf(domain.CodeSlotUnavailable,
			"block %s has no reefer plugs", block.Code)
	}
	if c.Hazmat != nil && !block.HazmatCapable {
		return domain.YardLocation{}, domain.Errorf(domain.CodeSlotUnavailable,
			"block %s is not hazmat segregated", block.Code)
	}
	return domain.YardLocation{
		FacilityID: block.FacilityID,
		ZoneID:     block.ZoneID,
		BlockID:    block.ID,
		Row:        slot.Row,
		Slot:       slot.Slot,
		Tier:       slot.CurrentTiers + 1,
		Barcode:    slot.Barcode,
	}, nil
}

// Pick lifts a container off its yard slot. Legal only from grounded; the
// slot moves into the location history.
func (e *Engine) Pick(ctx context.Context, id string, move MoveInfo) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Status != domain.StatusGrounded {
			return transitionError(c, domain.StatusPicked)
		}
		from := domain.AtEndpoint(domain.EndpointYard)
		if c.CurrentLocation != nil {
			from = domain.AtSlot(*c.CurrentLocation)
			c.PreviousLocations = append(c.PreviousLocations, *c.CurrentLocation)
		}
		c.Status = domain.StatusPicked
		c.CurrentLocation = nil
		moved = e.appendMovement(c, domain.MovePick, from, domain.AtEndpoint(domain.EndpointStaging), move, nil)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerPicked, snapshot, moved, "", move.OperatorID)
	return snapshot, nil
}

// GateOut releases a container through the gate. Legal only from picked with
// no open holds.
func (e *Engine) GateOut(ctx context.Context, id string, gate GateInfo) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Status != domain.StatusPicked {
			return transitionError(c, domain.StatusGatedOut)
		}
		if c.HasOpenHold() {
			return domain.Errorf(domain.CodeInvalidTransition,
				"container %s has %d open hold(s)", c.ContainerNumber, len(c.OpenHolds()))
		}
		now := e.clock.Now()
		c.Status = domain.StatusGatedOut
		c.GateOutTime = &now
		moved = e.appendMovement(c, domain.MoveGateOut,
			domain.AtEndpoint(domain.EndpointStaging), domain.AtEndpoint(domain.EndpointGate),
			MoveInfo{OperatorID: gate.OperatorID}, gateMeta(gate))
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerGatedOut, snapshot, moved, "", gate.OperatorID)
	return snapshot, nil
}

// PlaceHold appends an open hold. The container enters on_hold and its prior
// status is stored so the last release can restore it. Terminal containers
// cannot be held.
func (e *Engine) PlaceHold(ctx context.Context, id string, in HoldInput) (domain.Container, error) {
	var holdID string
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Status.Terminal() {
			return domain.Errorf(domain.CodeInvalidTransition,
				"cannot hold container %s in terminal status %s", c.ContainerNumber, c.Status)
		}
		priority := in.Priority
		if priority == "" {
			priority = domain.HoldPriorityMedium
		}
		hold := domain.Hold{
			ID:        uuid.NewString(),
			Type:      in.Type,
			Reason:    in.Reason,
			Reference: in.Reference,
			Priority:  priority,
			PlacedAt:  e.clock.Now(),
			PlacedBy:  in.PlacedBy,
		}
		holdID = hold.ID
		c.Holds = append(c.Holds, hold)
		if c.Status != domain.StatusOnHold {
			c.PreHoldStatus = c.Status
			c.Status = domain.StatusOnHold
		}
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerHoldPlaced, snapshot, nil, holdID, in.PlacedBy)
	return snapshot, nil
}

// ReleaseHold closes one open hold. Releasing an unknown or already released
// hold fails with HOLD_NOT_FOUND. When the last open hold closes, the status
// stored at hold placement is restored.
func (e *Engine) ReleaseHold(ctx context.Context, id, holdID, releasedBy string) (domain.Container, error) {
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		idx := -1
		for i, h := range c.Holds {
			if h.ID == holdID && h.Open() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domain.Errorf(domain.CodeHoldNotFound,
				"no open hold %s on container %s", holdID, c.ContainerNumber)
		}
		now := e.clock.Now()
		c.Holds[idx].ReleasedAt = &now
		c.Holds[idx].ReleasedBy = releasedBy
		if !c.HasOpenHold() && c.Status == domain.StatusOnHold {
			c.Status = c.PreHoldStatus
			c.PreHoldStatus = ""
		}
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerHoldReleased, snapshot, nil, holdID, releasedBy)
	return snapshot, nil
}

// PlugInReefer connects a reefer container to yard power.
func (e *Engine) PlugInReefer(ctx context.Context, id, operatorID string) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Reefer == nil {
			return notReefer(c)
		}
		if c.Reefer.PluggedIn {
			return domain.Errorf(domain.CodeInvalidStatus,
				"container %s is already plugged in", c.ContainerNumber)
		}
		now := e.clock.Now()
		c.Reefer.PluggedIn = true
		c.Reefer.PluggedInAt = &now
		moved = e.appendMovement(c, domain.MovePlugReefer, currentRef(c), currentRef(c),
			MoveInfo{OperatorID: operatorID}, nil)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerReeferPlugged, snapshot, moved, "", operatorID)
	return snapshot, nil
}

// UnplugReefer disconnects a reefer container from yard power.
func (e *Engine) UnplugReefer(ctx context.Context, id, operatorID string) (domain.Container, error) {
	var moved *domain.Movement
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Reefer == nil {
			return notReefer(c)
		}
		if !c.Reefer.PluggedIn {
			return domain.Errorf(domain.CodeInvalidStatus,
				"container %s is not plugged in", c.ContainerNumber)
		}
		c.Reefer.PluggedIn = false
		c.Reefer.PluggedInAt = nil
		moved = e.appendMovement(c, domain.MoveUnplugReefer, currentRef(c), currentRef(c),
			MoveInfo{OperatorID: operatorID}, nil)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventContainerReeferUnplugged, snapshot, moved, "", operatorID)
	return snapshot, nil
}

// UpdateReeferTemperature records a temperature reading. A deviation of more
// than 3 degrees Celsius from the set point appends an alert and emits a
// critical event.
func (e *Engine) UpdateReeferTemperature(ctx context.Context, id string, actualTemp float64) (domain.Container, error) {
	var alert *domain.ReeferTempAlert
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if c.Reefer == nil {
			return notReefer(c)
		}
		now := e.clock.Now()
		c.Reefer.CurrentTemperature = actualTemp
		c.Reefer.LastReadingAt = &now
		deviation := math.Abs(actualTemp - c.Reefer.SetTemperature)
		if deviation > reeferDeviationC {
			a := domain.ReeferTempAlert{
				At:         now,
				ActualTemp: actualTemp,
				SetTemp:    c.Reefer.SetTemperature,
				Deviation:  deviation,
			}
			c.Reefer.Alerts = append(c.Reefer.Alerts, a)
			alert = &a
		}
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	if alert != nil {
		_, _ = e.bus.Emit(domain.EventContainerReeferTempAlert, domain.ReeferAlertPayload{
			Container:  snapshot,
			ActualTemp: alert.ActualTemp,
			SetTemp:    alert.SetTemp,
			Deviation:  alert.Deviation,
		}, eventbus.Meta{
			TenantID:   snapshot.TenantID,
			FacilityID: snapshot.FacilityID,
			Source:     "container-engine",
		})
	}
	return snapshot, nil
}

// UpdateCustomsStatus moves the customs axis independently of the lifecycle
// status and captures the customs document references.
func (e *Engine) UpdateCustomsStatus(ctx context.Context, id string, status domain.CustomsStatus, boeNumber, sbNumber, actor string) (domain.Container, error) {
	switch status {
	case domain.CustomsPending, domain.CustomsExamination, domain.CustomsOutOfCharge,
		domain.CustomsLetExport, domain.CustomsDetained:
	default:
		return domain.Container{}, domain.Errorf(domain.CodeInvalidStatus,
			"unknown customs status %q", status)
	}
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		c.CustomsStatus = status
		if boeNumber != "" {
			c.BOENumber = boeNumber
		}
		if sbNumber != "" {
			c.SBNumber = sbNumber
		}
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	e.emit(domain.EventCustomsStatusChanged, snapshot, nil, "", actor)
	return snapshot, nil
}

// AddPhoto attaches a photo record to a container.
func (e *Engine) AddPhoto(ctx context.Context, id string, photo domain.Photo) (domain.Container, error) {
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if photo.ID == "" {
			photo.ID = uuid.NewString()
		}
		if photo.TakenAt.IsZero() {
			photo.TakenAt = e.clock.Now()
		}
		c.Photos = append(c.Photos, photo)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	return snapshot, nil
}

// AddDocument attaches a document record to a container.
func (e *Engine) AddDocument(ctx context.Context, id string, doc domain.Document) (domain.Container, error) {
	snapshot, err := e.transition(id, func(c *domain.Container) error {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.AddedAt.IsZero() {
			doc.AddedAt = e.clock.Now()
		}
		c.Documents = append(c.Documents, doc)
		return nil
	})
	if err != nil {
		return domain.Container{}, err
	}
	e.persist(ctx, snapshot)
	return snapshot, nil
}

// transition runs mutate against a deep copy of the container and commits
// the copy only when mutate succeeds.
func (e *Engine) transition(id string, mutate func(*domain.Container) error) (domain.Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.containers[id]
	if !ok {
		return domain.Container{}, domain.Errorf(domain.CodeNotFound, "container %s not found", id)
	}
	next := current.Clone()
	if err := mutate(&next); err != nil {
		return domain.Container{}, err
	}
	next.UpdatedAt = e.clock.Now()
	e.containers[id] = &next
	return next.Clone(), nil
}

// appendMovement records one audit entry on the container being mutated.
func (e *Engine) appendMovement(c *domain.Container, kind domain.MovementType, from, to domain.LocationRef, move MoveInfo, meta map[string]string) *domain.Movement {
	m := domain.Movement{
		ID:          uuid.NewString(),
		ContainerID: c.ID,
		Type:        kind,
		From:        from,
		To:          to,
		EquipmentID: move.EquipmentID,
		OperatorID:  move.OperatorID,
		WorkOrderID: move.WorkOrderID,
		At:          e.clock.Now(),
		Notes:       move.Notes,
		Meta:        meta,
	}
	c.Movements = append(c.Movements, m)
	return &m
}

func (e *Engine) emit(eventType string, snapshot domain.Container, movement *domain.Movement, holdID, actor string) {
	_, err := e.bus.Emit(eventType, domain.ContainerEventPayload{
		Container: snapshot,
		Movement:  movement,
		HoldID:    holdID,
		Actor:     actor,
	}, eventbus.Meta{
		TenantID:   snapshot.TenantID,
		FacilityID: snapshot.FacilityID,
		Source:     "container-engine",
	})
	if err != nil {
		e.log.Error("emit container event failed", "type", eventType, "container", snapshot.ContainerNumber, "error", err)
	}
}

// persist writes a snapshot through the store when one is attached. The
// in-memory transition is already committed; failures are logged only.
func (e *Engine) persist(ctx context.Context, snapshot domain.Container) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveContainer(ctx, snapshot); err != nil {
		e.log.Error("persist container failed", "container", snapshot.ContainerNumber, "error", err)
	}
}

func transitionError(c *domain.Container, target domain.ContainerStatus) error {
	return domain.Errorf(domain.CodeInvalidTransition,
		"container %s cannot move %s -> %s", c.ContainerNumber, c.Status, target)
}

func notReefer(c *domain.Container) error {
	return domain.Errorf(domain.CodeNotReefer, "container %s is not a reefer", c.ContainerNumber)
}

func currentRef(c *domain.Container) domain.LocationRef {
	if c.CurrentLocation != nil {
		return domain.AtSlot(*c.CurrentLocation)
	}
	return domain.AtEndpoint(domain.EndpointYard)
}

func gateMeta(gate GateInfo) map[string]string {
	meta := make(map[string]string)
	if gate.GateNumber != "" {
		meta["gate"] = gate.GateNumber
	}
	if gate.TruckNumber != "" {
		meta["truck"] = gate.TruckNumber
	}
	if gate.DriverName != "" {
		meta["driver"] = gate.DriverName
	}
	if gate.Condition != "" {
		meta["condition"] = gate.Condition
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func numberKey(tenantID, number string) string {
	return tenantID + "/" + number
}
