package facility

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
)

// Manager is the in-memory topology implementation. Slot occupancy follows
// the container engine's grounded/picked events rather than being mutated by
// the engines directly.
type Manager struct {
	mu    sync.RWMutex
	clock clock.Clock
	log   *slog.Logger

	facilities map[string]domain.Facility
	zones      map[string]domain.FacilityZone
	blocks     map[string]domain.YardBlock

	slots         map[string]*domain.GroundSlot
	slotByBarcode map[string]string

	blocksByFacility map[string][]string
	slotsByBlock     map[string][]string
}

// NewManager constructs an empty Manager.
func NewManager(clk clock.Clock, log *slog.Logger) *Manager {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		clock:            clk,
		log:              log,
		facilities:       make(map[string]domain.Facility),
		zones:            make(map[string]domain.FacilityZone),
		blocks:           make(map[string]domain.YardBlock),
		slots:            make(map[string]*domain.GroundSlot),
		slotByBarcode:    make(map[string]string),
		blocksByFacility: make(map[string][]string),
		slotsByBlock:     make(map[string][]string),
	}
}

var _ Topology = (*Manager)(nil)

// AddFacility registers a facility.
func (m *Manager) AddFacility(tenantID, code, name string, capacityTEU float64) domain.Facility {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := domain.Facility{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Code:        code,
		Name:        name,
		CapacityTEU: capacityTEU,
		CreatedAt:   m.clock.Now(),
	}
	m.facilities[f.ID] = f
	return f
}

// AddZone registers a zone within a facility.
func (m *Manager) AddZone(facilityID, code, name string, kind domain.ZoneKind, maxStackHeight int) domain.FacilityZone {
	m.mu.Lock()
	defer m.mu.Unlock()

	z := domain.FacilityZone{
		ID:             uuid.NewString(),
		FacilityID:     facilityID,
		Code:           code,
		Name:           name,
		Kind:           kind,
		MaxStackHeight: maxStackHeight,
	}
	m.zones[z.ID] = z
	return z
}

// BlockSpec describes a block to create; slots are auto-created for the
// whole rows x slotsPerRow grid.
type BlockSpec struct {
	Code          string
	Name          string
	Rows          int
	SlotsPerRow   int
	MaxTiers      int
	ReeferCapable bool
	HazmatCapable bool
	AllowedSizes  []domain.ContainerSize
}

// AddBlock registers a block in a zone and creates its ground slots.
func (m *Manager) AddBlock(zoneID string, spec BlockSpec) (domain.YardBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zone, ok := m.zones[zoneID]
	if !ok {
		return domain.YardBlock{}, domain.Errorf(domain.CodeNotFound, "zone %s not found", zoneID)
	}
	for _, id := range m.blocksByFacility[zone.FacilityID] {
		if m.blocks[id].Code == spec.Code {
			return domain.YardBlock{}, domain.Errorf(domain.CodeInvalidStatus, "block code %s already exists in facility", spec.Code)
		}
	}

	maxTiers := spec.MaxTiers
	if maxTiers <= 0 {
		maxTiers = zone.MaxStackHeight
	}
	block := domain.YardBlock{
		ID:            uuid.NewString(),
		FacilityID:    zone.FacilityID,
		ZoneID:        zoneID,
		Code:          spec.Code,
		Name:          spec.Name,
		Kind:          zone.Kind,
		Rows:          spec.Rows,
		SlotsPerRow:   spec.SlotsPerRow,
		MaxTiers:      maxTiers,
		ReeferCapable: spec.ReeferCapable || zone.Kind == domain.ZoneReefer,
		HazmatCapable: spec.HazmatCapable || zone.Kind == domain.ZoneHazmat,
		AllowedSizes:  spec.AllowedSizes,
	}
	m.blocks[block.ID] = block
	m.blocksByFacility[zone.FacilityID] = append(m.blocksByFacility[zone.FacilityID], block.ID)

	kind := domain.ZoneGeneral
	switch {
	case block.ReeferCapable:
		kind = domain.ZoneReefer
	case block.HazmatCapable:
		kind = domain.ZoneHazmat
	}
	for row := 1; row <= block.Rows; row++ {
		for slot := 1; slot <= block.SlotsPerRow; slot++ {
			gs := &domain.GroundSlot{
				ID:       uuid.NewString(),
				BlockID:  block.ID,
				Row:      row,
				Slot:     slot,
				Barcode:  domain.SlotBarcode(block.Code, row, slot),
				Kind:     kind,
				MaxTiers: block.MaxTiers,
			}
			if block.ReeferCapable {
				gs.ReeferPlugs = 1
			}
			m.slots[gs.ID] = gs
			m.slotByBarcode[gs.Barcode] = gs.ID
			m.slotsByBlock[block.ID] = append(m.slotsByBlock[block.ID], gs.ID)
		}
	}
	return block, nil
}

// BindBus subscribes the manager to container grounding/picking events so
// slot occupancy tracks container movements. Slot events are re-emitted on
// the same bus.
func (m *Manager) BindBus(bus *eventbus.Bus) {
	bus.Subscribe(domain.EventContainerGrounded, func(e domain.Event) {
		payload, ok := e.Payload.(domain.ContainerEventPayload)
		if !ok || payload.Container.CurrentLocation == nil {
			return
		}
		loc := *payload.Container.CurrentLocation
		if err := m.Occupy(loc.Barcode, payload.Container.ID, payload.Container.ContainerNumber); err != nil {
			m.log.Warn("slot occupy failed", "barcode", loc.Barcode, "error", err)
			return
		}
		_, _ = bus.Emit(domain.EventSlotOccupied, domain.SlotEventPayload{
			Barcode:     loc.Barcode,
			ContainerID: payload.Container.ID,
			Tier:        loc.Tier,
		}, eventbus.Meta{
			TenantID:      e.TenantID,
			FacilityID:    e.FacilityID,
			Source:        "facility",
			CorrelationID: e.CorrelationID,
		})
	})

	bus.Subscribe(domain.EventContainerPicked, func(e domain.Event) {
		payload, ok := e.Payload.(domain.ContainerEventPayload)
		if !ok || payload.Movement == nil || payload.Movement.From.Slot == nil {
			return
		}
		barcode := payload.Movement.From.Slot.Barcode
		if err := m.Vacate(barcode, payload.Container.ID); err != nil {
			m.log.Warn("slot vacate failed", "barcode", barcode, "error", err)
			return
		}
		_, _ = bus.Emit(domain.EventSlotVacated, domain.SlotEventPayload{
			Barcode:     barcode,
			ContainerID: payload.Container.ID,
		}, eventbus.Meta{
			TenantID:      e.TenantID,
			FacilityID:    e.FacilityID,
			Source:        "facility",
			CorrelationID: e.CorrelationID,
		})
	})
}

// Occupy stacks a container onto a slot.
func (m *Manager) Occupy(barcode, containerID, containerNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, err := m.slotByBarcodeLocked(barcode)
	if err != nil {
		return err
	}
	if !slot.Available() {
		return domain.Errorf(domain.CodeSlotUnavailable, "slot %s is full or blocked", barcode)
	}
	slot.CurrentTiers++
	slot.Containers = append(slot.Containers, domain.StackedContainer{
		ContainerID:     containerID,
		ContainerNumber: containerNumber,
		Tier:            slot.CurrentTiers,
		PlacedAt:        m.clock.Now(),
	})
	return nil
}

// Vacate removes a container from a slot stack.
func (m *Manager) Vacate(barcode, containerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, err := m.slotByBarcodeLocked(barcode)
	if err != nil {
		return err
	}
	for i, c := range slot.Containers {
		if c.ContainerID == containerID {
			slot.Containers = append(slot.Containers[:i], slot.Containers[i+1:]...)
			if slot.CurrentTiers > 0 {
				slot.CurrentTiers--
			}
			return nil
		}
	}
	return domain.Errorf(domain.CodeNotFound, "container %s not stacked in slot %s", containerID, barcode)
}

func (m *Manager) slotByBarcodeLocked(barcode string) (*domain.GroundSlot, error) {
	id, ok := m.slotByBarcode[barcode]
	if !ok {
		return nil, domain.Errorf(domain.CodeNotFound, "slot %s not found", barcode)
	}
	return m.slots[id], nil
}

// Slot returns the slot with the given barcode.
func (m *Manager) Slot(barcode string) (domain.GroundSlot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slotByBarcode[barcode]
	if !ok {
		return domain.GroundSlot{}, false
	}
	return cloneSlot(m.slots[id]), true
}

// Block returns a block by id.
func (m *Manager) Block(id string) (domain.YardBlock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[id]
	return b, ok
}

// Zone returns a zone by id.
func (m *Manager) Zone(id string) (domain.FacilityZone, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[id]
	return z, ok
}

// Facility returns a facility by id.
func (m *Manager) Facility(id string) (domain.Facility, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facilities[id]
	return f, ok
}

// BlocksByFacility lists the blocks of a facility in creation order.
func (m *Manager) BlocksByFacility(facilityID string) []domain.YardBlock {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.blocksByFacility[facilityID]
	out := make([]domain.YardBlock, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.blocks[id])
	}
	return out
}

// SlotsByBlock lists a block's slots in grid order.
func (m *Manager) SlotsByBlock(blockID string) []domain.GroundSlot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.slotsByBlock[blockID]
	out := make([]domain.GroundSlot, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneSlot(m.slots[id]))
	}
	return out
}

// AvailableSlots returns slots that satisfy every hard constraint, ordered
// by barcode for deterministic output.
func (m *Manager) AvailableSlots(facilityID string, c SlotConstraints) []domain.GroundSlot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.GroundSlot
	for _, blockID := range m.blocksByFacility[facilityID] {
		block := m.blocks[blockID]
		if c.BlockID != "" && block.ID != c.BlockID {
			continue
		}
		if c.ZoneKind != "" && block.Kind != c.ZoneKind {
			continue
		}
		if c.ReeferRequired && !block.ReeferCapable {
			continue
		}
		if c.HazmatRequired && !block.HazmatCapable {
			continue
		}
		if c.Size != "" && !block.AllowsSize(c.Size) {
			continue
		}
		for _, slotID := range m.slotsByBlock[blockID] {
			slot := m.slots[slotID]
			if !slot.Available() {
				continue
			}
			if c.MinFreeTiers > 0 && slot.FreeTiers() < c.MinFreeTiers {
				continue
			}
			out = append(out, cloneSlot(slot))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

// FacilityStats aggregates slot usage for a facility.
func (m *Manager) FacilityStats(facilityID string) (domain.FacilityStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.facilities[facilityID]; !ok {
		return domain.FacilityStats{}, false
	}
	stats := domain.FacilityStats{FacilityID: facilityID}
	for _, blockID := range m.blocksByFacility[facilityID] {
		stats.TotalBlocks++
		for _, slotID := range m.slotsByBlock[blockID] {
			stats.TotalSlots++
			if m.slots[slotID].CurrentTiers > 0 {
				stats.OccupiedSlots++
			}
		}
	}
	stats.AvailableSlots = stats.TotalSlots - stats.OccupiedSlots
	if stats.TotalSlots > 0 {
		stats.UtilizationPercent = float64(stats.OccupiedSlots) / float64(stats.TotalSlots) * 100
	}
	return stats, true
}

func cloneSlot(s *domain.GroundSlot) domain.GroundSlot {
	out := *s
	out.Containers = append([]domain.StackedContainer(nil), s.Containers...)
	return out
}
