package yard

import (
	"context"
	"time"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
)

// Capacity alert thresholds as utilization percentages.
const (
	capacityWarningPct  = 85.0
	capacityCriticalPct = 95.0
)

// congestionPendingOrders is the pending backlog above which a congestion
// alert is raised.
const congestionPendingOrders = 25

// longStayDays marks a container as long-staying once grounded this long.
const longStayDays = 7

// YardOccupancy aggregates slot and container data into the facility
// occupancy snapshot, broken down per zone.
func (e *Engine) YardOccupancy(facilityID string) domain.YardOccupancy {
	occ := domain.YardOccupancy{
		FacilityID: facilityID,
		Timestamp:  e.clock.Now(),
		BySize:     make(map[domain.ContainerSize]int),
		ByStatus:   make(map[domain.ContainerStatus]int),
	}

	perZone := make(map[string]*domain.ZoneOccupancy)
	var zoneOrder []string
	for _, block := range e.topo.BlocksByFacility(facilityID) {
		zo, ok := perZone[block.ZoneID]
		if !ok {
			zo = &domain.ZoneOccupancy{ZoneID: block.ZoneID, ZoneKind: block.Kind}
			if zone, found := e.topo.Zone(block.ZoneID); found {
				zo.ZoneName = zone.Name
				zo.ZoneKind = zone.Kind
			}
			perZone[block.ZoneID] = zo
			zoneOrder = append(zoneOrder, block.ZoneID)
		}
		for _, slot := range e.topo.SlotsByBlock(block.ID) {
			occ.TotalSlots++
			zo.TotalSlots++
			if slot.CurrentTiers > 0 {
				occ.OccupiedSlots++
				zo.OccupiedSlots++
			}
		}
	}
	occ.AvailableSlots = occ.TotalSlots - occ.OccupiedSlots
	if occ.TotalSlots > 0 {
		occ.UtilizationPercent = float64(occ.OccupiedSlots) / float64(occ.TotalSlots) * 100
	}

	now := e.clock.Now()
	longStay := time.Duration(longStayDays) * 24 * time.Hour
	for _, c := range e.containers.ContainersByFacility(facilityID) {
		if c.Status.Terminal() {
			continue
		}
		occ.ByStatus[c.Status]++
		inYard := c.Status == domain.StatusGrounded ||
			(c.Status == domain.StatusOnHold && c.CurrentLocation != nil)
		if !inYard {
			continue
		}
		occ.BySize[c.Size]++
		occ.TotalTEU += c.Size.TEU()
		if c.Reefer != nil {
			occ.ReeferCount++
			if c.Reefer.PluggedIn {
				occ.ReeferPluggedIn++
			}
		}
		if c.Hazmat != nil {
			occ.HazmatCount++
		}
		if c.FreeTimeExpiry != nil && c.FreeTimeExpiry.Before(now) {
			occ.OverdueCount++
		}
		if c.GroundedTime != nil && now.Sub(*c.GroundedTime) > longStay {
			occ.LongStayCount++
		}
		if c.CurrentLocation != nil {
			if zo, ok := perZone[c.CurrentLocation.ZoneID]; ok {
				zo.TEUCount += c.Size.TEU()
			}
		}
	}

	for _, zoneID := range zoneOrder {
		zo := perZone[zoneID]
		if zo.TotalSlots > 0 {
			zo.UtilizationPercent = float64(zo.OccupiedSlots) / float64(zo.TotalSlots) * 100
		}
		occ.ByZone = append(occ.ByZone, *zo)
	}
	return occ
}

// CheckCapacityAlerts sweeps the facility and emits capacity and congestion
// alerts. It returns the events emitted so schedulers can act on them.
func (e *Engine) CheckCapacityAlerts(facilityID string) []domain.Event {
	var out []domain.Event
	meta := eventbus.Meta{FacilityID: facilityID, Source: "yard-engine"}

	if stats, ok := e.topo.FacilityStats(facilityID); ok {
		payload := domain.CapacityEventPayload{
			FacilityID:     facilityID,
			Utilization:    stats.UtilizationPercent,
			AvailableSlots: stats.AvailableSlots,
		}
		switch {
		case stats.UtilizationPercent >= capacityCriticalPct:
			if ev, err := e.bus.Emit(domain.EventCapacityCritical, payload, meta); err == nil {
				out = append(out, ev)
			}
		case stats.UtilizationPercent >= capacityWarningPct:
			if ev, err := e.bus.Emit(domain.EventCapacityWarning, payload, meta); err == nil {
				out = append(out, ev)
			}
		}
	}

	if pending := len(e.PendingWorkOrders(facilityID)); pending > congestionPendingOrders {
		payload := domain.CapacityEventPayload{
			FacilityID:  facilityID,
			Utilization: float64(pending),
		}
		if ev, err := e.bus.Emit(domain.EventCongestionAlert, payload, meta); err == nil {
			out = append(out, ev)
		}
	}
	return out
}

// AutoGround subscribes the engine to gate-in events and opens a grounding
// work order for every admitted container that has no outstanding order,
// targeting the best recommended slot. Returns the unsubscribe function.
func (e *Engine) AutoGround(ctx context.Context) func() {
	return e.bus.Subscribe(domain.EventContainerGatedIn, func(ev domain.Event) {
		payload, ok := ev.Payload.(domain.ContainerEventPayload)
		if !ok {
			return
		}
		c := payload.Container
		if _, busy := e.ActiveForContainer(c.ID); busy {
			return
		}
		to := domain.AtEndpoint(domain.EndpointYard)
		if recs := e.RecommendSlot(c.FacilityID, c, 1); len(recs) > 0 {
			to = domain.AtSlot(recs[0].Location)
		}
		_, err := e.CreateWorkOrder(ctx, CreateInput{
			TenantID:    c.TenantID,
			FacilityID:  c.FacilityID,
			Type:        domain.OrderGrounding,
			ContainerID: c.ID,
			From:        domain.AtEndpoint(domain.EndpointStaging),
			To:          to,
		})
		if err != nil {
			e.log.Warn("auto grounding order failed", "container", c.ContainerNumber, "error", err)
		}
	})
}
