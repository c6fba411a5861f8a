package domain

import (
	"strings"
	"time"
)

// Severity classifies an event for downstream alerting.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Event is a domain event fanned out by the bus.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Payload       any       `json:"payload"`
	Timestamp     time.Time `json:"timestamp"`
	Severity      Severity  `json:"severity"`
	Source        string    `json:"source"`
	TenantID      string    `json:"tenantId,omitempty"`
	FacilityID    string    `json:"facilityId,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// Container lifecycle event types.
const (
	EventContainerRegistered      = "container.registered"
	EventContainerArrived         = "container.arrived"
	EventContainerGatedIn         = "container.gated_in"
	EventContainerGrounded        = "container.grounded"
	EventContainerPicked          = "container.picked"
	EventContainerGatedOut        = "container.gated_out"
	EventContainerDeparted        = "container.departed"
	EventContainerHoldPlaced      = "container.hold_placed"
	EventContainerHoldReleased    = "container.hold_released"
	EventContainerReeferPlugged   = "container.reefer_plugged"
	EventContainerReeferUnplugged = "container.reefer_unplugged"
	EventContainerReeferTempAlert = "container.reefer_temp_alert"
	EventCustomsStatusChanged     = "customs.status_changed"
)

// Yard event types.
const (
	EventSlotOccupied       = "yard.slot_occupied"
	EventSlotVacated        = "yard.slot_vacated"
	EventWorkOrderCreated   = "yard.work_order_created"
	EventWorkOrderAssigned  = "yard.work_order_assigned"
	EventWorkOrderStarted   = "yard.work_order_started"
	EventWorkOrderCompleted = "yard.work_order_completed"
	EventWorkOrderCancelled = "yard.work_order_cancelled"
	EventWorkOrderFailed    = "yard.work_order_failed"
	EventCapacityWarning    = "yard.capacity_warning"
	EventCapacityCritical   = "yard.capacity_critical"
	EventCongestionAlert    = "yard.congestion_alert"
)

// eventSeverities maps event types to their default severity; anything not
// listed is info.
var eventSeverities = map[string]Severity{
	EventContainerReeferTempAlert: SeverityCritical,
	EventCapacityCritical:         SeverityCritical,
	EventCapacityWarning:          SeverityWarning,
	EventCongestionAlert:          SeverityWarning,
	EventWorkOrderFailed:          SeverityError,
	EventContainerHoldPlaced:      SeverityWarning,
}

// SeverityFor returns the default severity for an event type.
func SeverityFor(eventType string) Severity {
	if s, ok := eventSeverities[eventType]; ok {
		return s
	}
	return SeverityInfo
}

// MatchesPattern reports whether an event type matches a subscription
// pattern. Patterns are either "*", an exact type, or a "prefix.*" suffix
// wildcard. The wildcard is prefix-based: "container.*" matches
// "container.grounded" and any deeper dotted name such as
// "container.hold.released".
func MatchesPattern(eventType, pattern string) bool {
	if pattern == "*" || pattern == eventType {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		prefix := pattern[:len(pattern)-2]
		return strings.HasPrefix(eventType, prefix+".")
	}
	return false
}

// ContainerEventPayload is the payload shape of container.* events. It
// always carries the full updated snapshot.
type ContainerEventPayload struct {
	Container Container `json:"container"`
	Movement  *Movement `json:"movement,omitempty"`
	HoldID    string    `json:"holdId,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

// ReeferAlertPayload is the payload of container.reefer_temp_alert.
type ReeferAlertPayload struct {
	Container  Container `json:"container"`
	ActualTemp float64   `json:"actualTemp"`
	SetTemp    float64   `json:"setTemp"`
	Deviation  float64   `json:"deviation"`
}

// WorkOrderEventPayload is the payload shape of yard.work_order_* events.
type WorkOrderEventPayload struct {
	WorkOrder WorkOrder `json:"workOrder"`
	Reason    string    `json:"reason,omitempty"`
}

// SlotEventPayload is the payload of yard.slot_occupied / yard.slot_vacated.
type SlotEventPayload struct {
	Barcode     string `json:"barcode"`
	ContainerID string `json:"containerId"`
	Tier        int    `json:"tier,omitempty"`
}

// CapacityEventPayload is the payload of yard capacity and congestion alerts.
type CapacityEventPayload struct {
	FacilityID     string  `json:"facilityId"`
	ZoneID         string  `json:"zoneId,omitempty"`
	ZoneName       string  `json:"zoneName,omitempty"`
	Utilization    float64 `json:"utilization"`
	AvailableSlots int     `json:"availableSlots,omitempty"`
}
