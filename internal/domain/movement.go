package domain

import "time"

// MovementType names the physical or administrative move recorded.
type MovementType string

const (
	MoveArrival      MovementType = "arrival"
	MoveGateIn       MovementType = "gate_in"
	MoveGround       MovementType = "ground"
	MovePick         MovementType = "pick"
	MoveGateOut      MovementType = "gate_out"
	MoveRestack      MovementType = "restack"
	MovePlugReefer   MovementType = "plug_reefer"
	MoveUnplugReefer MovementType = "unplug_reefer"
)

// Endpoint is a symbolic location outside the yard grid.
type Endpoint string

const (
	EndpointGate    Endpoint = "gate"
	EndpointRail    Endpoint = "rail"
	EndpointTruck   Endpoint = "truck"
	EndpointVessel  Endpoint = "vessel"
	EndpointYard    Endpoint = "yard"
	EndpointStaging Endpoint = "staging"
)

// LocationRef points either at a concrete yard slot or a symbolic endpoint.
type LocationRef struct {
	Endpoint Endpoint      `json:"endpoint,omitempty"`
	Slot     *YardLocation `json:"slot,omitempty"`
}

// AtSlot builds a LocationRef for a yard slot.
func AtSlot(loc YardLocation) LocationRef {
	return LocationRef{Slot: &loc}
}

// AtEndpoint builds a LocationRef for a symbolic endpoint.
func AtEndpoint(e Endpoint) LocationRef {
	return LocationRef{Endpoint: e}
}

func (l LocationRef) String() string {
	if l.Slot != nil {
		return l.Slot.Barcode
	}
	if l.Endpoint != "" {
		return string(l.Endpoint)
	}
	return "unknown"
}

// Movement is an immutable audit record appended on every lifecycle
// transition. It is owned by the container it belongs to.
type Movement struct {
	ID          string            `json:"id"`
	ContainerID string            `json:"containerId"`
	Type        MovementType      `json:"type"`
	From        LocationRef       `json:"from"`
	To          LocationRef       `json:"to"`
	EquipmentID string            `json:"equipmentId,omitempty"`
	OperatorID  string            `json:"operatorId,omitempty"`
	WorkOrderID string            `json:"workOrderId,omitempty"`
	At          time.Time         `json:"at"`
	Notes       string            `json:"notes,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}
