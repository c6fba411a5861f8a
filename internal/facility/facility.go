// Package facility supplies the yard topology the engines query: zones,
// blocks and ground slots. The engines only see the read-only Topology
// interface; occupancy bookkeeping happens here, driven by container events.
package facility

import "github.com/icdstack/terminal/internal/domain"

// SlotConstraints narrows an AvailableSlots query to slots a container can
// physically and legally take.
type SlotConstraints struct {
	ZoneKind       domain.ZoneKind
	BlockID        string
	MinFreeTiers   int
	ReeferRequired bool
	HazmatRequired bool
	Size           domain.ContainerSize
}

// Topology is the narrow read interface the engines depend on. The engines
// never mutate topology through it.
type Topology interface {
	AvailableSlots(facilityID string, c SlotConstraints) []domain.GroundSlot
	Slot(barcode string) (domain.GroundSlot, bool)
	Block(id string) (domain.YardBlock, bool)
	Zone(id string) (domain.FacilityZone, bool)
	BlocksByFacility(facilityID string) []domain.YardBlock
	SlotsByBlock(blockID string) []domain.GroundSlot
	FacilityStats(facilityID string) (domain.FacilityStats, bool)
}
