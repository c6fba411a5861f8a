package domain

import (
	"fmt"
	"time"
)

// ZoneKind classifies a facility zone by the equipment it can take.
type ZoneKind string

const (
	ZoneGeneral ZoneKind = "general"
	ZoneReefer  ZoneKind = "reefer"
	ZoneHazmat  ZoneKind = "hazmat"
	ZoneEmpty   ZoneKind = "empty"
)

// Facility is a tenant-scoped depot site.
type Facility struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	CapacityTEU float64   `json:"capacityTeu"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FacilityZone groups yard blocks with a common handling profile.
type FacilityZone struct {
	ID             string   `json:"id"`
	FacilityID     string   `json:"facilityId"`
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Kind           ZoneKind `json:"kind"`
	MaxStackHeight int      `json:"maxStackHeight"`
}

// YardBlock is a rectangular grid of ground slots inside a zone.
type YardBlock struct {
	ID                string          `json:"id"`
	FacilityID        string          `json:"facilityId"`
	ZoneID            string          `json:"zoneId"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Kind              ZoneKind        `json:"kind"`
	Rows              int             `json:"rows"`
	SlotsPerRow       int             `json:"slotsPerRow"`
	MaxTiers          int             `json:"maxTiers"`
	ReeferCapable     bool            `json:"reeferCapable"`
	HazmatCapable     bool            `json:"hazmatCapable"`
	AllowedSizes      []ContainerSize `json:"allowedSizes"`
	MaxGroundWeightKg float64         `json:"maxGroundWeightKg,omitempty"`
}

// AllowsSize reports whether the block accepts the given container size.
func (b YardBlock) AllowsSize(size ContainerSize) bool {
	if len(b.AllowedSizes) == 0 {
		return true
	}
	for _, s := range b.AllowedSizes {
		if s == size {
			return true
		}
	}
	return false
}

// StackedContainer is one container inside a ground slot stack.
type StackedContainer struct {
	ContainerID     string    `json:"containerId"`
	ContainerNumber string    `json:"containerNumber"`
	Tier            int       `json:"tier"`
	PlacedAt        time.Time `json:"placedAt"`
}

// GroundSlot is a single stackable position in a yard block.
type GroundSlot struct {
	ID           string             `json:"id"`
	BlockID      string             `json:"blockId"`
	Row          int                `json:"row"`
	Slot         int                `json:"slot"`
	Barcode      string             `json:"barcode"`
	Kind         ZoneKind           `json:"kind"`
	MaxTiers     int                `json:"maxTiers"`
	CurrentTiers int                `json:"currentTiers"`
	ReeferPlugs  int                `json:"reeferPlugs,omitempty"`
	Containers   []StackedContainer `json:"containers,omitempty"`
	Blocked      bool               `json:"blocked,omitempty"`
}

// Available reports whether the slot can take one more container.
func (s GroundSlot) Available() bool {
	return !s.Blocked && s.CurrentTiers < s.MaxTiers
}

// FreeTiers returns the remaining stack capacity.
func (s GroundSlot) FreeTiers() int {
	return s.MaxTiers - s.CurrentTiers
}

// YardLocation addresses one tier of one ground slot.
type YardLocation struct {
	FacilityID string `json:"facilityId"`
	ZoneID     string `json:"zoneId,omitempty"`
	BlockID    string `json:"blockId"`
	Row        int    `json:"row"`
	Slot       int    `json:"slot"`
	Tier       int    `json:"tier"`
	Barcode    string `json:"barcode"`
}

// SlotBarcode renders the canonical BLOCK-RR-SS barcode.
func SlotBarcode(blockCode string, row, slot int) string {
	return fmt.Sprintf("%s-%02d-%02d", blockCode, row, slot)
}

// FacilityStats summarizes slot usage for a whole facility.
type FacilityStats struct {
	FacilityID         string  `json:"facilityId"`
	TotalBlocks        int     `json:"totalBlocks"`
	TotalSlots         int     `json:"totalSlots"`
	OccupiedSlots      int     `json:"occupiedSlots"`
	AvailableSlots     int     `json:"availableSlots"`
	UtilizationPercent float64 `json:"utilizationPercent"`
}

// ZoneOccupancy is yard occupancy aggregated per zone.
type ZoneOccupancy struct {
	ZoneID             string   `json:"zoneId"`
	ZoneName           string   `json:"zoneName"`
	ZoneKind           ZoneKind `json:"zoneKind"`
	TotalSlots         int      `json:"totalSlots"`
	OccupiedSlots      int      `json:"occupiedSlots"`
	UtilizationPercent float64  `json:"utilizationPercent"`
	TEUCount           float64  `json:"teuCount"`
}

// YardOccupancy is the facility-level occupancy snapshot.
type YardOccupancy struct {
	FacilityID         string                  `json:"facilityId"`
	Timestamp          time.Time               `json:"timestamp"`
	TotalSlots         int                     `json:"totalSlots"`
	OccupiedSlots      int                     `json:"occupiedSlots"`
	AvailableSlots     int                     `json:"availableSlots"`
	UtilizationPercent float64                 `json:"utilizationPercent"`
	TotalTEU           float64                 `json:"totalTeu"`
	BySize             map[ContainerSize]int   `json:"bySize"`
	ByStatus           map[ContainerStatus]int `json:"byStatus"`
	ByZone             []ZoneOccupancy         `json:"byZone"`
	ReeferCount        int                     `json:"reeferCount"`
	ReeferPluggedIn    int                     `json:"reeferPluggedIn"`
	HazmatCount        int                     `json:"hazmatCount"`
	OverdueCount       int                     `json:"overdueCount"`
	LongStayCount      int                     `json:"longStayCount"`
}

// SlotRecommendation is one ranked candidate slot for grounding a container.
type SlotRecommendation struct {
	Location         YardLocation `json:"location"`
	Score            float64      `json:"score"`
	Reasons          []string     `json:"reasons"`
	Warnings         []string     `json:"warnings,omitempty"`
	RehandlesNeeded  int          `json:"rehandlesNeeded"`
	DistanceFromGate float64      `json:"distanceFromGate"`
	StackHeight      int          `json:"stackHeight"`
}
