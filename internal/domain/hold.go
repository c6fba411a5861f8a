package domain

import "time"

// HoldType is the reason category for a hold.
type HoldType string

const (
	HoldCustoms       HoldType = "customs"
	HoldCommercial    HoldType = "commercial"
	HoldSafety        HoldType = "safety"
	HoldDocumentation HoldType = "documentation"
)

// HoldPriority orders competing holds for operator attention.
type HoldPriority string

const (
	HoldPriorityLow      HoldPriority = "low"
	HoldPriorityMedium   HoldPriority = "medium"
	HoldPriorityHigh     HoldPriority = "high"
	HoldPriorityCritical HoldPriority = "critical"
)

// Hold is a reason-coded block on a container. Holds are append-only;
// closing one sets ReleasedAt/ReleasedBy, it is never removed.
type Hold struct {
	ID         string       `json:"id"`
	Type       HoldType     `json:"type"`
	Reason     string       `json:"reason"`
	Reference  string       `json:"reference,omitempty"`
	Priority   HoldPriority `json:"priority"`
	PlacedAt   time.Time    `json:"placedAt"`
	PlacedBy   string       `json:"placedBy"`
	ReleasedAt *time.Time   `json:"releasedAt,omitempty"`
	ReleasedBy string       `json:"releasedBy,omitempty"`
}

// Open reports whether the hold is still blocking the container.
func (h Hold) Open() bool {
	return h.ReleasedAt == nil
}
