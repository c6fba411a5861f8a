package domain

import "time"

// WorkOrderType names the physical move being ordered.
type WorkOrderType string

const (
	OrderGrounding WorkOrderType = "grounding"
	OrderPick      WorkOrderType = "pick"
	OrderRestack   WorkOrderType = "restack"
	OrderShift     WorkOrderType = "shift"
)

// WorkOrderStatus is the state of a work order.
type WorkOrderStatus string

const (
	OrderPending    WorkOrderStatus = "pending"
	OrderAssigned   WorkOrderStatus = "assigned"
	OrderInProgress WorkOrderStatus = "in_progress"
	OrderCompleted  WorkOrderStatus = "completed"
	OrderCancelled  WorkOrderStatus = "cancelled"
	OrderFailed     WorkOrderStatus = "failed"
)

// Terminal reports whether the work order can no longer change.
func (s WorkOrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled || s == OrderFailed
}

// WorkOrderTransition records one status change for the audit trail.
type WorkOrderTransition struct {
	Status WorkOrderStatus `json:"status"`
	At     time.Time       `json:"at"`
	Reason string          `json:"reason,omitempty"`
}

// WorkOrder is a request to physically move one container between two
// locations. Once completed, cancelled or failed it is immutable.
type WorkOrder struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	FacilityID string `json:"facilityId"`
	Number     string `json:"number"`

	Type            WorkOrderType `json:"type"`
	ContainerID     string        `json:"containerId"`
	ContainerNumber string        `json:"containerNumber"`
	ContainerSize   ContainerSize `json:"containerSize"`

	From LocationRef `json:"from"`
	To   LocationRef `json:"to"`

	// Priority ranges 1-10; urgent orders always dispatch before
	// non-urgent ones regardless of priority.
	Priority int  `json:"priority"`
	Urgent   bool `json:"urgent"`

	EquipmentID string `json:"equipmentId,omitempty"`
	OperatorID  string `json:"operatorId,omitempty"`

	Status  WorkOrderStatus       `json:"status"`
	History []WorkOrderTransition `json:"history"`

	Instructions    string `json:"instructions,omitempty"`
	CompletionNotes string `json:"completionNotes,omitempty"`
	FailureReason   string `json:"failureReason,omitempty"`

	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	// ActualDuration is set on completion when StartedAt is known.
	ActualDuration time.Duration `json:"actualDuration,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the work order.
func (w *WorkOrder) Clone() WorkOrder {
	out := *w
	out.History = append([]WorkOrderTransition(nil), w.History...)
	out.AssignedAt = cloneTime(w.AssignedAt)
	out.StartedAt = cloneTime(w.StartedAt)
	out.CompletedAt = cloneTime(w.CompletedAt)
	out.CancelledAt = cloneTime(w.CancelledAt)
	if w.From.Slot != nil {
		s := *w.From.Slot
		out.From.Slot = &s
	}
	if w.To.Slot != nil {
		s := *w.To.Slot
		out.To.Slot = &s
	}
	return out
}
