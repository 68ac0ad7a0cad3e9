package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderPriority implies an SLA window (§3).
type WorkOrderPriority string

const (
	PriorityLow      WorkOrderPriority = "low"
	PriorityMedium   WorkOrderPriority = "medium"
	PriorityHigh     WorkOrderPriority = "high"
	PriorityCritical WorkOrderPriority = "critical"
)

// SLAHours returns the implied SLA window for a priority; unrecognized
// priorities default to the Medium SLA.
func (p WorkOrderPriority) SLAHours() int {
	switch p {
	case PriorityLow:
		return 72
	case PriorityMedium:
		return 24
	case PriorityHigh:
		return 8
	case PriorityCritical:
		return 4
	default:
		return 24
	}
}

// WorkOrderStatus is the work-order FSM's state (§4.2).
type WorkOrderStatus string

const (
	WOStatusPending    WorkOrderStatus = "pending"
	WOStatusApproved   WorkOrderStatus = "approved"
	WOStatusAssigned   WorkOrderStatus = "assigned"
	WOStatusInProgress WorkOrderStatus = "in_progress"
	WOStatusOnHold     WorkOrderStatus = "on_hold"
	WOStatusCompleted  WorkOrderStatus = "completed"
	WOStatusCancelled  WorkOrderStatus = "cancelled"
)

// WorkOrder is a unit of corrective or scheduled maintenance work.
type WorkOrder struct {
	ID                  ID
	WONumber            string
	AssetID             ID
	Type                string
	Priority            WorkOrderPriority
	Status              WorkOrderStatus
	AssignedTechnician  *ID
	ScheduledDate       *time.Time
	DueDate             *time.Time
	ActualStart         *time.Time
	ActualEnd           *time.Time
	EstimatedCost       decimal.Decimal
	ActualCost          decimal.Decimal
	EstimatedHours      decimal.Decimal
	ActualHours         decimal.Decimal
	PartsCost           decimal.Decimal
	LaborCost           decimal.Decimal
	Problem             string
	WorkPerformed       string
	SafetyRequirements  string
	LockoutRequired     bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsOverdue implements §4.2: due_date < today and not in a terminal state.
func (w WorkOrder) IsOverdue(today time.Time) bool {
	if w.DueDate == nil {
		return false
	}
	if w.Status == WOStatusCompleted || w.Status == WOStatusCancelled {
		return false
	}
	return truncateToDate(*w.DueDate).Before(truncateToDate(today))
}

// TotalCost is labor_cost + parts_cost, the invariant from §4.2.
func (w WorkOrder) TotalCost() decimal.Decimal {
	return w.LaborCost.Add(w.PartsCost)
}

// ChecklistItem is a single inspection/step line on a work order.
type ChecklistItem struct {
	ID          ID
	WorkOrderID ID
	Description string
	Completed   bool
	CompletedAt *time.Time
}

// WorkOrderPart is a part consumed by a work order; PartsCost on the
// parent WorkOrder must equal Σ(Quantity × UnitCost) over its parts.
type WorkOrderPart struct {
	ID          ID
	WorkOrderID ID
	PartName    string
	Quantity    int
	UnitCost    decimal.Decimal
}

// LineCost is Quantity × UnitCost for one part line.
func (p WorkOrderPart) LineCost() decimal.Decimal {
	return decimal.NewFromInt(int64(p.Quantity)).Mul(p.UnitCost)
}

// MaintenanceRecord is a preventive-maintenance calendar entry distinct
// from a WorkOrder (SPEC_FULL §1 expansion): the scheduler turns due
// records into notifications, not directly into state transitions.
type MaintenanceRecord struct {
	ID                 ID
	AssetID            ID
	ScheduledDate      time.Time
	Type               string
	AssignedTechnician *ID
	Status             MaintenanceRecordStatus
	Notes              string
}

// MaintenanceRecordStatus is the preventive-maintenance record's state.
type MaintenanceRecordStatus string

const (
	MaintenanceScheduled MaintenanceRecordStatus = "scheduled"
	MaintenanceCompleted MaintenanceRecordStatus = "completed"
	MaintenanceCancelled MaintenanceRecordStatus = "cancelled"
)
