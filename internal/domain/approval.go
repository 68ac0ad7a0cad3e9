package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the generic two-level approval FSM's state (§4.2).
type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApprovedL1  ApprovalStatus = "approved_l1"
	ApprovalApprovedL2  ApprovalStatus = "approved_l2"
	ApprovalRejected    ApprovalStatus = "rejected"
)

// IsTerminal reports whether further approve/reject calls must fail with
// business_rule (§4.2, §8 "Approval monotonicity").
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApprovedL2 || s == ApprovalRejected
}

// ApprovalLevel is 1 or 2, the two gates of the generic approval flow.
type ApprovalLevel int

const (
	ApprovalLevelOne ApprovalLevel = 1
	ApprovalLevelTwo ApprovalLevel = 2
)

// ApprovalRequest is a generic two-level approval gate over any resource.
type ApprovalRequest struct {
	ID            ID
	ResourceType  string
	ResourceID    ID
	Action        string
	RequesterID   ID
	Status        ApprovalStatus
	CurrentLevel  ApprovalLevel
	L1ApproverID  *ID
	L1At          *time.Time
	L1Notes       string
	L2ApproverID  *ID
	L2At          *time.Time
	L2Notes       string
	Snapshot      map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RequiredRoleLevel returns the role level required to act at the
// request's current level: L1 needs Supervisor+, L2 needs Manager+,
// matching the Supervisor/Manager tiers named in the GLOSSARY.
func (r ApprovalRequest) RequiredRoleLevel() RoleLevel {
	if r.CurrentLevel == ApprovalLevelOne {
		return RoleLevelSupervisor
	}
	return RoleLevelManager
}

// Pendable is the common interface the generic approval merge (§9) uses to
// fold three different row families — approval_requests, pending work
// orders, and pending loans — into one list without a SQL UNION across
// incompatible snapshot shapes.
type Pendable interface {
	PendableID() ID
	PendableKind() string
	PendableCreatedAt() time.Time
	PendableRequesterID() ID
	PendableSnapshot() map[string]any
}

func (r ApprovalRequest) PendableID() ID                  { return r.ID }
func (r ApprovalRequest) PendableKind() string             { return "approval_request:" + r.ResourceType }
func (r ApprovalRequest) PendableCreatedAt() time.Time     { return r.CreatedAt }
func (r ApprovalRequest) PendableRequesterID() ID          { return r.RequesterID }
func (r ApprovalRequest) PendableSnapshot() map[string]any { return r.Snapshot }

// ConversionCostTreatment controls whether an executed conversion rolls
// its cost into the asset's purchase price (§4.2).
type ConversionCostTreatment string

const (
	ConversionExpense    ConversionCostTreatment = "expense"
	ConversionCapitalize ConversionCostTreatment = "capitalize"
)

// ConversionRequest is the request body backing a conversion workflow
// execution; it is carried as an ApprovalRequest snapshot (resource_type
// "asset_conversion") rather than its own table, per §9's guidance to
// favor the generic approval aggregate over bespoke mini-workflows.
type ConversionRequest struct {
	AssetID        ID
	NewCategoryID  ID
	Specification  map[string]any
	CostTreatment  ConversionCostTreatment
	ConversionCost decimal.Decimal
}
