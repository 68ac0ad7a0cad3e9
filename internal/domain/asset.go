package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetState is the sum type driving the lifecycle FSM (C4). Each member
// carries display metadata alongside the bare tag so presentation layers
// never have to hardcode a parallel lookup table.
type AssetState string

const (
	AssetPlanning         AssetState = "planning"
	AssetProcurement      AssetState = "procurement"
	AssetReceived         AssetState = "received"
	AssetInInventory      AssetState = "in_inventory"
	AssetDeployed         AssetState = "deployed"
	AssetUnderMaintenance AssetState = "under_maintenance"
	AssetUnderRepair      AssetState = "under_repair"
	AssetUnderConversion  AssetState = "under_conversion"
	AssetRetired          AssetState = "retired"
	AssetDisposed         AssetState = "disposed"
	AssetLostStolen       AssetState = "lost_stolen"
	AssetArchived         AssetState = "archived"
)

// AssetStateMeta describes the presentation and classification metadata
// that rides along with every AssetState value.
type AssetStateMeta struct {
	State       AssetState
	DisplayName string
	ColorTag    string
	IsTerminal  bool
	IsActive    bool
}

// assetStateMetadata is the authoritative table of AssetState metadata.
// Keep in lockstep with the transition graph in internal/lifecycle.
var assetStateMetadata = map[AssetState]AssetStateMeta{
	AssetPlanning:         {AssetPlanning, "Planning", "slate", false, false},
	AssetProcurement:      {AssetProcurement, "Procurement", "amber", false, false},
	AssetReceived:         {AssetReceived, "Received", "amber", false, false},
	AssetInInventory:      {AssetInInventory, "In Inventory", "blue", false, true},
	AssetDeployed:         {AssetDeployed, "Deployed", "green", false, true},
	AssetUnderMaintenance: {AssetUnderMaintenance, "Under Maintenance", "yellow", false, true},
	AssetUnderRepair:      {AssetUnderRepair, "Under Repair", "orange", false, true},
	AssetUnderConversion:  {AssetUnderConversion, "Under Conversion", "purple", false, true},
	AssetRetired:          {AssetRetired, "Retired", "gray", false, false},
	AssetDisposed:         {AssetDisposed, "Disposed", "dark-gray", true, false},
	AssetLostStolen:       {AssetLostStolen, "Lost/Stolen", "red", false, false},
	AssetArchived:         {AssetArchived, "Archived", "black", true, false},
}

// Meta returns the presentation/classification metadata for a state. The
// zero value is returned (with IsTerminal/IsActive both false) for an
// unknown tag; callers that must reject unknown states should check
// ValidAssetState first.
func (s AssetState) Meta() AssetStateMeta {
	return assetStateMetadata[s]
}

// ValidAssetState reports whether s names a known AssetState.
func ValidAssetState(s AssetState) bool {
	_, ok := assetStateMetadata[s]
	return ok
}

// IsAvailable reports whether an asset in this state can be loaned or
// rented out (the Loan/Rental workflows' creation guard).
func (s AssetState) IsAvailable() bool {
	return s == AssetInInventory
}

// Asset is the unit of tracking: a physical or logical item moving through
// the lifecycle FSM. Status mutations must go through internal/lifecycle;
// nothing else may write Status directly.
type Asset struct {
	ID             ID
	OrganizationID string
	Code           string
	Name           string
	CategoryID     ID
	LocationID     ID
	DepartmentID   ID
	AssigneeID     *ID
	VendorID       *ID
	Status         AssetState
	Condition      string
	Serial         string
	Brand          string
	Model          string
	Year           int
	Specification  map[string]any
	PurchaseDate   *time.Time
	PurchasePrice  decimal.Decimal
	Currency       string
	Quantity       int
	ResidualValue  decimal.Decimal
	UsefulLifeMo   int
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LifecycleHistory is the append-only audit trail of AssetState mutations.
type LifecycleHistory struct {
	ID        ID
	AssetID   ID
	From      AssetState
	To        AssetState
	Reason    string
	ActorID   ID
	Metadata  map[string]any
	Timestamp time.Time
}

// Category is a (possibly hierarchical) asset classification.
type Category struct {
	ID                ID
	Code              string
	Name              string
	ParentID          *ID
	DepreciationMonths int
}

// Location, Department, Vendor, and Client are simple lookup entities
// referenced by id from Asset/Rental and never embedded.
type Location struct {
	ID       ID
	Code     string
	Name     string
	IsActive bool
}

type Department struct {
	ID       ID
	Code     string
	Name     string
	IsActive bool
}

type Vendor struct {
	ID       ID
	Name     string
	Contact  string
	IsActive bool
}

type Client struct {
	ID       ID
	Name     string
	Contact  string
	IsActive bool
}
