package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimesheetStatus is the 3-stage approval FSM's state (§4.3).
type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "draft"
	TimesheetSubmitted TimesheetStatus = "submitted"
	TimesheetVerified  TimesheetStatus = "verified"
	TimesheetApproved  TimesheetStatus = "approved"
	TimesheetRejected  TimesheetStatus = "rejected"
	TimesheetRevision  TimesheetStatus = "revision"
)

// StandardWorkDayHours is the threshold past which operating hours count
// as overtime (§4.3, §8).
const StandardWorkDayHours = 8.0

// RentalTimesheet records one day of operation against a rental.
type RentalTimesheet struct {
	ID              ID
	RentalID        ID
	WorkDate        time.Time
	OperatingHours  decimal.Decimal
	StandbyHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	BreakdownHours  decimal.Decimal
	HMKMStart       *decimal.Decimal
	HMKMEnd         *decimal.Decimal
	HMKMUsage       *decimal.Decimal
	OperationStatus string
	Status          TimesheetStatus
	CheckerID       ID
	VerifierID      *ID
	ClientPICID     *ID
	Notes           string
	Photos          []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeDerived fills OvertimeHours and HMKMUsage from the raw inputs per
// §4.3: overtime = max(operating - 8, 0); usage = end - start when both
// are present. Called on create and on any Draft-stage edit.
func (t *RentalTimesheet) ComputeDerived() {
	standard := decimal.NewFromFloat(StandardWorkDayHours)
	overtime := t.OperatingHours.Sub(standard)
	if overtime.IsNegative() {
		overtime = decimal.Zero
	}
	t.OvertimeHours = overtime

	if t.HMKMStart != nil && t.HMKMEnd != nil {
		usage := t.HMKMEnd.Sub(*t.HMKMStart)
		t.HMKMUsage = &usage
	} else {
		t.HMKMUsage = nil
	}
}

// BillingPeriodStatus is the billing FSM's state (§4.3).
type BillingPeriodStatus string

const (
	BillingDraft           BillingPeriodStatus = "draft"
	BillingCalculated      BillingPeriodStatus = "calculated"
	BillingPendingApproval BillingPeriodStatus = "pending_approval"
	BillingApproved        BillingPeriodStatus = "approved"
	BillingInvoiced        BillingPeriodStatus = "invoiced"
	BillingPaid            BillingPeriodStatus = "paid"
	BillingDisputed        BillingPeriodStatus = "disputed"
)

// RateSnapshot is the rate model frozen onto a billing period at
// calculation time; later rate changes never retroactively alter it.
type RateSnapshot struct {
	HourlyRate              decimal.Decimal
	MinimumHours            decimal.Decimal
	OvertimeMultiplier      decimal.Decimal
	StandbyMultiplier       decimal.Decimal
	BreakdownPenaltyPerDay  decimal.Decimal
	TaxPercentage           decimal.Decimal
	DiscountPercentage      decimal.Decimal
}

// DefaultRateSnapshot returns the §4.3 defaults: MIN=200, mOT=1.25,
// mSB=0.50, tax%=11, discount%=0, breakdown penalty=0.
func DefaultRateSnapshot(hourlyRate decimal.Decimal) RateSnapshot {
	return RateSnapshot{
		HourlyRate:             hourlyRate,
		MinimumHours:           decimal.NewFromInt(200),
		OvertimeMultiplier:     decimal.NewFromFloat(1.25),
		StandbyMultiplier:      decimal.NewFromFloat(0.50),
		BreakdownPenaltyPerDay: decimal.Zero,
		TaxPercentage:          decimal.NewFromInt(11),
		DiscountPercentage:     decimal.Zero,
	}
}

// BillingComputed holds every derived field from the §4.3 formula, in the
// exact order they are computed so the calculator can populate them
// one-for-one.
type BillingComputed struct {
	Billable        decimal.Decimal
	Shortfall       decimal.Decimal
	Base            decimal.Decimal
	Standby         decimal.Decimal
	Overtime        decimal.Decimal
	BreakdownPenalty decimal.Decimal
	Mobilization    decimal.Decimal
	Demobilization  decimal.Decimal
	Other           decimal.Decimal
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
}

// RentalBillingPeriod is an invoiceable aggregation window over a rental's
// approved timesheets.
type RentalBillingPeriod struct {
	ID               ID
	RentalID         ID
	PeriodStart      time.Time
	PeriodEnd        time.Time
	OperatingHours   decimal.Decimal
	StandbyHours     decimal.Decimal
	OvertimeHours    decimal.Decimal
	BreakdownHours   decimal.Decimal
	Rate             RateSnapshot
	Computed         BillingComputed
	Status           BillingPeriodStatus
	InvoiceNumber    string
	DueDate          *time.Time
	ApproverID       *ID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
