package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalStatus is the external-rental workflow FSM's state (§4.2).
type RentalStatus string

const (
	RentalRequested RentalStatus = "requested"
	RentalApproved  RentalStatus = "approved"
	RentalRejected  RentalStatus = "rejected"
	RentalRentedOut RentalStatus = "rented_out"
	RentalReturned  RentalStatus = "returned"
	RentalOverdue   RentalStatus = "overdue"
	RentalCancelled RentalStatus = "cancelled"
)

// OverduePenaltyRate is the per-overdue-day penalty multiplier applied to
// the daily rate (§4.2: "penalty per overdue day = daily_rate × 0.10").
var OverduePenaltyRate = decimal.NewFromFloat(0.10)

// Rental is an external rental of an asset to a client.
type Rental struct {
	ID             ID
	RentalNumber   string
	AssetID        ID
	ClientID       ID
	RateID         *ID
	Status         RentalStatus
	RequestDate    time.Time
	StartDate      *time.Time
	ExpectedEnd    *time.Time
	ActualEnd      *time.Time
	DailyRate      decimal.Decimal
	TotalDays      int
	Subtotal       decimal.Decimal
	Deposit        decimal.Decimal
	Penalty        decimal.Decimal
	Total          decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOverdue mirrors the loan sweep rule: RentedOut, no actual_end yet, and
// past expected_end.
func (r Rental) IsOverdue(today time.Time) bool {
	if r.Status != RentalRentedOut || r.ActualEnd != nil || r.ExpectedEnd == nil {
		return false
	}
	return today.After(truncateToDate(*r.ExpectedEnd))
}

// HandoverKind distinguishes the two handover events of a rental.
type HandoverKind string

const (
	HandoverDispatch HandoverKind = "dispatch"
	HandoverReturn   HandoverKind = "return"
)

// RentalHandover documents a dispatch or return event.
type RentalHandover struct {
	ID              ID
	RentalID        ID
	Kind            HandoverKind
	ConditionRating string
	Photos          []string
	HasDamage       bool
	RecordedByID    ID
	Signature       string
	CreatedAt       time.Time
}
