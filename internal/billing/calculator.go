// Package billing implements the rental timesheet approval FSM and the
// deterministic billing calculation of SPEC_FULL §4.3.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/domain"
)

// Inputs bundles the aggregated hours and period-level extra charges the
// calculator needs on top of the frozen RateSnapshot.
type Inputs struct {
	OperatingHours decimal.Decimal
	StandbyHours   decimal.Decimal
	OvertimeHours  decimal.Decimal
	BreakdownHours decimal.Decimal
	Mobilization   decimal.Decimal
	Demobilization decimal.Decimal
	Other          decimal.Decimal
	Rate           domain.RateSnapshot
}

const hoursPerBreakdownDay = 8

// Calculate runs the §4.3 formula in its fixed order and returns every
// intermediate, so callers can persist the full breakdown rather than
// just the total.
//
//	billable  = max(operating_hours, minimum_hours)
//	shortfall = max(minimum_hours - operating_hours, 0)
//	base      = billable * hourly_rate
//	standby   = standby_hours * hourly_rate * standby_multiplier
//	overtime  = overtime_hours * hourly_rate * overtime_multiplier
//	breakdown_days   = breakdown_hours / 8
//	breakdown_amount = breakdown_days * breakdown_penalty_per_day
//	subtotal  = base + standby + overtime - breakdown_amount + mobilization + demobilization + other
//	discount  = subtotal * discount_percentage / 100
//	tax       = (subtotal - discount) * tax_percentage / 100
//	total     = subtotal - discount + tax
func Calculate(in Inputs) domain.BillingComputed {
	rate := in.Rate

	billable := decimal.Max(in.OperatingHours, rate.MinimumHours)
	shortfall := rate.MinimumHours.Sub(in.OperatingHours)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}

	base := billable.Mul(rate.HourlyRate)
	standby := in.StandbyHours.Mul(rate.HourlyRate).Mul(rate.StandbyMultiplier)
	overtime := in.OvertimeHours.Mul(rate.HourlyRate).Mul(rate.OvertimeMultiplier)

	breakdownDays := in.BreakdownHours.Div(decimal.NewFromInt(hoursPerBreakdownDay))
	breakdownAmount := breakdownDays.Mul(rate.BreakdownPenaltyPerDay)

	subtotal := base.Add(standby).Add(overtime).Sub(breakdownAmount).
		Add(in.Mobilization).Add(in.Demobilization).Add(in.Other)

	discount := subtotal.Mul(rate.DiscountPercentage).Div(decimal.NewFromInt(100))
	tax := subtotal.Sub(discount).Mul(rate.TaxPercentage).Div(decimal.NewFromInt(100))

	total := subtotal.Sub(discount).Add(tax)

	return domain.BillingComputed{
		Billable:         billable,
		Shortfall:        shortfall,
		Base:             base,
		Standby:          standby,
		Overtime:         overtime,
		BreakdownPenalty: breakdownAmount,
		Mobilization:     in.Mobilization,
		Demobilization:   in.Demobilization,
		Other:            in.Other,
		Subtotal:         subtotal,
		Discount:         discount,
		Tax:              tax,
		Total:            total,
	}
}
