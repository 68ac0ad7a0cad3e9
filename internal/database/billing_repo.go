package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type BillingRepo struct {
	db *sqlx.DB
}

func NewBillingRepo(db *sqlx.DB) *BillingRepo { return &BillingRepo{db: db} }

type billingPeriodRow struct {
	ID               string          `db:"id"`
	RentalID         string          `db:"rental_id"`
	PeriodStart      time.Time       `db:"period_start"`
	PeriodEnd        time.Time       `db:"period_end"`
	OperatingHours   decimal.Decimal `db:"operating_hours"`
	StandbyHours     decimal.Decimal `db:"standby_hours"`
	OvertimeHours    decimal.Decimal `db:"overtime_hours"`
	BreakdownHours   decimal.Decimal `db:"breakdown_hours"`
	RateHourly       decimal.Decimal `db:"rate_hourly"`
	RateMinimumHrs   decimal.Decimal `db:"rate_minimum_hrs"`
	RateOTMult       decimal.Decimal `db:"rate_ot_mult"`
	RateStandbyMult  decimal.Decimal `db:"rate_standby_mult"`
	RateBreakdownPD  decimal.Decimal `db:"rate_breakdown_pd"`
	RateTaxPct       decimal.Decimal `db:"rate_tax_pct"`
	RateDiscountPct  decimal.Decimal `db:"rate_discount_pct"`
	ComputedBillable decimal.Decimal `db:"computed_billable"`
	ComputedShortfall decimal.Decimal `db:"computed_shortfall"`
	ComputedBase     decimal.Decimal `db:"computed_base"`
	ComputedStandby  decimal.Decimal `db:"computed_standby"`
	ComputedOvertime decimal.Decimal `db:"computed_overtime"`
	ComputedBreakdown decimal.Decimal `db:"computed_breakdown"`
	ComputedMobilization decimal.Decimal `db:"computed_mobilization"`
	ComputedDemobilization decimal.Decimal `db:"computed_demobilization"`
	ComputedOther    decimal.Decimal `db:"computed_other"`
	ComputedSubtotal decimal.Decimal `db:"computed_subtotal"`
	ComputedDiscount decimal.Decimal `db:"computed_discount"`
	ComputedTax      decimal.Decimal `db:"computed_tax"`
	ComputedTotal    decimal.Decimal `db:"computed_total"`
	Status           string          `db:"status"`
	InvoiceNumber    string          `db:"invoice_number"`
	DueDate          sql.NullTime    `db:"due_date"`
	ApproverID       sql.NullString  `db:"approver_id"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r billingPeriodRow) toDomain() (*domain.RentalBillingPeriod, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	rentalID, err := domain.ParseID(r.RentalID)
	if err != nil {
		return nil, err
	}
	p := &domain.RentalBillingPeriod{
		ID:             id,
		RentalID:       rentalID,
		PeriodStart:    r.PeriodStart,
		PeriodEnd:      r.PeriodEnd,
		OperatingHours: r.OperatingHours,
		StandbyHours:   r.StandbyHours,
		OvertimeHours:  r.OvertimeHours,
		BreakdownHours: r.BreakdownHours,
		Rate: domain.RateSnapshot{
			HourlyRate:             r.RateHourly,
			MinimumHours:           r.RateMinimumHrs,
			OvertimeMultiplier:     r.RateOTMult,
			StandbyMultiplier:      r.RateStandbyMult,
			BreakdownPenaltyPerDay: r.RateBreakdownPD,
			TaxPercentage:          r.RateTaxPct,
			DiscountPercentage:     r.RateDiscountPct,
		},
		Computed: domain.BillingComputed{
			Billable:         r.ComputedBillable,
			Shortfall:        r.ComputedShortfall,
			Base:             r.ComputedBase,
			Standby:          r.ComputedStandby,
			Overtime:         r.ComputedOvertime,
			BreakdownPenalty: r.ComputedBreakdown,
			Mobilization:     r.ComputedMobilization,
			Demobilization:   r.ComputedDemobilization,
			Other:            r.ComputedOther,
			Subtotal:         r.ComputedSubtotal,
			Discount:         r.ComputedDiscount,
			Tax:              r.ComputedTax,
			Total:            r.ComputedTotal,
		},
		Status:        domain.BillingPeriodStatus(r.Status),
		InvoiceNumber: r.InvoiceNumber,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.DueDate.Valid {
		t := r.DueDate.Time
		p.DueDate = &t
	}
	if r.ApproverID.Valid {
		aid, err := domain.ParseID(r.ApproverID.String)
		if err != nil {
			return nil, err
		}
		p.ApproverID = &aid
	}
	return p, nil
}

func (r *BillingRepo) GetBillingPeriod(ctx context.Context, id domain.ID) (*domain.RentalBillingPeriod, error) {
	var row billingPeriodRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM rental_billing_periods WHERE id = $1`, id); err != nil {
		return nil, translate("get_billing_period", "rental_billing_period", err)
	}
	return row.toDomain()
}

func (r *BillingRepo) UpdateBillingPeriod(ctx context.Context, p *domain.RentalBillingPeriod) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rental_billing_periods (id, rental_id, period_start, period_end, operating_hours, standby_hours,
			overtime_hours, breakdown_hours, rate_hourly, rate_minimum_hrs, rate_ot_mult, rate_standby_mult,
			rate_breakdown_pd, rate_tax_pct, rate_discount_pct, computed_billable, computed_shortfall,
			computed_base, computed_standby, computed_overtime, computed_breakdown, computed_mobilization,
			computed_demobilization, computed_other, computed_subtotal, computed_discount, computed_tax,
			computed_total, status, invoice_number, due_date, approver_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,
			$26,$27,$28,$29,$30,$31,$32,$33,$34)
		ON CONFLICT (id) DO UPDATE SET
			operating_hours = EXCLUDED.operating_hours, standby_hours = EXCLUDED.standby_hours,
			overtime_hours = EXCLUDED.overtime_hours, breakdown_hours = EXCLUDED.breakdown_hours,
			rate_hourly = EXCLUDED.rate_hourly, rate_minimum_hrs = EXCLUDED.rate_minimum_hrs,
			rate_ot_mult = EXCLUDED.rate_ot_mult, rate_standby_mult = EXCLUDED.rate_standby_mult,
			rate_breakdown_pd = EXCLUDED.rate_breakdown_pd, rate_tax_pct = EXCLUDED.rate_tax_pct,
			rate_discount_pct = EXCLUDED.rate_discount_pct, computed_billable = EXCLUDED.computed_billable,
			computed_shortfall = EXCLUDED.computed_shortfall, computed_base = EXCLUDED.computed_base,
			computed_standby = EXCLUDED.computed_standby, computed_overtime = EXCLUDED.computed_overtime,
			computed_breakdown = EXCLUDED.computed_breakdown, computed_mobilization = EXCLUDED.computed_mobilization,
			computed_demobilization = EXCLUDED.computed_demobilization, computed_other = EXCLUDED.computed_other,
			computed_subtotal = EXCLUDED.computed_subtotal, computed_discount = EXCLUDED.computed_discount,
			computed_tax = EXCLUDED.computed_tax, computed_total = EXCLUDED.computed_total,
			status = EXCLUDED.status, invoice_number = EXCLUDED.invoice_number, due_date = EXCLUDED.due_date,
			approver_id = EXCLUDED.approver_id, updated_at = EXCLUDED.updated_at
	`, p.ID, p.RentalID, p.PeriodStart, p.PeriodEnd, p.OperatingHours, p.StandbyHours, p.OvertimeHours,
		p.BreakdownHours, p.Rate.HourlyRate, p.Rate.MinimumHours, p.Rate.OvertimeMultiplier, p.Rate.StandbyMultiplier,
		p.Rate.BreakdownPenaltyPerDay, p.Rate.TaxPercentage, p.Rate.DiscountPercentage, p.Computed.Billable,
		p.Computed.Shortfall, p.Computed.Base, p.Computed.Standby, p.Computed.Overtime, p.Computed.BreakdownPenalty,
		p.Computed.Mobilization, p.Computed.Demobilization, p.Computed.Other, p.Computed.Subtotal,
		p.Computed.Discount, p.Computed.Tax, p.Computed.Total, p.Status, p.InvoiceNumber, p.DueDate, p.ApproverID,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return translate("update_billing_period", "rental_billing_period", err)
	}
	return nil
}

// SumApprovedTimesheets implements billing.BillingPeriodRepository: it
// aggregates only Approved timesheets within [start,end] for the rental.
func (r *BillingRepo) SumApprovedTimesheets(ctx context.Context, rentalID domain.ID, start, end time.Time) (operating, standby, overtime, breakdown decimal.Decimal, err error) {
	var row struct {
		Operating decimal.Decimal `db:"operating"`
		Standby   decimal.Decimal `db:"standby"`
		Overtime  decimal.Decimal `db:"overtime"`
		Breakdown decimal.Decimal `db:"breakdown"`
	}
	queryErr := r.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(operating_hours), 0) AS operating, COALESCE(SUM(standby_hours), 0) AS standby,
			COALESCE(SUM(overtime_hours), 0) AS overtime, COALESCE(SUM(breakdown_hours), 0) AS breakdown
		FROM rental_timesheets
		WHERE rental_id = $1 AND status = $2 AND work_date >= $3 AND work_date <= $4
	`, rentalID, domain.TimesheetApproved, start, end)
	if queryErr != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, apierrors.Database("sum_approved_timesheets", queryErr)
	}
	return row.Operating, row.Standby, row.Overtime, row.Breakdown, nil
}

// CurrentRate implements billing.RentalRateLookup, reading the rate frozen
// onto the rental's most recent billing period, or the rental's own
// daily_rate as a default snapshot when no period exists yet.
func (r *BillingRepo) CurrentRate(ctx context.Context, rentalID domain.ID) (domain.RateSnapshot, error) {
	var row struct {
		RateHourly      decimal.Decimal `db:"rate_hourly"`
		RateMinimumHrs  decimal.Decimal `db:"rate_minimum_hrs"`
		RateOTMult      decimal.Decimal `db:"rate_ot_mult"`
		RateStandbyMult decimal.Decimal `db:"rate_standby_mult"`
		RateBreakdownPD decimal.Decimal `db:"rate_breakdown_pd"`
		RateTaxPct      decimal.Decimal `db:"rate_tax_pct"`
		RateDiscountPct decimal.Decimal `db:"rate_discount_pct"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT rate_hourly, rate_minimum_hrs, rate_ot_mult, rate_standby_mult, rate_breakdown_pd, rate_tax_pct,
			rate_discount_pct
		FROM rental_billing_periods WHERE rental_id = $1 ORDER BY period_end DESC LIMIT 1
	`, rentalID)
	if err == nil {
		return domain.RateSnapshot{
			HourlyRate:             row.RateHourly,
			MinimumHours:           row.RateMinimumHrs,
			OvertimeMultiplier:     row.RateOTMult,
			StandbyMultiplier:      row.RateStandbyMult,
			BreakdownPenaltyPerDay: row.RateBreakdownPD,
			TaxPercentage:          row.RateTaxPct,
			DiscountPercentage:     row.RateDiscountPct,
		}, nil
	}
	if err != sql.ErrNoRows {
		return domain.RateSnapshot{}, apierrors.Database("current_rate", err)
	}
	var dailyRate decimal.Decimal
	if err := r.db.GetContext(ctx, &dailyRate, `SELECT daily_rate FROM rentals WHERE id = $1`, rentalID); err != nil {
		return domain.RateSnapshot{}, translate("current_rate_fallback", "rental", err)
	}
	return domain.DefaultRateSnapshot(dailyRate), nil
}
