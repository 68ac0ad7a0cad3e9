package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// BillingPeriodRepository is the persistence seam for RentalBillingPeriod.
type BillingPeriodRepository interface {
	GetBillingPeriod(ctx context.Context, id domain.ID) (*domain.RentalBillingPeriod, error)
	UpdateBillingPeriod(ctx context.Context, period *domain.RentalBillingPeriod) error
	// SumApprovedTimesheets aggregates operating/standby/overtime/breakdown
	// hours over Approved timesheets intersecting [start,end] for a rental,
	// per §4.3's "only Approved timesheets" rule.
	SumApprovedTimesheets(ctx context.Context, rentalID domain.ID, start, end time.Time) (operating, standby, overtime, breakdown decimal.Decimal, err error)
}

// RentalRateLookup resolves the rate snapshot to freeze onto a billing
// period at calculation time.
type RentalRateLookup interface {
	CurrentRate(ctx context.Context, rentalID domain.ID) (domain.RateSnapshot, error)
}

const invoiceDueDaysDefault = 30

// BillingPeriodService implements the billing-period transitions of §4.3
// that have an operation here: calculation from Draft or Calculated,
// Calculated→Approved, and Approved→Invoiced. It has no operation that
// enters PendingApproval, Paid, or Disputed.
type BillingPeriodService struct {
	repo        BillingPeriodRepository
	rates       RentalRateLookup
	dueDays     int
}

func NewBillingPeriodService(repo BillingPeriodRepository, rates RentalRateLookup, invoiceDueDays int) *BillingPeriodService {
	if invoiceDueDays <= 0 {
		invoiceDueDays = invoiceDueDaysDefault
	}
	return &BillingPeriodService{repo: repo, rates: rates, dueDays: invoiceDueDays}
}

// Calculate is allowed from {Draft, Calculated} (recalculation is
// idempotent): it sums approved timesheets in range, freezes the rate
// snapshot, runs the formula, and stores every intermediate.
func (s *BillingPeriodService) Calculate(ctx context.Context, id domain.ID, mobilization, demobilization, other decimal.Decimal) (*domain.RentalBillingPeriod, error) {
	period, err := s.repo.GetBillingPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.BillingDraft && period.Status != domain.BillingCalculated {
		return nil, apierrors.InvalidStateTransition(string(period.Status), string(domain.BillingCalculated))
	}

	operating, standby, overtime, breakdown, err := s.repo.SumApprovedTimesheets(ctx, period.RentalID, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return nil, apierrors.Database("sum_approved_timesheets", err)
	}

	rate, err := s.rates.CurrentRate(ctx, period.RentalID)
	if err != nil {
		return nil, apierrors.Internal("resolve rate snapshot", err)
	}

	computed := Calculate(Inputs{
		OperatingHours: operating,
		StandbyHours:   standby,
		OvertimeHours:  overtime,
		BreakdownHours: breakdown,
		Mobilization:   mobilization,
		Demobilization: demobilization,
		Other:          other,
		Rate:           rate,
	})

	period.OperatingHours = operating
	period.StandbyHours = standby
	period.OvertimeHours = overtime
	period.BreakdownHours = breakdown
	period.Rate = rate
	period.Computed = computed
	period.Status = domain.BillingCalculated

	if err := s.repo.UpdateBillingPeriod(ctx, period); err != nil {
		return nil, apierrors.Database("update_billing_period", err)
	}
	return period, nil
}

// Approve is allowed only from Calculated (§4.3).
func (s *BillingPeriodService) Approve(ctx context.Context, id domain.ID, approverID domain.ID) (*domain.RentalBillingPeriod, error) {
	period, err := s.repo.GetBillingPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.BillingCalculated {
		return nil, apierrors.InvalidStateTransition(string(period.Status), string(domain.BillingApproved))
	}
	period.Status = domain.BillingApproved
	period.ApproverID = &approverID
	if err := s.repo.UpdateBillingPeriod(ctx, period); err != nil {
		return nil, apierrors.Database("approve_billing_period", err)
	}
	return period, nil
}

// Invoice is allowed only from Approved; it mints INV-YYYYMMDDHHMMSS and
// sets due_date = today + N days (§4.3).
func (s *BillingPeriodService) Invoice(ctx context.Context, id domain.ID, now time.Time) (*domain.RentalBillingPeriod, error) {
	period, err := s.repo.GetBillingPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.BillingApproved {
		return nil, apierrors.InvalidStateTransition(string(period.Status), string(domain.BillingInvoiced))
	}
	period.InvoiceNumber = fmt.Sprintf("INV-%s", now.UTC().Format("20060102150405"))
	due := now.UTC().AddDate(0, 0, s.dueDays)
	period.DueDate = &due
	period.Status = domain.BillingInvoiced
	if err := s.repo.UpdateBillingPeriod(ctx, period); err != nil {
		return nil, apierrors.Database("invoice_billing_period", err)
	}
	return period, nil
}
