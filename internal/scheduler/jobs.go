package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/workflow"
)

// LoanLister and RentalLister fetch the open records a sweep needs to
// re-evaluate; filtering to "not yet overdue" is the sweep's own job via
// Is Overdue, so these may return every non-terminal record.
type LoanLister interface {
	ListOpenLoans(ctx context.Context) ([]*domain.Loan, error)
}

type RentalLister interface {
	ListOpenRentals(ctx context.Context) ([]*domain.Rental, error)
}

// MaintenanceRepository is the persistence seam for the upcoming-maintenance
// sweep: it lists records due on one of the horizon days and records which
// (record_id, run date) pairs have already produced a notification, so a record
// due "in 3 days" and then "in 1 day" doesn't double-notify for the same day
// but does notify again as the horizon changes.
type MaintenanceRepository interface {
	DueMaintenanceRecords(ctx context.Context, asOf time.Time, horizonDays []int) ([]*domain.MaintenanceRecord, error)
	WasNotified(ctx context.Context, recordID domain.ID, date time.Time) (bool, error)
	MarkNotified(ctx context.Context, recordID domain.ID, date time.Time) error
}

// MaintenanceNotifier receives a due-maintenance notification; it is
// narrower than workflow.Notifier because the scheduler has no single
// "owning user" and instead addresses the asset's assigned technician.
type MaintenanceNotifier interface {
	Notify(ctx context.Context, userID domain.ID, title, message, entityType string, entityID domain.ID)
}

// upcomingMaintenanceHorizonDays mirrors §4.6: notifications fire at 7,
// 3, 1, and 0 days before the scheduled date.
var upcomingMaintenanceHorizonDays = []int{0, 1, 3, 7}

// OverdueLoansJob sweeps every open loan and marks the overdue ones,
// notifying the borrower once per sweep that finds a newly-overdue loan.
func OverdueLoansJob(loans LoanLister, svc *workflow.LoanService) Job {
	return Job{
		Name: "overdue_loans",
		Cron: "0 0 0 * * *",
		Run: func(ctx context.Context) (int, error) {
			open, err := loans.ListOpenLoans(ctx)
			if err != nil {
				return 0, err
			}
			return svc.SweepOverdue(ctx, time.Now().UTC(), open), nil
		},
	}
}

// OverdueRentalsJob performs the equivalent sweep for rentals. §4.6
// describes this as a periodic sweep rather than a single fixed time of
// day; the caller supplies the cron expression.
func OverdueRentalsJob(cronExpr string, rentals RentalLister, svc *workflow.RentalService) Job {
	return Job{
		Name: "overdue_rentals",
		Cron: cronExpr,
		Run: func(ctx context.Context) (int, error) {
			open, err := rentals.ListOpenRentals(ctx)
			if err != nil {
				return 0, err
			}
			return svc.SweepOverdue(ctx, time.Now().UTC(), open), nil
		},
	}
}

// UpcomingMaintenanceJob notifies the assigned technician once per
// (record, horizon-day) pair. Records without an assigned technician are
// skipped.
func UpcomingMaintenanceJob(repo MaintenanceRepository, notify MaintenanceNotifier) Job {
	return Job{
		Name: "upcoming_maintenance",
		Cron: "0 0 1 * * *",
		Run: func(ctx context.Context) (int, error) {
			now := time.Now().UTC()
			today := now.Truncate(24 * time.Hour)
			records, err := repo.DueMaintenanceRecords(ctx, now, upcomingMaintenanceHorizonDays)
			if err != nil {
				return 0, err
			}

			affected := 0
			for _, record := range records {
				if record.Status != domain.MaintenanceScheduled {
					continue
				}
				notified, err := repo.WasNotified(ctx, record.ID, today)
				if err != nil {
					return affected, err
				}
				if notified {
					continue
				}
				if record.AssignedTechnician == nil {
					continue
				}

				daysOut := int(record.ScheduledDate.Truncate(24*time.Hour).Sub(today).Hours() / 24)
				notify.Notify(ctx, *record.AssignedTechnician,
					"Maintenance Due",
					fmt.Sprintf("%s maintenance due in %d day(s)", record.Type, daysOut),
					"maintenance_record", record.ID)

				if err := repo.MarkNotified(ctx, record.ID, today); err != nil {
					return affected, err
				}
				affected++
			}
			return affected, nil
		},
	}
}
