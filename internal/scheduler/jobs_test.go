package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
	"github.com/assetledger/backend/internal/workflow"
)

type schedulerFakeAssets struct {
	assets map[domain.ID]*domain.Asset
}

func (f *schedulerFakeAssets) GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return nil, apierrors.NotFound("asset", id.String())
	}
	return a, nil
}

func (f *schedulerFakeAssets) TransitionAsset(ctx context.Context, id domain.ID, to domain.AssetState, reason string, actorID domain.ID, metadata map[string]any) (*domain.Asset, error) {
	f.assets[id].Status = to
	return f.assets[id], nil
}

type schedulerFakeLoans struct {
	loans map[domain.ID]*domain.Loan
}

func (f *schedulerFakeLoans) GetLoan(ctx context.Context, id domain.ID) (*domain.Loan, error) {
	return f.loans[id], nil
}
func (f *schedulerFakeLoans) CreateLoan(ctx context.Context, loan *domain.Loan) error { return nil }
func (f *schedulerFakeLoans) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}

type schedulerFakeNotifier struct{ calls int }

func (f *schedulerFakeNotifier) Notify(ctx context.Context, userID domain.ID, title, message, entityType string, entityID domain.ID) {
	f.calls++
}

type fakeLoanLister struct{ loans []*domain.Loan }

func (f *fakeLoanLister) ListOpenLoans(ctx context.Context) ([]*domain.Loan, error) {
	return f.loans, nil
}

func TestOverdueLoansJob_SweepsListedLoans(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetDeployed}
	assets := &schedulerFakeAssets{assets: map[domain.ID]*domain.Asset{asset.ID: asset}}
	machine := lifecycle.NewMachine(assets)
	notifier := &schedulerFakeNotifier{}
	loanRepo := &schedulerFakeLoans{loans: map[domain.ID]*domain.Loan{}}
	svc := workflow.NewLoanService(loanRepo, assets, machine, notifier)

	loan := &domain.Loan{
		ID:             domain.NewID(),
		AssetID:        asset.ID,
		Status:         domain.LoanCheckedOut,
		ExpectedReturn: time.Now().UTC().AddDate(0, 0, -2),
	}
	lister := &fakeLoanLister{loans: []*domain.Loan{loan}}

	job := OverdueLoansJob(lister, svc)
	affected, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.Equal(t, domain.LoanOverdue, loan.Status)
	assert.Equal(t, 1, notifier.calls)
}

type fakeMaintenanceRepo struct {
	records   []*domain.MaintenanceRecord
	notified  map[string]bool
}

func newFakeMaintenanceRepo(records ...*domain.MaintenanceRecord) *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{records: records, notified: map[string]bool{}}
}

func key(id domain.ID, date time.Time) string {
	return id.String() + "|" + date.Format("2006-01-02")
}

func (f *fakeMaintenanceRepo) DueMaintenanceRecords(ctx context.Context, asOf time.Time, horizonDays []int) ([]*domain.MaintenanceRecord, error) {
	return f.records, nil
}

func (f *fakeMaintenanceRepo) WasNotified(ctx context.Context, recordID domain.ID, date time.Time) (bool, error) {
	return f.notified[key(recordID, date)], nil
}

func (f *fakeMaintenanceRepo) MarkNotified(ctx context.Context, recordID domain.ID, date time.Time) error {
	f.notified[key(recordID, date)] = true
	return nil
}

type fakeMaintenanceNotifier struct {
	calls int
}

func (f *fakeMaintenanceNotifier) Notify(ctx context.Context, userID domain.ID, title, message, entityType string, entityID domain.ID) {
	f.calls++
}

func TestUpcomingMaintenanceJob_NotifiesOncePerRecordPerDay(t *testing.T) {
	tech := domain.NewID()
	record := &domain.MaintenanceRecord{
		ID:                 domain.NewID(),
		ScheduledDate:      time.Now().UTC().Truncate(24 * time.Hour),
		Type:               "oil_change",
		AssignedTechnician: &tech,
		Status:             domain.MaintenanceScheduled,
	}
	repo := newFakeMaintenanceRepo(record)
	notifier := &fakeMaintenanceNotifier{}
	job := UpcomingMaintenanceJob(repo, notifier)

	affected, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.Equal(t, 1, notifier.calls)

	// Re-running the same tick must not double-notify for the same day.
	affected, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
	assert.Equal(t, 1, notifier.calls)
}

func TestUpcomingMaintenanceJob_SkipsRecordsWithoutTechnician(t *testing.T) {
	record := &domain.MaintenanceRecord{
		ID:            domain.NewID(),
		ScheduledDate: time.Now().UTC(),
		Status:        domain.MaintenanceScheduled,
	}
	repo := newFakeMaintenanceRepo(record)
	notifier := &fakeMaintenanceNotifier{}
	job := UpcomingMaintenanceJob(repo, notifier)

	affected, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestUpcomingMaintenanceJob_SkipsNonScheduledRecords(t *testing.T) {
	tech := domain.NewID()
	record := &domain.MaintenanceRecord{
		ID:                 domain.NewID(),
		ScheduledDate:      time.Now().UTC(),
		AssignedTechnician: &tech,
		Status:             domain.MaintenanceCompleted,
	}
	repo := newFakeMaintenanceRepo(record)
	notifier := &fakeMaintenanceNotifier{}
	job := UpcomingMaintenanceJob(repo, notifier)

	affected, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}
