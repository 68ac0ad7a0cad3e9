package billing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type fakeTimesheetRepo struct {
	ts *domain.RentalTimesheet
}

func (f *fakeTimesheetRepo) GetTimesheet(ctx context.Context, id domain.ID) (*domain.RentalTimesheet, error) {
	if f.ts == nil || f.ts.ID != id {
		return nil, apierrors.NotFound("timesheet", id.String())
	}
	return f.ts, nil
}

func (f *fakeTimesheetRepo) UpdateTimesheet(ctx context.Context, ts *domain.RentalTimesheet) error {
	f.ts = ts
	return nil
}

type fakeUserLevelLookup struct {
	canApprove bool
}

func (f *fakeUserLevelLookup) CanApproveTimesheet(ctx context.Context, userID domain.ID) (bool, error) {
	return f.canApprove, nil
}

func TestTimesheetService_FullHappyPath(t *testing.T) {
	checker := domain.NewID()
	verifier := domain.NewID()
	pic := domain.NewID()

	repo := &fakeTimesheetRepo{}
	svc := NewTimesheetService(repo, &fakeUserLevelLookup{canApprove: true})

	ts := &domain.RentalTimesheet{
		ID:             domain.NewID(),
		CheckerID:      checker,
		OperatingHours: decimal.NewFromInt(10),
	}
	created, err := svc.Create(context.Background(), ts)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetDraft, created.Status)
	assert.True(t, decimal.NewFromInt(2).Equal(created.OvertimeHours))

	submitted, err := svc.Submit(context.Background(), created.ID, checker)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetSubmitted, submitted.Status)

	verified, err := svc.Verify(context.Background(), created.ID, verifier, domain.TimesheetVerified, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetVerified, verified.Status)

	approved, err := svc.Approve(context.Background(), created.ID, pic)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetApproved, approved.Status)
}

func TestTimesheetService_ApproveRejectsWithoutAuthority(t *testing.T) {
	checker := domain.NewID()
	repo := &fakeTimesheetRepo{ts: &domain.RentalTimesheet{
		ID:        domain.NewID(),
		CheckerID: checker,
		Status:    domain.TimesheetVerified,
	}}
	svc := NewTimesheetService(repo, &fakeUserLevelLookup{canApprove: false})

	_, err := svc.Approve(context.Background(), repo.ts.ID, domain.NewID())
	require.Error(t, err)
	se := apierrors.As(err)
	require.NotNil(t, se)
	assert.Equal(t, apierrors.CodeUnauthorized, se.Code)
}

func TestTimesheetService_EditRejectedAfterSubmit(t *testing.T) {
	checker := domain.NewID()
	repo := &fakeTimesheetRepo{ts: &domain.RentalTimesheet{
		ID:        domain.NewID(),
		CheckerID: checker,
		Status:    domain.TimesheetSubmitted,
	}}
	svc := NewTimesheetService(repo, &fakeUserLevelLookup{})

	_, err := svc.Edit(context.Background(), repo.ts.ID, checker, func(ts *domain.RentalTimesheet) {})
	require.Error(t, err)
}
