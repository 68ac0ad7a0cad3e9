package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
)

type fakeAssets struct {
	assets map[domain.ID]*domain.Asset
}

func newFakeAssets(assets ...*domain.Asset) *fakeAssets {
	m := map[domain.ID]*domain.Asset{}
	for _, a := range assets {
		m[a.ID] = a
	}
	return &fakeAssets{assets: m}
}

func (f *fakeAssets) GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return nil, apierrors.NotFound("asset", id.String())
	}
	return a, nil
}

func (f *fakeAssets) TransitionAsset(ctx context.Context, id domain.ID, to domain.AssetState, reason string, actorID domain.ID, metadata map[string]any) (*domain.Asset, error) {
	f.assets[id].Status = to
	return f.assets[id], nil
}

type fakeLoans struct {
	loans map[domain.ID]*domain.Loan
}

func newFakeLoans() *fakeLoans { return &fakeLoans{loans: map[domain.ID]*domain.Loan{}} }

func (f *fakeLoans) GetLoan(ctx context.Context, id domain.ID) (*domain.Loan, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, apierrors.NotFound("loan", id.String())
	}
	return l, nil
}

func (f *fakeLoans) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}

func (f *fakeLoans) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}

type fakeNotifier struct {
	calls int
}

func (f *fakeNotifier) Notify(ctx context.Context, userID domain.ID, title, message, entityType string, entityID domain.ID) {
	f.calls++
}

func TestLoanService_HappyPath(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetInInventory}
	assets := newFakeAssets(asset)
	loans := newFakeLoans()
	notifier := &fakeNotifier{}
	machine := lifecycle.NewMachine(assets)
	svc := NewLoanService(loans, assets, machine, notifier)

	borrower := domain.NewID()
	loan, err := svc.Create(context.Background(), &domain.Loan{
		AssetID:        asset.ID,
		BorrowerID:     borrower,
		ExpectedReturn: time.Now().AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LoanRequested, loan.Status)

	approver := domain.NewID()
	loan, err = svc.Approve(context.Background(), loan.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanApproved, loan.Status)
	assert.Equal(t, 1, notifier.calls)

	loan.TermsAccepted = true
	loan, err = svc.Checkout(context.Background(), loan.ID, approver, "Good")
	require.NoError(t, err)
	assert.Equal(t, domain.LoanCheckedOut, loan.Status)
	assert.Equal(t, domain.AssetDeployed, asset.Status)

	loan, err = svc.Checkin(context.Background(), loan.ID, approver, "Good")
	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, loan.Status)
	assert.Equal(t, domain.AssetInInventory, asset.Status)
}

func TestLoanService_CreateRejectsUnavailableAsset(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetDeployed}
	assets := newFakeAssets(asset)
	machine := lifecycle.NewMachine(assets)
	svc := NewLoanService(newFakeLoans(), assets, machine, &fakeNotifier{})

	_, err := svc.Create(context.Background(), &domain.Loan{AssetID: asset.ID, BorrowerID: domain.NewID()})
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeBusinessRule, apierrors.Code(err))
}

func TestLoanService_CheckoutRequiresTermsAccepted(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetInInventory}
	assets := newFakeAssets(asset)
	loans := newFakeLoans()
	machine := lifecycle.NewMachine(assets)
	svc := NewLoanService(loans, assets, machine, &fakeNotifier{})

	loan := &domain.Loan{ID: domain.NewID(), AssetID: asset.ID, Status: domain.LoanApproved, TermsAccepted: false}
	loans.loans[loan.ID] = loan

	_, err := svc.Checkout(context.Background(), loan.ID, domain.NewID(), "Good")
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeBusinessRule, apierrors.Code(err))
}

func TestLoanService_SweepOverdue(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetDeployed}
	assets := newFakeAssets(asset)
	machine := lifecycle.NewMachine(assets)
	notifier := &fakeNotifier{}
	svc := NewLoanService(newFakeLoans(), assets, machine, notifier)

	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := &domain.Loan{
		ID:             domain.NewID(),
		AssetID:        asset.ID,
		Status:         domain.LoanCheckedOut,
		ExpectedReturn: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	affected := svc.SweepOverdue(context.Background(), today, []*domain.Loan{loan})
	assert.Equal(t, 1, affected)
	assert.Equal(t, domain.LoanOverdue, loan.Status)
	assert.Equal(t, 1, notifier.calls)
}
