package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type fakeApprovals struct {
	reqs map[domain.ID]*domain.ApprovalRequest
}

func newFakeApprovals() *fakeApprovals { return &fakeApprovals{reqs: map[domain.ID]*domain.ApprovalRequest{}} }

func (f *fakeApprovals) CreateApproval(ctx context.Context, req *domain.ApprovalRequest) error {
	f.reqs[req.ID] = req
	return nil
}
func (f *fakeApprovals) GetApproval(ctx context.Context, id domain.ID) (*domain.ApprovalRequest, error) {
	r, ok := f.reqs[id]
	if !ok {
		return nil, apierrors.NotFound("approval_request", id.String())
	}
	return r, nil
}
func (f *fakeApprovals) UpdateApproval(ctx context.Context, req *domain.ApprovalRequest) error {
	f.reqs[req.ID] = req
	return nil
}

func TestApprovalService_TwoLevelFlow(t *testing.T) {
	repo := newFakeApprovals()
	svc := NewApprovalService(repo)

	req, err := svc.Create(context.Background(), "lifecycle_transition", domain.NewID(), "retire", domain.NewID(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, req.Status)
	assert.Equal(t, domain.ApprovalLevelOne, req.CurrentLevel)

	req, err = svc.Approve(context.Background(), req.ID, domain.NewID(), domain.RoleLevelSupervisor, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApprovedL1, req.Status)
	assert.Equal(t, domain.ApprovalLevelTwo, req.CurrentLevel)

	req, err = svc.Approve(context.Background(), req.ID, domain.NewID(), domain.RoleLevelManager, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApprovedL2, req.Status)
	assert.True(t, req.Status.IsTerminal())
}

func TestApprovalService_MonotonicityAfterTerminal(t *testing.T) {
	repo := newFakeApprovals()
	svc := NewApprovalService(repo)

	req, err := svc.Create(context.Background(), "lifecycle_transition", domain.NewID(), "retire", domain.NewID(), nil)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), req.ID, domain.NewID(), "not needed")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), req.ID, domain.NewID(), domain.RoleLevelSupervisor, "")
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeBusinessRule, apierrors.Code(err))

	_, err = svc.Reject(context.Background(), req.ID, domain.NewID(), "")
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeBusinessRule, apierrors.Code(err))
}

func TestApprovalService_InsufficientRoleLevelRejected(t *testing.T) {
	repo := newFakeApprovals()
	svc := NewApprovalService(repo)

	req, err := svc.Create(context.Background(), "lifecycle_transition", domain.NewID(), "retire", domain.NewID(), nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), req.ID, domain.NewID(), domain.RoleLevelStaff, "")
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeForbidden, apierrors.Code(err))
}
