package workflow

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type fakeWorkOrders struct {
	wos   map[domain.ID]*domain.WorkOrder
	parts map[domain.ID][]domain.WorkOrderPart
}

func newFakeWorkOrders() *fakeWorkOrders {
	return &fakeWorkOrders{wos: map[domain.ID]*domain.WorkOrder{}, parts: map[domain.ID][]domain.WorkOrderPart{}}
}

func (f *fakeWorkOrders) GetWorkOrder(ctx context.Context, id domain.ID) (*domain.WorkOrder, error) {
	wo, ok := f.wos[id]
	if !ok {
		return nil, apierrors.NotFound("work_order", id.String())
	}
	return wo, nil
}

func (f *fakeWorkOrders) UpdateWorkOrder(ctx context.Context, wo *domain.WorkOrder) error {
	f.wos[wo.ID] = wo
	return nil
}

func (f *fakeWorkOrders) ListParts(ctx context.Context, workOrderID domain.ID) ([]domain.WorkOrderPart, error) {
	return f.parts[workOrderID], nil
}

func TestWorkOrderService_FullLifecycle(t *testing.T) {
	repo := newFakeWorkOrders()
	svc := NewWorkOrderService(repo)

	wo := &domain.WorkOrder{ID: domain.NewID(), Status: domain.WOStatusPending}
	repo.wos[wo.ID] = wo
	repo.parts[wo.ID] = []domain.WorkOrderPart{
		{Quantity: 2, UnitCost: decimal.NewFromInt(50)},
		{Quantity: 1, UnitCost: decimal.NewFromInt(30)},
	}

	_, err := svc.Approve(context.Background(), wo.ID, domain.RoleLevelManager)
	require.NoError(t, err)
	assert.Equal(t, domain.WOStatusApproved, wo.Status)

	tech := domain.NewID()
	_, err = svc.Assign(context.Background(), wo.ID, domain.RoleLevelSupervisor, tech)
	require.NoError(t, err)
	assert.Equal(t, domain.WOStatusAssigned, wo.Status)

	_, err = svc.Start(context.Background(), wo.ID, tech)
	require.NoError(t, err)
	assert.Equal(t, domain.WOStatusInProgress, wo.Status)

	_, err = svc.Complete(context.Background(), wo.ID, tech, "replaced filter", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, domain.WOStatusCompleted, wo.Status)
	assert.True(t, decimal.NewFromInt(130).Equal(wo.PartsCost))
	assert.True(t, decimal.NewFromInt(230).Equal(wo.ActualCost))
}

func TestWorkOrderService_CancelRequiresManagerLevel(t *testing.T) {
	repo := newFakeWorkOrders()
	svc := NewWorkOrderService(repo)
	wo := &domain.WorkOrder{ID: domain.NewID(), Status: domain.WOStatusPending}
	repo.wos[wo.ID] = wo

	_, err := svc.Cancel(context.Background(), wo.ID, domain.RoleLevelSupervisor)
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeForbidden, apierrors.Code(err))

	_, err = svc.Cancel(context.Background(), wo.ID, domain.RoleLevelManager)
	require.NoError(t, err)
	assert.Equal(t, domain.WOStatusCancelled, wo.Status)
}

func TestWorkOrderService_StartRejectsWrongTechnician(t *testing.T) {
	repo := newFakeWorkOrders()
	svc := NewWorkOrderService(repo)
	tech := domain.NewID()
	wo := &domain.WorkOrder{ID: domain.NewID(), Status: domain.WOStatusAssigned, AssignedTechnician: &tech}
	repo.wos[wo.ID] = wo

	_, err := svc.Start(context.Background(), wo.ID, domain.NewID())
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeForbidden, apierrors.Code(err))
}
