package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// WorkOrderRepository is the persistence seam for WorkOrder, its checklist
// items, and its parts.
type WorkOrderRepository interface {
	GetWorkOrder(ctx context.Context, id domain.ID) (*domain.WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, wo *domain.WorkOrder) error
	ListParts(ctx context.Context, workOrderID domain.ID) ([]domain.WorkOrderPart, error)
}

// WorkOrderService implements the Pending→Approved→Assigned→InProgress→
// Completed FSM, with Cancel available from Pending or Approved (§4.2).
type WorkOrderService struct {
	repo WorkOrderRepository
	now  func() time.Time
}

func NewWorkOrderService(repo WorkOrderRepository) *WorkOrderService {
	return &WorkOrderService{repo: repo, now: time.Now}
}

// Approve requires at least Supervisor level (role_level<=4). The RBAC
// matrix gates work-order POSTs by permission only, so the level is
// checked here.
func (s *WorkOrderService) Approve(ctx context.Context, id domain.ID, approverLevel domain.RoleLevel) (*domain.WorkOrder, error) {
	if approverLevel > domain.RoleLevelSupervisor {
		return nil, apierrors.Forbidden("requires supervisor level or higher")
	}
	wo, err := s.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != domain.WOStatusPending {
		return nil, apierrors.InvalidStateTransition(string(wo.Status), string(domain.WOStatusApproved))
	}
	wo.Status = domain.WOStatusApproved
	wo.UpdatedAt = s.now().UTC()
	return wo, s.save(ctx, wo, "approve_work_order")
}

// Assign requires Supervisor+ and moves Approved -> Assigned.
func (s *WorkOrderService) Assign(ctx context.Context, id domain.ID, assignerLevel domain.RoleLevel, technicianID domain.ID) (*domain.WorkOrder, error) {
	if assignerLevel > domain.RoleLevelSupervisor {
		return nil, apierrors.Forbidden("requires supervisor level or higher")
	}
	wo, err := s.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != domain.WOStatusApproved {
		return nil, apierrors.InvalidStateTransition(string(wo.Status), string(domain.WOStatusAssigned))
	}
	wo.Status = domain.WOStatusAssigned
	wo.AssignedTechnician = &technicianID
	wo.UpdatedAt = s.now().UTC()
	return wo, s.save(ctx, wo, "assign_work_order")
}

// Start requires the caller to be the assigned technician and moves
// Assigned -> InProgress.
func (s *WorkOrderService) Start(ctx context.Context, id domain.ID, technicianID domain.ID) (*domain.WorkOrder, error) {
	wo, err := s.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != domain.WOStatusAssigned {
		return nil, apierrors.InvalidStateTransition(string(wo.Status), string(domain.WOStatusInProgress))
	}
	if wo.AssignedTechnician == nil || *wo.AssignedTechnician != technicianID {
		return nil, apierrors.Forbidden("only the assigned technician may start this work order")
	}
	now := s.now().UTC()
	wo.Status = domain.WOStatusInProgress
	wo.ActualStart = &now
	wo.UpdatedAt = now
	return wo, s.save(ctx, wo, "start_work_order")
}

// Complete requires the caller to be the assigned technician, recomputes
// parts_cost from the part lines, and moves InProgress -> Completed.
func (s *WorkOrderService) Complete(ctx context.Context, id domain.ID, technicianID domain.ID, workPerformed string, laborCost decimal.Decimal) (*domain.WorkOrder, error) {
	wo, err := s.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != domain.WOStatusInProgress {
		return nil, apierrors.InvalidStateTransition(string(wo.Status), string(domain.WOStatusCompleted))
	}
	if wo.AssignedTechnician == nil || *wo.AssignedTechnician != technicianID {
		return nil, apierrors.Forbidden("only the assigned technician may complete this work order")
	}
	parts, err := s.repo.ListParts(ctx, id)
	if err != nil {
		return nil, apierrors.Database("list_work_order_parts", err)
	}
	partsCost := decimal.Zero
	for _, p := range parts {
		partsCost = partsCost.Add(p.LineCost())
	}

	now := s.now().UTC()
	wo.Status = domain.WOStatusCompleted
	wo.ActualEnd = &now
	wo.WorkPerformed = workPerformed
	wo.LaborCost = laborCost
	wo.PartsCost = partsCost
	wo.ActualCost = wo.TotalCost()
	wo.UpdatedAt = now
	return wo, s.save(ctx, wo, "complete_work_order")
}

// Cancel requires Manager+ and is available from Pending or Approved.
func (s *WorkOrderService) Cancel(ctx context.Context, id domain.ID, cancellerLevel domain.RoleLevel) (*domain.WorkOrder, error) {
	if cancellerLevel > domain.RoleLevelManager {
		return nil, apierrors.Forbidden("requires manager level or higher")
	}
	wo, err := s.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != domain.WOStatusPending && wo.Status != domain.WOStatusApproved {
		return nil, apierrors.InvalidStateTransition(string(wo.Status), string(domain.WOStatusCancelled))
	}
	wo.Status = domain.WOStatusCancelled
	wo.UpdatedAt = s.now().UTC()
	return wo, s.save(ctx, wo, "cancel_work_order")
}

func (s *WorkOrderService) save(ctx context.Context, wo *domain.WorkOrder, op string) error {
	if err := s.repo.UpdateWorkOrder(ctx, wo); err != nil {
		return apierrors.Database(op, err)
	}
	return nil
}
