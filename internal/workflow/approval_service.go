// Package workflow implements the loan, rental, work-order, conversion,
// and generic approval FSMs of SPEC_FULL §4.2, layered on top of
// internal/lifecycle for any asset-state side effect.
package workflow

import (
	"context"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// ApprovalRepository is the persistence seam for ApprovalRequest.
type ApprovalRepository interface {
	CreateApproval(ctx context.Context, req *domain.ApprovalRequest) error
	GetApproval(ctx context.Context, id domain.ID) (*domain.ApprovalRequest, error)
	UpdateApproval(ctx context.Context, req *domain.ApprovalRequest) error
}

// ApprovalService implements the generic two-level approval gate (§4.2).
type ApprovalService struct {
	repo ApprovalRepository
	now  func() time.Time
}

func NewApprovalService(repo ApprovalRepository) *ApprovalService {
	return &ApprovalService{repo: repo, now: time.Now}
}

// Create opens a new request at L1/Pending.
func (s *ApprovalService) Create(ctx context.Context, resourceType string, resourceID domain.ID, action string, requesterID domain.ID, snapshot map[string]any) (*domain.ApprovalRequest, error) {
	if domain.ZeroID(requesterID) {
		return nil, apierrors.ValidationError("requester_id", "requester is required")
	}
	req := &domain.ApprovalRequest{
		ID:           domain.NewID(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		RequesterID:  requesterID,
		Status:       domain.ApprovalPending,
		CurrentLevel: domain.ApprovalLevelOne,
		Snapshot:     snapshot,
		CreatedAt:    s.now().UTC(),
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateApproval(ctx, req); err != nil {
		return nil, apierrors.Database("create_approval", err)
	}
	return req, nil
}

// Approve records the approver's action at the request's current level. At
// L1 it advances to L2/Pending-at-L2; at L2 it finalizes as ApprovedL2.
// Re-approval of a terminal request fails with business_rule (§8).
func (s *ApprovalService) Approve(ctx context.Context, id domain.ID, approverID domain.ID, approverLevel domain.RoleLevel, notes string) (*domain.ApprovalRequest, error) {
	req, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, apierrors.BusinessRuleViolation("approval_state", "approval request is already finalized")
	}
	if approverLevel > req.RequiredRoleLevel() {
		return nil, apierrors.Forbidden("insufficient role level to approve at this stage")
	}

	now := s.now().UTC()
	switch req.CurrentLevel {
	case domain.ApprovalLevelOne:
		req.L1ApproverID = &approverID
		req.L1At = &now
		req.L1Notes = notes
		req.CurrentLevel = domain.ApprovalLevelTwo
		req.Status = domain.ApprovalApprovedL1
	case domain.ApprovalLevelTwo:
		req.L2ApproverID = &approverID
		req.L2At = &now
		req.L2Notes = notes
		req.Status = domain.ApprovalApprovedL2
	}
	req.UpdatedAt = now
	if err := s.repo.UpdateApproval(ctx, req); err != nil {
		return nil, apierrors.Database("approve_request", err)
	}
	return req, nil
}

// Reject sets the request to Rejected, regardless of current level.
// Re-rejection of a terminal request fails with business_rule.
func (s *ApprovalService) Reject(ctx context.Context, id domain.ID, approverID domain.ID, reason string) (*domain.ApprovalRequest, error) {
	req, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, apierrors.BusinessRuleViolation("approval_state", "approval request is already finalized")
	}
	now := s.now().UTC()
	req.Status = domain.ApprovalRejected
	req.UpdatedAt = now
	if req.CurrentLevel == domain.ApprovalLevelOne {
		req.L1ApproverID = &approverID
		req.L1At = &now
		req.L1Notes = reason
	} else {
		req.L2ApproverID = &approverID
		req.L2At = &now
		req.L2Notes = reason
	}
	if err := s.repo.UpdateApproval(ctx, req); err != nil {
		return nil, apierrors.Database("reject_request", err)
	}
	return req, nil
}
