package httpapi

import (
	"net/http"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type createApprovalRequest struct {
	ResourceType string         `json:"resource_type" validate:"required"`
	ResourceID   string         `json:"resource_id" validate:"required,uuid4"`
	Action       string         `json:"action" validate:"required"`
	Snapshot     map[string]any `json:"snapshot"`
}

func (s *Server) handleCreateApproval(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createApprovalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resourceID, err := domain.ParseID(req.ResourceID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("resource_id", "must be a valid id"))
		return
	}
	approval, err := s.approvals.Create(r.Context(), req.ResourceType, resourceID, req.Action, claims.Subject, req.Snapshot)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "approval.create", req.ResourceType, resourceID, nil, nil)
	writeSuccess(w, http.StatusCreated, "approval requested", approval)
}

func (s *Server) handleGetApproval(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "approvalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	approval, err := s.approvalRepo.GetApproval(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", approval)
}

type approveApprovalRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleApproveApproval(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "approvalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req approveApprovalRequest
	_ = decodeAndValidate(r, &req)
	approval, err := s.approvals.Approve(r.Context(), id, claims.Subject, claims.RoleLevel, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "approval.approve", approval.ResourceType, approval.ResourceID, nil, map[string]any{"status": approval.Status})
	writeSuccess(w, http.StatusOK, "approval recorded", approval)
}

type rejectApprovalRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (s *Server) handleRejectApproval(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "approvalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectApprovalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	approval, err := s.approvals.Reject(r.Context(), id, claims.Subject, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "approval.reject", approval.ResourceType, approval.ResourceID, nil, nil)
	writeSuccess(w, http.StatusOK, "approval rejected", approval)
}
