package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

func (s *Server) handleGetWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	wo, err := s.workOrdRepo.GetWorkOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", wo)
}

func (s *Server) handleListWorkOrderParts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	parts, err := s.workOrdRepo.ListParts(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", parts)
}

func (s *Server) handleApproveWorkOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	wo, err := s.workorders.Approve(r.Context(), id, claims.RoleLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "work_order.approve", "work_order", wo.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "work order approved", wo)
}

type assignWorkOrderRequest struct {
	TechnicianID string `json:"technician_id" validate:"required,uuid4"`
}

func (s *Server) handleAssignWorkOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req assignWorkOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	technicianID, err := domain.ParseID(req.TechnicianID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("technician_id", "must be a valid id"))
		return
	}
	wo, err := s.workorders.Assign(r.Context(), id, claims.RoleLevel, technicianID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "work_order.assign", "work_order", wo.ID, nil, map[string]any{"technician_id": technicianID})
	writeSuccess(w, http.StatusOK, "work order assigned", wo)
}

func (s *Server) handleStartWorkOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	wo, err := s.workorders.Start(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "work_order.start", "work_order", wo.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "work order started", wo)
}

type completeWorkOrderRequest struct {
	WorkPerformed string          `json:"work_performed" validate:"required"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
}

func (s *Server) handleCompleteWorkOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeWorkOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	wo, err := s.workorders.Complete(r.Context(), id, claims.Subject, req.WorkPerformed, req.LaborCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "work_order.complete", "work_order", wo.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "work order completed", wo)
}

func (s *Server) handleCancelWorkOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "workOrderID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	wo, err := s.workorders.Cancel(r.Context(), id, claims.RoleLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "work_order.cancel", "work_order", wo.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "work order cancelled", wo)
}
