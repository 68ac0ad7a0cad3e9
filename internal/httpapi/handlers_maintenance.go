package httpapi

import (
	"net/http"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type createMaintenanceRequest struct {
	AssetID            string    `json:"asset_id" validate:"required,uuid4"`
	ScheduledDate      time.Time `json:"scheduled_date" validate:"required"`
	Type               string    `json:"type" validate:"required"`
	AssignedTechnician string    `json:"assigned_technician"`
	Notes              string    `json:"notes"`
}

func (s *Server) handleCreateMaintenance(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createMaintenanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	assetID, err := domain.ParseID(req.AssetID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("asset_id", "must be a valid id"))
		return
	}
	record := &domain.MaintenanceRecord{
		ID:            domain.NewID(),
		AssetID:       assetID,
		ScheduledDate: req.ScheduledDate,
		Type:          req.Type,
		Status:        domain.MaintenanceScheduled,
		Notes:         req.Notes,
	}
	if req.AssignedTechnician != "" {
		techID, err := domain.ParseID(req.AssignedTechnician)
		if err != nil {
			writeError(w, r, apierrors.ValidationError("assigned_technician", "must be a valid id"))
			return
		}
		record.AssignedTechnician = &techID
	}
	if err := s.maintenance.Create(r.Context(), record); err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "maintenance.create", "maintenance_record", record.ID, nil, nil)
	writeSuccess(w, http.StatusCreated, "maintenance record created", record)
}

func (s *Server) handleGetMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "recordID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	record, err := s.maintenance.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", record)
}
