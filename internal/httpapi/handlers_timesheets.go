package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type createTimesheetRequest struct {
	RentalID        string          `json:"rental_id" validate:"required,uuid4"`
	WorkDate        time.Time       `json:"work_date" validate:"required"`
	OperatingHours  decimal.Decimal `json:"operating_hours"`
	StandbyHours    decimal.Decimal `json:"standby_hours"`
	BreakdownHours  decimal.Decimal `json:"breakdown_hours"`
	OperationStatus string          `json:"operation_status"`
	Notes           string          `json:"notes"`
	Photos          []string        `json:"photos"`
}

func (s *Server) handleCreateTimesheet(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createTimesheetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rentalID, err := domain.ParseID(req.RentalID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("rental_id", "must be a valid id"))
		return
	}
	now := time.Now().UTC()
	ts := &domain.RentalTimesheet{
		ID:              domain.NewID(),
		RentalID:        rentalID,
		WorkDate:        req.WorkDate,
		OperatingHours:  req.OperatingHours,
		StandbyHours:    req.StandbyHours,
		BreakdownHours:  req.BreakdownHours,
		OperationStatus: req.OperationStatus,
		CheckerID:       claims.Subject,
		Notes:           req.Notes,
		Photos:          req.Photos,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.timesheets.Create(r.Context(), ts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "timesheet created", created)
}

func (s *Server) handleGetTimesheet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "timesheetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ts, err := s.tsRepo.GetTimesheet(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", ts)
}

type editTimesheetRequest struct {
	OperatingHours decimal.Decimal `json:"operating_hours"`
	StandbyHours   decimal.Decimal `json:"standby_hours"`
	BreakdownHours decimal.Decimal `json:"breakdown_hours"`
	Notes          string          `json:"notes"`
}

func (s *Server) handleEditTimesheet(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "timesheetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req editTimesheetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ts, err := s.timesheets.Edit(r.Context(), id, claims.Subject, func(t *domain.RentalTimesheet) {
		t.OperatingHours = req.OperatingHours
		t.StandbyHours = req.StandbyHours
		t.BreakdownHours = req.BreakdownHours
		t.Notes = req.Notes
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "timesheet updated", ts)
}

func (s *Server) handleSubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "timesheetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ts, err := s.timesheets.Submit(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "timesheet submitted", ts)
}

type verifyTimesheetRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=verified revision"`
	Notes   string `json:"notes"`
}

func (s *Server) handleVerifyTimesheet(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "timesheetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req verifyTimesheetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ts, err := s.timesheets.Verify(r.Context(), id, claims.Subject, domain.TimesheetStatus(req.Outcome), req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "timesheet verified", ts)
}

func (s *Server) handleApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "timesheetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ts, err := s.timesheets.Approve(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "timesheet approved", ts)
}
