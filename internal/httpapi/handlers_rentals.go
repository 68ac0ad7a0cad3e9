package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type createRentalRequest struct {
	AssetID  string `json:"asset_id" validate:"required,uuid4"`
	ClientID string `json:"client_id" validate:"required,uuid4"`
}

func (s *Server) handleCreateRental(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createRentalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	assetID, err := domain.ParseID(req.AssetID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("asset_id", "must be a valid id"))
		return
	}
	clientID, err := domain.ParseID(req.ClientID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("client_id", "must be a valid id"))
		return
	}
	now := time.Now().UTC()
	rental := &domain.Rental{
		ID:          domain.NewID(),
		AssetID:     assetID,
		ClientID:    clientID,
		RequestDate: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.rentals.Create(r.Context(), rental)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "rental.create", "rental", created.ID, nil, map[string]any{"asset_id": created.AssetID})
	writeSuccess(w, http.StatusCreated, "rental requested", created)
}

func (s *Server) handleGetRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "rentalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := s.rentalRepo.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", rental)
}

func (s *Server) handleListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := s.rentalRepo.ListOpenRentals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", rentals)
}

type approveRentalRequest struct {
	StartDate   time.Time       `json:"start_date" validate:"required"`
	ExpectedEnd time.Time       `json:"expected_end" validate:"required"`
	DailyRate   decimal.Decimal `json:"daily_rate" validate:"required"`
}

func (s *Server) handleApproveRental(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "rentalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req approveRentalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := s.rentals.Approve(r.Context(), id, req.StartDate, req.ExpectedEnd, req.DailyRate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "rental.approve", "rental", rental.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "rental approved", rental)
}

func (s *Server) handleRejectRental(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "rentalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := s.rentals.Reject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "rental.reject", "rental", rental.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "rental rejected", rental)
}

type handoverRequest struct {
	ConditionRating string   `json:"condition_rating" validate:"required"`
	Photos          []string `json:"photos"`
	HasDamage       bool     `json:"has_damage"`
}

func (s *Server) handleDispatchRental(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "rentalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req handoverRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := s.rentals.Dispatch(r.Context(), id, claims.Subject, req.ConditionRating, req.Photos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "rental.dispatch", "rental", rental.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "rental dispatched", rental)
}

func (s *Server) handleReturnRental(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "rentalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req handoverRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := s.rentals.Return(r.Context(), id, claims.Subject, req.ConditionRating, req.HasDamage, req.Photos, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "rental.return", "rental", rental.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "rental returned", rental)
}
