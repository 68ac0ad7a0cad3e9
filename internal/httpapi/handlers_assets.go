package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
)

type createAssetRequest struct {
	Code          string         `json:"code" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	CategoryID    string         `json:"category_id" validate:"required,uuid4"`
	LocationID    string         `json:"location_id" validate:"required,uuid4"`
	DepartmentID  string         `json:"department_id" validate:"required,uuid4"`
	Serial        string         `json:"serial"`
	Brand         string         `json:"brand"`
	Model         string         `json:"model"`
	Year          int            `json:"year"`
	Specification map[string]any `json:"specification"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"required"`
	Currency      string         `json:"currency" validate:"required,oneof=USD IDR SGD"`
	Quantity      int            `json:"quantity" validate:"required,gte=1"`
	ResidualValue decimal.Decimal `json:"residual_value"`
	UsefulLifeMo  int            `json:"useful_life_mo"`
	Notes         string         `json:"notes"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createAssetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := domain.ParseID(req.CategoryID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("category_id", "must be a valid id"))
		return
	}
	locationID, err := domain.ParseID(req.LocationID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("location_id", "must be a valid id"))
		return
	}
	departmentID, err := domain.ParseID(req.DepartmentID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("department_id", "must be a valid id"))
		return
	}

	now := time.Now().UTC()
	asset := &domain.Asset{
		ID:             domain.NewID(),
		OrganizationID: claims.Organization,
		Code:           req.Code,
		Name:           req.Name,
		CategoryID:     categoryID,
		LocationID:     locationID,
		DepartmentID:   departmentID,
		Status:         domain.AssetPlanning,
		Serial:         req.Serial,
		Brand:          req.Brand,
		Model:          req.Model,
		Year:           req.Year,
		Specification:  req.Specification,
		PurchasePrice:  req.PurchasePrice,
		Currency:       req.Currency,
		Quantity:       req.Quantity,
		ResidualValue:  req.ResidualValue,
		UsefulLifeMo:   req.UsefulLifeMo,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.assets.Create(r.Context(), asset); err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "asset.create", "asset", asset.ID, nil, map[string]any{"code": asset.Code})
	writeSuccess(w, http.StatusCreated, "asset created", asset)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	asset, err := s.assets.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", asset)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, offset := paginationParams(r)
	assets, err := s.assets.ListByOrganization(r.Context(), claims.Organization, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", assets)
}

type transitionAssetRequest struct {
	To       string         `json:"to" validate:"required"`
	Reason   string         `json:"reason" validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) handleTransitionAsset(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transitionAssetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	before, err := s.assets.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to := domain.AssetState(req.To)
	if !domain.ValidAssetState(to) {
		writeError(w, r, apierrors.ValidationError("to", "unknown asset state"))
		return
	}
	if lifecycle.RequiresApproval(to) {
		writeError(w, r, apierrors.BusinessRuleViolation("approval_required", "this transition requires an approved request"))
		return
	}
	if !lifecycle.CanTransition(before.Status, to) {
		writeError(w, r, apierrors.InvalidStateTransition(string(before.Status), string(to)))
		return
	}
	asset, err := s.assets.TransitionAsset(r.Context(), id, to, req.Reason, claims.Subject, req.Metadata)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.metrics.ObserveAssetTransition(string(before.Status), string(asset.Status))
	s.auditor.Record(r.Context(), &claims.Subject, "asset.transition", "asset", asset.ID,
		map[string]any{"status": before.Status}, map[string]any{"status": asset.Status})
	writeSuccess(w, http.StatusOK, "transitioned", asset)
}
