package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type executeConversionRequest struct {
	AssetID        string          `json:"asset_id" validate:"required,uuid4"`
	NewCategoryID  string          `json:"new_category_id" validate:"required,uuid4"`
	Specification  map[string]any  `json:"specification"`
	CostTreatment  string          `json:"cost_treatment" validate:"required,oneof=capitalize expense"`
	ConversionCost decimal.Decimal `json:"conversion_cost"`
	ApprovalID     string          `json:"approval_id" validate:"required,uuid4"`
}

func (s *Server) handleExecuteConversion(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req executeConversionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	assetID, err := domain.ParseID(req.AssetID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("asset_id", "must be a valid id"))
		return
	}
	newCategoryID, err := domain.ParseID(req.NewCategoryID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("new_category_id", "must be a valid id"))
		return
	}
	approvalID, err := domain.ParseID(req.ApprovalID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("approval_id", "must be a valid id"))
		return
	}

	convReq := domain.ConversionRequest{
		AssetID:        assetID,
		NewCategoryID:  newCategoryID,
		Specification:  req.Specification,
		CostTreatment:  domain.ConversionCostTreatment(req.CostTreatment),
		ConversionCost: req.ConversionCost,
	}
	asset, err := s.conversions.Execute(r.Context(), convReq, claims.Subject, approvalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "asset.convert", "asset", asset.ID, nil, map[string]any{"new_category_id": newCategoryID})
	writeSuccess(w, http.StatusOK, "conversion executed", asset)
}
