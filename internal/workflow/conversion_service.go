package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
)

// ConversionAssetRepository is the persistence seam conversion needs on
// top of the lifecycle machine: rewriting category/specification and, for
// capitalized conversions, the purchase price (§4.2, §8 "Conservation").
type ConversionAssetRepository interface {
	GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error)
	UpdateCategoryAndSpec(ctx context.Context, assetID domain.ID, categoryID domain.ID, spec map[string]any) error
	AddToPurchasePrice(ctx context.Context, assetID domain.ID, delta decimal.Decimal) error
}

// ConversionService executes an approved conversion request: rewrites the
// asset's category/specification, optionally capitalizes the conversion
// cost, and — if the asset is currently parked in UnderConversion awaiting
// this work — commits it back out to Deployed, the only legal forward edge
// from UnderConversion (§4.1).
type ConversionService struct {
	assets  ConversionAssetRepository
	machine *lifecycle.Machine
	now     func() time.Time
}

func NewConversionService(assets ConversionAssetRepository, machine *lifecycle.Machine) *ConversionService {
	return &ConversionService{assets: assets, machine: machine, now: time.Now}
}

// Execute runs only for an approved request (status=ApprovedL2, checked by
// the caller before invoking this). It is not re-entrant-safe by itself;
// callers must guard against double execution (e.g. by marking the
// approval request consumed in the same transaction).
func (s *ConversionService) Execute(ctx context.Context, req domain.ConversionRequest, approverID domain.ID, approvalID domain.ID) (*domain.Asset, error) {
	asset, err := s.assets.GetAsset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	if err := s.assets.UpdateCategoryAndSpec(ctx, req.AssetID, req.NewCategoryID, req.Specification); err != nil {
		return nil, apierrors.Database("update_category_and_spec", err)
	}

	if req.CostTreatment == domain.ConversionCapitalize && req.ConversionCost.IsPositive() {
		if err := s.assets.AddToPurchasePrice(ctx, req.AssetID, req.ConversionCost); err != nil {
			return nil, apierrors.Database("capitalize_conversion_cost", err)
		}
	}

	reason := fmt.Sprintf("converted_to_category_%s", req.NewCategoryID.String())
	if asset.Status == domain.AssetUnderConversion {
		if _, err := s.machine.CommitApproved(ctx, req.AssetID, domain.AssetDeployed, reason, approverID, approvalID); err != nil {
			return nil, err
		}
	}

	return s.assets.GetAsset(ctx, req.AssetID)
}
