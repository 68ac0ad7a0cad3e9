package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
)

// RentalRepository is the persistence seam for Rental and its handovers.
type RentalRepository interface {
	GetRental(ctx context.Context, id domain.ID) (*domain.Rental, error)
	CreateRental(ctx context.Context, rental *domain.Rental) error
	UpdateRental(ctx context.Context, rental *domain.Rental) error
	CreateHandover(ctx context.Context, handover *domain.RentalHandover) error
}

// ClientStatusReader resolves client.is_active for the rental creation
// guard.
type ClientStatusReader interface {
	GetClient(ctx context.Context, id domain.ID) (*domain.Client, error)
}

// RentalService implements the external-rental FSM (§4.2). Asset side
// effects on dispatch/return go through internal/lifecycle, mapping the
// spec's externally-facing "RentedOut" asset label onto AssetDeployed
// (see DESIGN.md, same reasoning as the loan workflow).
type RentalService struct {
	repo    RentalRepository
	assets  AssetStatusReader
	clients ClientStatusReader
	machine *lifecycle.Machine
	now     func() time.Time
}

func NewRentalService(repo RentalRepository, assets AssetStatusReader, clients ClientStatusReader, machine *lifecycle.Machine) *RentalService {
	return &RentalService{repo: repo, assets: assets, clients: clients, machine: machine, now: time.Now}
}

// Create requires the asset to be InInventory or Deployed and the client
// to be active.
func (s *RentalService) Create(ctx context.Context, rental *domain.Rental) (*domain.Rental, error) {
	asset, err := s.assets.GetAsset(ctx, rental.AssetID)
	if err != nil {
		return nil, err
	}
	if asset.Status != domain.AssetInInventory && asset.Status != domain.AssetDeployed {
		return nil, apierrors.BusinessRuleViolation("asset_unavailable", "asset is not eligible for rental")
	}
	client, err := s.clients.GetClient(ctx, rental.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, apierrors.BusinessRuleViolation("client_inactive", "client is not active")
	}
	rental.ID = domain.NewID()
	rental.Status = domain.RentalRequested
	rental.RequestDate = s.now().UTC()
	rental.CreatedAt = rental.RequestDate
	rental.UpdatedAt = rental.RequestDate
	if err := s.repo.CreateRental(ctx, rental); err != nil {
		return nil, apierrors.Database("create_rental", err)
	}
	return rental, nil
}

// Approve writes the approver-supplied schedule/rate and moves
// Requested -> Approved.
func (s *RentalService) Approve(ctx context.Context, id domain.ID, startDate, expectedEnd time.Time, dailyRate decimal.Decimal) (*domain.Rental, error) {
	rental, err := s.repo.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalRequested {
		return nil, apierrors.InvalidStateTransition(string(rental.Status), string(domain.RentalApproved))
	}
	rental.Status = domain.RentalApproved
	rental.StartDate = &startDate
	rental.ExpectedEnd = &expectedEnd
	rental.DailyRate = dailyRate
	rental.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateRental(ctx, rental); err != nil {
		return nil, apierrors.Database("approve_rental", err)
	}
	return rental, nil
}

// Reject moves Requested -> Rejected.
func (s *RentalService) Reject(ctx context.Context, id domain.ID) (*domain.Rental, error) {
	rental, err := s.repo.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalRequested {
		return nil, apierrors.InvalidStateTransition(string(rental.Status), string(domain.RentalRejected))
	}
	rental.Status = domain.RentalRejected
	rental.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateRental(ctx, rental); err != nil {
		return nil, apierrors.Database("reject_rental", err)
	}
	return rental, nil
}

// Dispatch records a dispatch handover and moves the asset to Deployed.
func (s *RentalService) Dispatch(ctx context.Context, id domain.ID, actorID domain.ID, conditionRating string, photos []string) (*domain.Rental, error) {
	rental, err := s.repo.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalApproved {
		return nil, apierrors.InvalidStateTransition(string(rental.Status), string(domain.RentalRentedOut))
	}
	if _, err := s.machine.Transition(ctx, rental.AssetID, domain.AssetDeployed, "rental_dispatch", actorID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateHandover(ctx, &domain.RentalHandover{
		ID:              domain.NewID(),
		RentalID:        rental.ID,
		Kind:            domain.HandoverDispatch,
		ConditionRating: conditionRating,
		Photos:          photos,
		RecordedByID:    actorID,
		CreatedAt:       s.now().UTC(),
	}); err != nil {
		return nil, apierrors.Database("create_dispatch_handover", err)
	}
	rental.Status = domain.RentalRentedOut
	rental.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateRental(ctx, rental); err != nil {
		return nil, apierrors.Database("dispatch_rental", err)
	}
	return rental, nil
}

// Return records a return handover, computes the total (days * rate +
// overdue penalty), and moves the asset back to InInventory. Deployed is not
// wired to InInventory in the lifecycle graph (§4.1), so this uses
// ForceTransition, the same bypass the original rental service's
// update_status call makes for a return.
func (s *RentalService) Return(ctx context.Context, id domain.ID, actorID domain.ID, conditionRating string, hasDamage bool, photos []string, returnedAt time.Time) (*domain.Rental, error) {
	rental, err := s.repo.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalRentedOut && rental.Status != domain.RentalOverdue {
		return nil, apierrors.InvalidStateTransition(string(rental.Status), string(domain.RentalReturned))
	}
	if rental.StartDate == nil {
		return nil, apierrors.BusinessRuleViolation("missing_start_date", "rental was never dispatched")
	}

	if _, err := s.machine.ForceTransition(ctx, rental.AssetID, domain.AssetInInventory, "rental_return", actorID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateHandover(ctx, &domain.RentalHandover{
		ID:              domain.NewID(),
		RentalID:        rental.ID,
		Kind:            domain.HandoverReturn,
		ConditionRating: conditionRating,
		Photos:          photos,
		HasDamage:       hasDamage,
		RecordedByID:    actorID,
		CreatedAt:       s.now().UTC(),
	}); err != nil {
		return nil, apierrors.Database("create_return_handover", err)
	}

	totalDays := daysBetween(*rental.StartDate, returnedAt) + 1
	if totalDays < 0 {
		totalDays = 0
	}
	subtotal := decimal.NewFromInt(int64(totalDays)).Mul(rental.DailyRate)

	penalty := decimal.Zero
	if rental.ExpectedEnd != nil {
		overdueDays := daysBetween(*rental.ExpectedEnd, returnedAt)
		if overdueDays > 0 {
			penalty = decimal.NewFromInt(int64(overdueDays)).Mul(rental.DailyRate).Mul(domain.OverduePenaltyRate)
		}
	}

	actual := returnedAt
	rental.ActualEnd = &actual
	rental.TotalDays = totalDays
	rental.Subtotal = subtotal
	rental.Penalty = penalty
	rental.Total = subtotal.Add(penalty)
	rental.Status = domain.RentalReturned
	rental.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateRental(ctx, rental); err != nil {
		return nil, apierrors.Database("return_rental", err)
	}
	return rental, nil
}

// SweepOverdue marks rentals past expected_end as Overdue, mirroring the
// loan sweep rule (§4.6).
func (s *RentalService) SweepOverdue(ctx context.Context, today time.Time, rentals []*domain.Rental) (affected int) {
	for _, rental := range rentals {
		if !rental.IsOverdue(today) {
			continue
		}
		rental.Status = domain.RentalOverdue
		rental.UpdatedAt = today
		if err := s.repo.UpdateRental(ctx, rental); err != nil {
			continue
		}
		affected++
	}
	return affected
}

func daysBetween(start, end time.Time) int {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
