package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
)

// LoanRepository is the persistence seam for Loan.
type LoanRepository interface {
	GetLoan(ctx context.Context, id domain.ID) (*domain.Loan, error)
	CreateLoan(ctx context.Context, loan *domain.Loan) error
	UpdateLoan(ctx context.Context, loan *domain.Loan) error
}

// AssetStatusReader is the subset of asset persistence the workflow
// services need to check availability without depending on the full
// repository surface.
type AssetStatusReader interface {
	GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error)
}

// Notifier fires the side-effect notifications workflows emit on success
// (§4.2); its failure is logged but must never abort the primary mutation
// (§7), so services call it best-effort after the commit.
type Notifier interface {
	Notify(ctx context.Context, userID domain.ID, title, message, entityType string, entityID domain.ID)
}

// LoanService implements the internal-loan FSM (§4.2). Asset side effects
// on checkout/checkin go through internal/lifecycle, mapping the spec's
// "InUse" side effect onto AssetDeployed since that is the lifecycle
// FSM's closest analogue (see DESIGN.md).
type LoanService struct {
	repo    LoanRepository
	assets  AssetStatusReader
	machine *lifecycle.Machine
	notify  Notifier
	now     func() time.Time
}

func NewLoanService(repo LoanRepository, assets AssetStatusReader, machine *lifecycle.Machine, notify Notifier) *LoanService {
	return &LoanService{repo: repo, assets: assets, machine: machine, notify: notify, now: time.Now}
}

// Create validates the asset is available and opens a Requested loan.
func (s *LoanService) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	asset, err := s.assets.GetAsset(ctx, loan.AssetID)
	if err != nil {
		return nil, err
	}
	if !asset.Status.IsAvailable() {
		return nil, apierrors.BusinessRuleViolation("asset_unavailable", "asset is not available for loan")
	}
	loan.ID = domain.NewID()
	loan.Status = domain.LoanRequested
	loan.CreatedAt = s.now().UTC()
	loan.UpdatedAt = loan.CreatedAt
	if err := s.repo.CreateLoan(ctx, loan); err != nil {
		return nil, apierrors.Database("create_loan", err)
	}
	return loan, nil
}

// Approve moves Requested -> Approved and notifies the borrower.
func (s *LoanService) Approve(ctx context.Context, id domain.ID, approverID domain.ID) (*domain.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanRequested {
		return nil, apierrors.InvalidStateTransition(string(loan.Status), string(domain.LoanApproved))
	}
	loan.Status = domain.LoanApproved
	loan.ApproverID = &approverID
	loan.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return nil, apierrors.Database("approve_loan", err)
	}
	s.notify.Notify(ctx, loan.BorrowerID, "Loan approved",
		"Your loan request has been approved", "loan", loan.ID)
	return loan, nil
}

// Reject moves Requested -> Rejected.
func (s *LoanService) Reject(ctx context.Context, id domain.ID, approverID domain.ID) (*domain.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanRequested {
		return nil, apierrors.InvalidStateTransition(string(loan.Status), string(domain.LoanRejected))
	}
	loan.Status = domain.LoanRejected
	loan.ApproverID = &approverID
	loan.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return nil, apierrors.Database("reject_loan", err)
	}
	return loan, nil
}

// Checkout requires Approved status and terms_accepted=true; it moves the
// asset InInventory -> Deployed.
func (s *LoanService) Checkout(ctx context.Context, id domain.ID, actorID domain.ID, conditionBefore string) (*domain.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanApproved {
		return nil, apierrors.InvalidStateTransition(string(loan.Status), string(domain.LoanCheckedOut))
	}
	if !loan.TermsAccepted {
		return nil, apierrors.BusinessRuleViolation("terms_not_accepted", "borrower must accept loan terms before checkout")
	}
	if _, err := s.machine.Transition(ctx, loan.AssetID, domain.AssetDeployed, "loan_checkout", actorID); err != nil {
		return nil, err
	}
	loan.Status = domain.LoanCheckedOut
	loan.ConditionBefore = conditionBefore
	loan.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return nil, apierrors.Database("checkout_loan", err)
	}
	return loan, nil
}

// Checkin requires status in {CheckedOut, InUse, Overdue}; it moves the
// asset back to InInventory. Deployed->InInventory is not a lifecycle graph
// edge (§4.1), so this calls ForceTransition rather than Transition, the
// same bypass the original loan service uses for this exact step.
func (s *LoanService) Checkin(ctx context.Context, id domain.ID, actorID domain.ID, conditionAfter string) (*domain.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	switch loan.Status {
	case domain.LoanCheckedOut, domain.LoanInUse, domain.LoanOverdue:
	default:
		return nil, apierrors.InvalidStateTransition(string(loan.Status), string(domain.LoanReturned))
	}
	if _, err := s.machine.ForceTransition(ctx, loan.AssetID, domain.AssetInInventory, "loan_checkin", actorID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	loan.Status = domain.LoanReturned
	loan.ConditionAfter = conditionAfter
	loan.ActualReturn = &now
	loan.UpdatedAt = now
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return nil, apierrors.Database("checkin_loan", err)
	}
	return loan, nil
}

// SweepOverdue marks loans past expected_return as Overdue. Called by the
// scheduler's overdue-loans job (§4.6); failures for one loan do not
// abort the sweep for the rest.
func (s *LoanService) SweepOverdue(ctx context.Context, today time.Time, loans []*domain.Loan) (affected int) {
	for _, loan := range loans {
		if !loan.IsOverdue(today) {
			continue
		}
		loan.Status = domain.LoanOverdue
		loan.UpdatedAt = today
		if err := s.repo.UpdateLoan(ctx, loan); err != nil {
			continue
		}
		affected++
		daysOverdue := int(today.Sub(loan.ExpectedReturn).Hours() / 24)
		s.notify.Notify(ctx, loan.BorrowerID, "Loan overdue",
			overdueMessage(daysOverdue), "loan", loan.ID)
	}
	return affected
}

func overdueMessage(days int) string {
	if days <= 0 {
		days = 1
	}
	return fmt.Sprintf("Your loan is %d day(s) overdue", days)
}
