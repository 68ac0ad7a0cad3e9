package billing

import (
	"context"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// TimesheetRepository is the persistence seam for RentalTimesheet (§4.3).
type TimesheetRepository interface {
	GetTimesheet(ctx context.Context, id domain.ID) (*domain.RentalTimesheet, error)
	UpdateTimesheet(ctx context.Context, ts *domain.RentalTimesheet) error
}

// UserLevelLookup resolves a user's can_approve_timesheet flag, needed for
// the PIC-approval guard.
type UserLevelLookup interface {
	CanApproveTimesheet(ctx context.Context, userID domain.ID) (bool, error)
}

// TimesheetService implements the Draft→Submitted→Verified→Approved FSM.
// Rejected/Revision are reachable only from Submitted (through Verify);
// approval of a Verified timesheet has no reject or revision outcome.
type TimesheetService struct {
	repo  TimesheetRepository
	users UserLevelLookup
}

func NewTimesheetService(repo TimesheetRepository, users UserLevelLookup) *TimesheetService {
	return &TimesheetService{repo: repo, users: users}
}

// Create computes derived fields and stores a new Draft timesheet.
func (s *TimesheetService) Create(ctx context.Context, ts *domain.RentalTimesheet) (*domain.RentalTimesheet, error) {
	ts.ComputeDerived()
	ts.Status = domain.TimesheetDraft
	if err := s.repo.UpdateTimesheet(ctx, ts); err != nil {
		return nil, apierrors.Database("create_timesheet", err)
	}
	return ts, nil
}

// Edit re-applies derived fields to a Draft timesheet. Only the original
// checker may edit, and only while still Draft (§4.3).
func (s *TimesheetService) Edit(ctx context.Context, id domain.ID, checkerID domain.ID, mutate func(*domain.RentalTimesheet)) (*domain.RentalTimesheet, error) {
	ts, err := s.repo.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ts.Status != domain.TimesheetDraft {
		return nil, apierrors.BusinessRuleViolation("timesheet_state", "timesheet can only be edited while in draft")
	}
	if ts.CheckerID != checkerID {
		return nil, apierrors.Forbidden("only the checker who created this timesheet may edit it")
	}
	mutate(ts)
	ts.ComputeDerived()
	if err := s.repo.UpdateTimesheet(ctx, ts); err != nil {
		return nil, apierrors.Database("edit_timesheet", err)
	}
	return ts, nil
}

// Submit moves Draft -> Submitted.
func (s *TimesheetService) Submit(ctx context.Context, id domain.ID, checkerID domain.ID) (*domain.RentalTimesheet, error) {
	ts, err := s.repo.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ts.Status != domain.TimesheetDraft {
		return nil, apierrors.InvalidStateTransition(string(ts.Status), string(domain.TimesheetSubmitted))
	}
	if ts.CheckerID != checkerID {
		return nil, apierrors.Forbidden("only the checker who created this timesheet may submit it")
	}
	ts.Status = domain.TimesheetSubmitted
	if err := s.repo.UpdateTimesheet(ctx, ts); err != nil {
		return nil, apierrors.Database("submit_timesheet", err)
	}
	return ts, nil
}

// Verify moves Submitted -> Verified|Rejected|Revision.
func (s *TimesheetService) Verify(ctx context.Context, id domain.ID, verifierID domain.ID, outcome domain.TimesheetStatus, notes string) (*domain.RentalTimesheet, error) {
	if outcome != domain.TimesheetVerified && outcome != domain.TimesheetRejected && outcome != domain.TimesheetRevision {
		return nil, apierrors.ValidationError("outcome", "must be verified, rejected, or revision")
	}
	ts, err := s.repo.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ts.Status != domain.TimesheetSubmitted {
		return nil, apierrors.InvalidStateTransition(string(ts.Status), string(outcome))
	}
	ts.Status = outcome
	ts.VerifierID = &verifierID
	ts.Notes = notes
	if err := s.repo.UpdateTimesheet(ctx, ts); err != nil {
		return nil, apierrors.Database("verify_timesheet", err)
	}
	return ts, nil
}

// Approve moves Verified -> Approved, gated on the client PIC carrying
// can_approve_timesheet=true (§4.3).
func (s *TimesheetService) Approve(ctx context.Context, id domain.ID, picID domain.ID) (*domain.RentalTimesheet, error) {
	ts, err := s.repo.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ts.Status != domain.TimesheetVerified {
		return nil, apierrors.InvalidStateTransition(string(ts.Status), string(domain.TimesheetApproved))
	}
	canApprove, err := s.users.CanApproveTimesheet(ctx, picID)
	if err != nil {
		return nil, apierrors.Internal("check approval authority", err)
	}
	if !canApprove {
		return nil, apierrors.Unauthorized("user is not authorized to approve timesheets")
	}
	ts.Status = domain.TimesheetApproved
	ts.ClientPICID = &picID
	if err := s.repo.UpdateTimesheet(ctx, ts); err != nil {
		return nil, apierrors.Database("approve_timesheet", err)
	}
	return ts, nil
}
