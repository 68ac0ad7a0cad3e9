// Package lifecycle implements the asset lifecycle finite-state machine
// (SPEC_FULL §4.1): the transition graph, guard evaluation, and the
// history-recording side effect that must accompany every mutation.
package lifecycle

import (
	"context"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// transitions is the authoritative adjacency list for AssetState. Every
// non-terminal state reaches AssetLostStolen directly (the universal edge), so that
// edge is added programmatically in allowedFrom rather than repeated here.
var transitions = map[domain.AssetState][]domain.AssetState{
	domain.AssetPlanning:         {domain.AssetProcurement},
	domain.AssetProcurement:      {domain.AssetReceived},
	domain.AssetReceived:         {domain.AssetInInventory},
	domain.AssetInInventory:      {domain.AssetDeployed},
	domain.AssetDeployed:         {domain.AssetUnderMaintenance, domain.AssetUnderRepair, domain.AssetUnderConversion, domain.AssetRetired},
	domain.AssetUnderMaintenance: {domain.AssetDeployed},
	domain.AssetUnderRepair:      {domain.AssetDeployed},
	domain.AssetUnderConversion:  {domain.AssetDeployed},
	domain.AssetRetired:          {domain.AssetDisposed},
	domain.AssetDisposed:         {},
	domain.AssetLostStolen:       {domain.AssetArchived},
	domain.AssetArchived:         {},
}

// approvalGatedTargets names transitions that require an approved
// ApprovalRequest before they may be committed (§4.1, §4.2).
var approvalGatedTargets = map[domain.AssetState]bool{
	domain.AssetRetired:         true,
	domain.AssetDisposed:        true,
	domain.AssetUnderConversion: true,
}

// allowedFrom returns the states reachable directly from s, including the
// universal LostStolen edge available from every non-terminal state.
func allowedFrom(s domain.AssetState) []domain.AssetState {
	out := append([]domain.AssetState{}, transitions[s]...)
	if !s.Meta().IsTerminal && s != domain.AssetLostStolen {
		out = append(out, domain.AssetLostStolen)
	}
	return out
}

// CanTransition reports whether from->to is a legal edge in the graph.
func CanTransition(from, to domain.AssetState) bool {
	for _, candidate := range allowedFrom(from) {
		if candidate == to {
			return true
		}
	}
	return false
}

// RequiresApproval reports whether entering `to` must be gated behind an
// approved ApprovalRequest rather than committed directly.
func RequiresApproval(to domain.AssetState) bool {
	return approvalGatedTargets[to]
}

// AssetRepository is the persistence seam the FSM needs: read the current
// asset, write the new status, and append the history row in one
// transaction (§4.1's atomicity invariant).
type AssetRepository interface {
	GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error)
	TransitionAsset(ctx context.Context, id domain.ID, to domain.AssetState, reason string, actorID domain.ID, metadata map[string]any) (*domain.Asset, error)
}

// Machine drives asset state transitions against a repository.
type Machine struct {
	repo AssetRepository
}

func NewMachine(repo AssetRepository) *Machine {
	return &Machine{repo: repo}
}

// Transition validates and commits a direct (non-approval-gated) state
// change. Approval-gated targets must go through internal/workflow's
// conversion/retirement services instead, which call CommitApproved once
// their own guard (an approved ApprovalRequest) is satisfied.
func (m *Machine) Transition(ctx context.Context, assetID domain.ID, to domain.AssetState, reason string, actorID domain.ID) (*domain.Asset, error) {
	asset, err := m.repo.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidAssetState(to) {
		return nil, apierrors.ValidationError("status", "unknown asset state")
	}
	if RequiresApproval(to) {
		return nil, apierrors.BusinessRuleViolation("approval_required",
			"this transition requires an approved request")
	}
	if !CanTransition(asset.Status, to) {
		return nil, apierrors.InvalidStateTransition(string(asset.Status), string(to))
	}
	return m.repo.TransitionAsset(ctx, assetID, to, reason, actorID, nil)
}

// ForceTransition writes a new status without checking graph legality. The
// original service layer's loan/rental checkin and return flows call the
// asset repository's update_status directly rather than going through the
// lifecycle FSM's can_transition_to guard, because day-to-day loan/rental
// movement between InInventory and Deployed is tracked separately from the
// procurement-to-disposal lifecycle graph (§4.1, §4.2). Callers are
// responsible for only using this where that bypass is actually warranted;
// everything else must go through Transition or CommitApproved.
func (m *Machine) ForceTransition(ctx context.Context, assetID domain.ID, to domain.AssetState, reason string, actorID domain.ID) (*domain.Asset, error) {
	if _, err := m.repo.GetAsset(ctx, assetID); err != nil {
		return nil, err
	}
	if !domain.ValidAssetState(to) {
		return nil, apierrors.ValidationError("status", "unknown asset state")
	}
	return m.repo.TransitionAsset(ctx, assetID, to, reason, actorID, nil)
}

// CommitApproved commits an approval-gated transition after the caller has
// already verified an ApprovalRequest reached domain.ApprovalApprovedL2.
// It still re-checks graph legality: an approval does not bypass the
// adjacency rules, only the approval-required guard.
func (m *Machine) CommitApproved(ctx context.Context, assetID domain.ID, to domain.AssetState, reason string, actorID domain.ID, approvalID domain.ID) (*domain.Asset, error) {
	asset, err := m.repo.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(asset.Status, to) {
		return nil, apierrors.InvalidStateTransition(string(asset.Status), string(to))
	}
	return m.repo.TransitionAsset(ctx, assetID, to, reason, actorID, map[string]any{
		"approval_id": approvalID.String(),
		"committed_at": time.Now().UTC(),
	})
}
