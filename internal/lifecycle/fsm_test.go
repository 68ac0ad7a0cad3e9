package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type fakeAssetRepo struct {
	asset *domain.Asset
}

func (f *fakeAssetRepo) GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error) {
	if f.asset == nil || f.asset.ID != id {
		return nil, apierrors.NotFound("asset", id.String())
	}
	return f.asset, nil
}

func (f *fakeAssetRepo) TransitionAsset(ctx context.Context, id domain.ID, to domain.AssetState, reason string, actorID domain.ID, metadata map[string]any) (*domain.Asset, error) {
	f.asset.Status = to
	return f.asset, nil
}

func TestCanTransition_DirectEdges(t *testing.T) {
	assert.True(t, CanTransition(domain.AssetInInventory, domain.AssetDeployed))
	assert.False(t, CanTransition(domain.AssetDeployed, domain.AssetInInventory))
	assert.False(t, CanTransition(domain.AssetArchived, domain.AssetInInventory))
}

func TestCanTransition_DeployedFansOutToMaintenanceRepairConversionRetired(t *testing.T) {
	assert.True(t, CanTransition(domain.AssetDeployed, domain.AssetUnderMaintenance))
	assert.True(t, CanTransition(domain.AssetDeployed, domain.AssetUnderRepair))
	assert.True(t, CanTransition(domain.AssetDeployed, domain.AssetUnderConversion))
	assert.True(t, CanTransition(domain.AssetDeployed, domain.AssetRetired))
}

func TestCanTransition_MaintenanceRepairConversionReturnToDeployed(t *testing.T) {
	assert.True(t, CanTransition(domain.AssetUnderMaintenance, domain.AssetDeployed))
	assert.True(t, CanTransition(domain.AssetUnderRepair, domain.AssetDeployed))
	assert.True(t, CanTransition(domain.AssetUnderConversion, domain.AssetDeployed))
}

func TestCanTransition_LostStolenOnlyReachesArchived(t *testing.T) {
	assert.True(t, CanTransition(domain.AssetLostStolen, domain.AssetArchived))
	assert.False(t, CanTransition(domain.AssetLostStolen, domain.AssetInInventory))
	assert.False(t, CanTransition(domain.AssetLostStolen, domain.AssetRetired))
}

func TestCanTransition_UniversalLostStolenEdge(t *testing.T) {
	assert.True(t, CanTransition(domain.AssetDeployed, domain.AssetLostStolen))
	assert.True(t, CanTransition(domain.AssetInInventory, domain.AssetLostStolen))
	assert.False(t, CanTransition(domain.AssetArchived, domain.AssetLostStolen))
}

func TestTransition_RejectsApprovalGatedTarget(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetInInventory}
	m := NewMachine(&fakeAssetRepo{asset: asset})

	_, err := m.Transition(context.Background(), asset.ID, domain.AssetRetired, "eol", domain.NewID())
	require.Error(t, err)
	se := apierrors.As(err)
	require.NotNil(t, se)
	assert.Equal(t, apierrors.CodeBusinessRule, se.Code)
}

func TestTransition_RejectsIllegalEdge(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetArchived}
	m := NewMachine(&fakeAssetRepo{asset: asset})

	_, err := m.Transition(context.Background(), asset.ID, domain.AssetDeployed, "oops", domain.NewID())
	require.Error(t, err)
	se := apierrors.As(err)
	require.NotNil(t, se)
	assert.Equal(t, apierrors.CodeInvalidStateTransition, se.Code)
}

func TestTransition_CommitsLegalDirectEdge(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetUnderMaintenance}
	m := NewMachine(&fakeAssetRepo{asset: asset})

	updated, err := m.Transition(context.Background(), asset.ID, domain.AssetDeployed, "pm complete", domain.NewID())
	require.NoError(t, err)
	assert.Equal(t, domain.AssetDeployed, updated.Status)
}

func TestCommitApproved_StillEnforcesGraph(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetArchived}
	m := NewMachine(&fakeAssetRepo{asset: asset})

	_, err := m.CommitApproved(context.Background(), asset.ID, domain.AssetRetired, "eol", domain.NewID(), domain.NewID())
	require.Error(t, err)
}

// TestCommitApproved_DeployedToRetired covers spec scenario 4: a
// Deployed->Retired transition is rejected by Transition as approval-gated,
// then committed by CommitApproved once the two-level approval clears.
func TestCommitApproved_DeployedToRetired(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetDeployed}
	m := NewMachine(&fakeAssetRepo{asset: asset})

	_, err := m.Transition(context.Background(), asset.ID, domain.AssetRetired, "eol", domain.NewID())
	require.Error(t, err)

	updated, err := m.CommitApproved(context.Background(), asset.ID, domain.AssetRetired, "eol", domain.NewID(), domain.NewID())
	require.NoError(t, err)
	assert.Equal(t, domain.AssetRetired, updated.Status)
}

func TestCommitApproved_LostStolenToArchived(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetLostStolen}
	m := NewMachine(&fakeAssetRepo{asset: asset})

	updated, err := m.CommitApproved(context.Background(), asset.ID, domain.AssetArchived, "recovered write-off", domain.NewID(), domain.NewID())
	require.NoError(t, err)
	assert.Equal(t, domain.AssetArchived, updated.Status)
}
