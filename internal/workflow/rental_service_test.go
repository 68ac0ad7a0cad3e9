package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/lifecycle"
)

type fakeRentals struct {
	rentals    map[domain.ID]*domain.Rental
	handovers  []*domain.RentalHandover
}

func newFakeRentals() *fakeRentals {
	return &fakeRentals{rentals: map[domain.ID]*domain.Rental{}}
}

func (f *fakeRentals) GetRental(ctx context.Context, id domain.ID) (*domain.Rental, error) {
	return f.rentals[id], nil
}
func (f *fakeRentals) CreateRental(ctx context.Context, rental *domain.Rental) error {
	f.rentals[rental.ID] = rental
	return nil
}
func (f *fakeRentals) UpdateRental(ctx context.Context, rental *domain.Rental) error {
	f.rentals[rental.ID] = rental
	return nil
}
func (f *fakeRentals) CreateHandover(ctx context.Context, handover *domain.RentalHandover) error {
	f.handovers = append(f.handovers, handover)
	return nil
}

type fakeClients struct {
	clients map[domain.ID]*domain.Client
}

func (f *fakeClients) GetClient(ctx context.Context, id domain.ID) (*domain.Client, error) {
	return f.clients[id], nil
}

func TestRentalService_OverdueReturn_WorkedExample(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetDeployed}
	assets := newFakeAssets(asset)
	machine := lifecycle.NewMachine(assets)
	rentals := newFakeRentals()
	svc := NewRentalService(rentals, assets, &fakeClients{}, machine)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expectedEnd := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	returned := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	rental := &domain.Rental{
		ID:          domain.NewID(),
		AssetID:     asset.ID,
		Status:      domain.RentalRentedOut,
		StartDate:   &start,
		ExpectedEnd: &expectedEnd,
		DailyRate:   decimal.NewFromInt(100),
	}
	rentals.rentals[rental.ID] = rental

	updated, err := svc.Return(context.Background(), rental.ID, domain.NewID(), "Good", false, nil, returned)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.TotalDays)
	assert.True(t, decimal.NewFromInt(700).Equal(updated.Subtotal))
	assert.True(t, decimal.NewFromInt(20).Equal(updated.Penalty))
	assert.True(t, decimal.NewFromInt(720).Equal(updated.Total))
	assert.Equal(t, domain.AssetInInventory, asset.Status)
}

func TestRentalService_CreateRejectsInactiveClient(t *testing.T) {
	asset := &domain.Asset{ID: domain.NewID(), Status: domain.AssetInInventory}
	assets := newFakeAssets(asset)
	machine := lifecycle.NewMachine(assets)
	client := &domain.Client{ID: domain.NewID(), IsActive: false}
	clients := &fakeClients{clients: map[domain.ID]*domain.Client{client.ID: client}}
	svc := NewRentalService(newFakeRentals(), assets, clients, machine)

	_, err := svc.Create(context.Background(), &domain.Rental{AssetID: asset.ID, ClientID: client.ID})
	require.Error(t, err)
}
