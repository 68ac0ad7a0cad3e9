package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

func newMockRepo(t *testing.T) (*AssetRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	return NewAssetRepo(db), mock, func() { db.Close() }
}

func assetColumns() []string {
	return []string{
		"id", "organization_id", "code", "name", "category_id", "location_id", "department_id",
		"assignee_id", "vendor_id", "status", "condition", "serial", "brand", "model", "year",
		"specification", "purchase_date", "purchase_price", "currency", "quantity",
		"residual_value", "useful_life_mo", "notes", "created_at", "updated_at",
	}
}

func TestAssetRepo_GetAsset_NotFound(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	id := domain.NewID()
	mock.ExpectQuery("SELECT \\* FROM assets WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(assetColumns()))

	_, err := repo.GetAsset(context.Background(), id)
	require.Error(t, err)
	se := apierrors.As(err)
	require.NotNil(t, se)
	assert.Equal(t, apierrors.CodeNotFound, se.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepo_TransitionAsset_ConflictOnConcurrentChange(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	id := domain.NewID()
	actor := domain.NewID()
	categoryID, locationID, departmentID := domain.NewID(), domain.NewID(), domain.NewID()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM assets WHERE id = \\$1 FOR UPDATE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(assetColumns()).AddRow(
			id.String(), "org-1", "AST-1", "Excavator", categoryID.String(), locationID.String(), departmentID.String(),
			nil, nil, string(domain.AssetInInventory), "good", "SN-1", "Komatsu", "PC200", 2020,
			[]byte("{}"), nil, decimal.NewFromInt(100), "USD", 1, decimal.Zero, 60, "", now, now,
		))
	mock.ExpectExec("UPDATE assets SET status").
		WithArgs(id, string(domain.AssetUnderMaintenance), sqlmock.AnyArg(), string(domain.AssetInInventory)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.TransitionAsset(context.Background(), id, domain.AssetUnderMaintenance, "scheduled service", actor, nil)
	require.Error(t, err)
	se := apierrors.As(err)
	require.NotNil(t, se)
	assert.Equal(t, apierrors.CodeConflict, se.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
