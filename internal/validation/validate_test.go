package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
)

type createAssetRequest struct {
	Code     string `validate:"required"`
	Name     string `validate:"required,min=2"`
	Quantity int    `validate:"gte=1"`
	Currency string `validate:"oneof=USD IDR SGD"`
}

func TestStruct_ReturnsFirstViolation(t *testing.T) {
	err := Struct(createAssetRequest{Name: "A", Quantity: 0, Currency: "EUR"})
	require.Error(t, err)
	se := apierrors.As(err)
	require.NotNil(t, se)
	assert.Equal(t, apierrors.CodeValidation, se.Code)
}

func TestStruct_PassesValidInput(t *testing.T) {
	err := Struct(createAssetRequest{Code: "A-1", Name: "Excavator", Quantity: 1, Currency: "USD"})
	assert.NoError(t, err)
}

func TestAll_ReturnsEveryViolation(t *testing.T) {
	errs := All(createAssetRequest{})
	assert.GreaterOrEqual(t, len(errs), 3)
}
