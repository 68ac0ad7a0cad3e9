package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/assetledger/backend/internal/domain"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCalculate_WorkedExample(t *testing.T) {
	rate := domain.RateSnapshot{
		HourlyRate:             dec(50000),
		MinimumHours:           dec(200),
		OvertimeMultiplier:     decimal.NewFromFloat(1.25),
		StandbyMultiplier:      decimal.NewFromFloat(0.5),
		BreakdownPenaltyPerDay: decimal.Zero,
		TaxPercentage:          dec(11),
		DiscountPercentage:     decimal.Zero,
	}

	got := Calculate(Inputs{
		OperatingHours: dec(220),
		StandbyHours:   dec(10),
		OvertimeHours:  dec(20),
		BreakdownHours: dec(8),
		Rate:           rate,
	})

	assert.True(t, dec(220).Equal(got.Billable))
	assert.True(t, decimal.Zero.Equal(got.Shortfall))
	assert.True(t, dec(11_000_000).Equal(got.Base))
	assert.True(t, dec(250_000).Equal(got.Standby))
	assert.True(t, dec(1_250_000).Equal(got.Overtime))
	assert.True(t, decimal.Zero.Equal(got.BreakdownPenalty))
	assert.True(t, dec(12_500_000).Equal(got.Subtotal))
	assert.True(t, decimal.Zero.Equal(got.Discount))
	assert.True(t, dec(1_375_000).Equal(got.Tax))
	assert.True(t, dec(13_875_000).Equal(got.Total))
}

func TestCalculate_ShortfallWhenBelowMinimum(t *testing.T) {
	rate := domain.DefaultRateSnapshot(dec(100))
	got := Calculate(Inputs{
		OperatingHours: dec(150),
		Rate:           rate,
	})
	assert.True(t, dec(50).Equal(got.Shortfall))
	assert.True(t, dec(200).Equal(got.Billable))
}
