package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gainsfolio/backend/src/models"
)

func TestValidateCompleteHistory(t *testing.T) {
	v := NewHistoryValidator()
	history := []models.Transaction{
		buyTx(day(2022, time.January, 1), 100, 1.0),
		sellTx(day(2022, time.June, 1), 60, 1.2),
		sellTx(day(2023, time.June, 1), 40, 1.3),
	}

	result := v.Validate(history)

	assert.True(t, result.Complete)
	assert.Nil(t, result.Deficit)
}

func TestValidateEmptyHistoryIsComplete(t *testing.T) {
	v := NewHistoryValidator()

	result := v.Validate(nil)

	assert.True(t, result.Complete)
	assert.Nil(t, result.Deficit)
}

func TestValidateReportsShortfallAtSaleDate(t *testing.T) {
	v := NewHistoryValidator()
	saleDate := day(2023, time.June, 5)
	history := []models.Transaction{
		buyTx(day(2023, time.January, 5), 50, 2.0),
		sellTx(saleDate, 100, 2.5),
	}

	result := v.Validate(history)

	require.False(t, result.Complete)
	require.NotNil(t, result.Deficit)
	assert.Equal(t, testISIN, result.Deficit.ISIN)
	assert.True(t, result.Deficit.Date.Equal(saleDate))
	assert.InDelta(t, 50, result.Deficit.Shortfall, 1e-9)
}

func TestValidateReportsOnlyFirstDeficit(t *testing.T) {
	v := NewHistoryValidator()
	firstBad := day(2022, time.March, 1)
	history := []models.Transaction{
		buyTx(day(2022, time.January, 1), 10, 1.0),
		sellTx(firstBad, 25, 1.1),
		sellTx(day(2022, time.September, 1), 40, 1.2),
	}

	result := v.Validate(history)

	require.False(t, result.Complete)
	require.NotNil(t, result.Deficit)
	assert.True(t, result.Deficit.Date.Equal(firstBad))
	assert.InDelta(t, 15, result.Deficit.Shortfall, 1e-9)
}

func TestValidateFirstDeficientAssetByInputOrder(t *testing.T) {
	v := NewHistoryValidator()
	second := sellTx(day(2023, time.January, 1), 5, 1.0)
	second.ISIN = "US0000OTHER1"
	first := sellTx(day(2023, time.June, 1), 5, 1.0)

	// Both assets are deficient; the asset appearing first in the input is
	// the one reported, regardless of which deficit is older.
	result := v.Validate([]models.Transaction{first, second})

	require.False(t, result.Complete)
	require.NotNil(t, result.Deficit)
	assert.Equal(t, testISIN, result.Deficit.ISIN)
}

func TestValidateSameDayBuyListedFirstCounts(t *testing.T) {
	v := NewHistoryValidator()
	d := day(2023, time.May, 15)

	result := v.Validate([]models.Transaction{
		buyTx(d, 100, 1.0),
		sellTx(d, 100, 1.1),
	})

	assert.True(t, result.Complete)
}

func TestValidateToleranceOnBorderlineExcursion(t *testing.T) {
	v := NewHistoryValidator()
	history := []models.Transaction{
		buyTx(day(2023, time.January, 1), 100, 1.0),
		sellTx(day(2023, time.February, 1), 100.0005, 1.1),
	}

	// Excursion below the shared tolerance is floating-point drift, not
	// missing history.
	result := v.Validate(history)

	assert.True(t, result.Complete)
}

func TestValidateAgreesWithEngineOnCompleteness(t *testing.T) {
	histories := map[string][]models.Transaction{
		"covered": {
			buyTx(day(2022, time.January, 1), 100, 1.0),
			sellTx(day(2022, time.June, 1), 100, 1.2),
		},
		"underfunded": {
			buyTx(day(2022, time.January, 1), 50, 1.0),
			sellTx(day(2022, time.June, 1), 100, 1.2),
		},
		"sell before buy": {
			sellTx(day(2022, time.January, 1), 10, 1.0),
			buyTx(day(2022, time.June, 1), 10, 1.2),
		},
		"multi-lot covered": {
			buyTx(day(2022, time.January, 1), 60, 1.0),
			buyTx(day(2022, time.February, 1), 60, 1.1),
			sellTx(day(2022, time.June, 1), 120, 1.2),
		},
	}

	p := NewFIFOProcessor()
	v := NewHistoryValidator()

	for name, history := range histories {
		t.Run(name, func(t *testing.T) {
			validation := v.Validate(history)
			result := p.Match(history)

			engineSawShortfall := false
			for _, record := range allRecords(result) {
				if record.DrawnQuantity() < record.Sale.Quantity-quantityTolerance {
					engineSawShortfall = true
				}
			}
			assert.Equal(t, !validation.Complete, engineSawShortfall)
		})
	}
}
