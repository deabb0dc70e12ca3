package processors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gainsfolio/backend/src/models"
)

const testISIN = "IE00TEST0001"

var txSeq int

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTx(kind models.TransactionKind, date time.Time, qty, price float64) models.Transaction {
	txSeq++
	return models.Transaction{
		ID:           fmt.Sprintf("tx-%d", txSeq),
		Kind:         kind,
		Date:         date,
		ISIN:         testISIN,
		ProductName:  "Test Fund",
		Quantity:     qty,
		UnitPriceEUR: price,
		Currency:     "EUR",
		ExchangeRate: 1,
	}
}

func buyTx(date time.Time, qty, price float64) models.Transaction {
	return newTx(models.KindBuy, date, qty, price)
}

func sellTx(date time.Time, qty, price float64) models.Transaction {
	return newTx(models.KindSell, date, qty, price)
}

func allRecords(result models.MatchingResult) []models.MatchRecord {
	var records []models.MatchRecord
	for _, yearRecords := range result.SalesByYear {
		records = append(records, yearRecords...)
	}
	return records
}

func TestMatchSingleBuyFullyCoversSale(t *testing.T) {
	p := NewFIFOProcessor()
	b := buyTx(day(2023, time.March, 1), 100, 1.5)
	s := sellTx(day(2023, time.March, 2), 100, 1.8)

	result := p.Match([]models.Transaction{b, s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	require.Len(t, records[0].Draws, 1)
	assert.Equal(t, b.ID, records[0].Draws[0].Buy.ID)
	assert.InDelta(t, 100, records[0].DrawnQuantity(), 1e-9)
	assert.Empty(t, result.RemainingLots)
	assert.InDelta(t, 0, result.RemainingValueEUR, 1e-9)
}

func TestMatchSaleSpansMultipleLots(t *testing.T) {
	p := NewFIFOProcessor()
	b1 := buyTx(day(2023, time.January, 10), 100, 1.0)
	b2 := buyTx(day(2023, time.February, 10), 50, 1.02)
	s := sellTx(day(2023, time.March, 10), 120, 1.1)

	result := p.Match([]models.Transaction{b1, b2, s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	require.Len(t, records[0].Draws, 2)
	assert.Equal(t, b1.ID, records[0].Draws[0].Buy.ID)
	assert.InDelta(t, 100, records[0].Draws[0].Quantity, 1e-9)
	assert.Equal(t, b2.ID, records[0].Draws[1].Buy.ID)
	assert.InDelta(t, 20, records[0].Draws[1].Quantity, 1e-9)

	require.Len(t, result.RemainingLots, 1)
	assert.Equal(t, b2.ID, result.RemainingLots[0].Buy.ID)
	assert.InDelta(t, 30, result.RemainingLots[0].Remaining, 1e-9)
	assert.InDelta(t, 30*1.02, result.RemainingValueEUR, 1e-9)
}

func TestMatchPartialCoverageWhenInventoryShort(t *testing.T) {
	p := NewFIFOProcessor()
	b := buyTx(day(2023, time.January, 5), 50, 2.0)
	s := sellTx(day(2023, time.June, 5), 100, 2.5)

	result := p.Match([]models.Transaction{b, s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	assert.InDelta(t, 50, records[0].DrawnQuantity(), 1e-9)
	assert.Less(t, records[0].DrawnQuantity(), records[0].Sale.Quantity)
	assert.Empty(t, result.RemainingLots)
}

func TestMatchMultiYearSalesShareOneBuy(t *testing.T) {
	p := NewFIFOProcessor()
	b := buyTx(day(2020, time.June, 1), 100, 1.0)
	s1 := sellTx(day(2021, time.June, 1), 30, 1.2)
	s2 := sellTx(day(2022, time.June, 1), 50, 1.3)
	s3 := sellTx(day(2023, time.June, 1), 20, 1.4)

	result := p.Match([]models.Transaction{b, s1, s2, s3})

	require.Len(t, result.SalesByYear, 3)
	var total float64
	for _, year := range []int{2021, 2022, 2023} {
		records := result.SalesByYear[year]
		require.Len(t, records, 1, "year %d", year)
		require.Len(t, records[0].Draws, 1)
		assert.Equal(t, b.ID, records[0].Draws[0].Buy.ID)
		total += records[0].DrawnQuantity()
	}
	assert.InDelta(t, 100, total, 1e-9)
	assert.Empty(t, result.RemainingLots)
}

func TestMatchEmptyHistory(t *testing.T) {
	p := NewFIFOProcessor()

	result := p.Match(nil)

	assert.Empty(t, result.SalesByYear)
	assert.Empty(t, result.RemainingLots)
	assert.InDelta(t, 0, result.RemainingValueEUR, 1e-9)
}

func TestMatchOnlyBuysLeavesFullInventory(t *testing.T) {
	p := NewFIFOProcessor()
	b1 := buyTx(day(2023, time.January, 1), 10, 5.0)
	b2 := buyTx(day(2023, time.February, 1), 20, 6.0)

	result := p.Match([]models.Transaction{b1, b2})

	assert.Empty(t, result.SalesByYear)
	require.Len(t, result.RemainingLots, 2)
	assert.Equal(t, b1.ID, result.RemainingLots[0].Buy.ID)
	assert.Equal(t, b2.ID, result.RemainingLots[1].Buy.ID)
	assert.InDelta(t, 10*5.0+20*6.0, result.RemainingValueEUR, 1e-9)
}

func TestMatchOnlySellsYieldsEmptyDraws(t *testing.T) {
	p := NewFIFOProcessor()
	s := sellTx(day(2023, time.April, 1), 40, 3.0)

	result := p.Match([]models.Transaction{s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Draws)
	assert.InDelta(t, 0, records[0].DrawnQuantity(), 1e-9)
}

func TestMatchSameDayBuyListedFirstCoversSale(t *testing.T) {
	p := NewFIFOProcessor()
	d := day(2023, time.May, 15)
	b := buyTx(d, 60, 1.0)
	s := sellTx(d, 100, 1.1)

	result := p.Match([]models.Transaction{b, s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	require.Len(t, records[0].Draws, 1)
	assert.Equal(t, b.ID, records[0].Draws[0].Buy.ID)
	assert.InDelta(t, 60, records[0].DrawnQuantity(), 1e-9)
}

func TestMatchDrainsOldestLotFirst(t *testing.T) {
	p := NewFIFOProcessor()
	older := buyTx(day(2022, time.January, 1), 30, 1.0)
	newer := buyTx(day(2022, time.June, 1), 30, 2.0)
	s := sellTx(day(2023, time.January, 1), 40, 2.5)

	result := p.Match([]models.Transaction{newer, older, s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	require.Len(t, records[0].Draws, 2)
	assert.Equal(t, older.ID, records[0].Draws[0].Buy.ID)
	assert.InDelta(t, 30, records[0].Draws[0].Quantity, 1e-9)
	assert.Equal(t, newer.ID, records[0].Draws[1].Buy.ID)
	assert.InDelta(t, 10, records[0].Draws[1].Quantity, 1e-9)
}

func TestMatchIsIdempotent(t *testing.T) {
	p := NewFIFOProcessor()
	history := []models.Transaction{
		buyTx(day(2021, time.January, 1), 100, 1.0),
		sellTx(day(2021, time.July, 1), 40, 1.5),
		buyTx(day(2022, time.March, 1), 25, 2.0),
		sellTx(day(2023, time.March, 1), 70, 2.2),
	}

	first := p.Match(history)
	second := p.Match(history)

	assert.Equal(t, first, second)
}

func TestMatchToleranceAbsorbsFractionalResidue(t *testing.T) {
	p := NewFIFOProcessor()
	b := buyTx(day(2023, time.January, 1), 0.99995, 10.0)
	s := sellTx(day(2023, time.February, 1), 1.0, 11.0)

	result := p.Match([]models.Transaction{b, s})

	records := result.SalesByYear[2023]
	require.Len(t, records, 1)
	require.Len(t, records[0].Draws, 1)
	// Residue below the tolerance neither produces extra draws nor a
	// leftover lot.
	assert.Empty(t, result.RemainingLots)
}

func TestMatchConservation(t *testing.T) {
	p := NewFIFOProcessor()
	buys := []models.Transaction{
		buyTx(day(2020, time.January, 1), 80, 1.0),
		buyTx(day(2020, time.June, 1), 35, 1.1),
		buyTx(day(2021, time.January, 1), 15, 1.2),
	}
	sells := []models.Transaction{
		sellTx(day(2020, time.September, 1), 90, 1.3),
		sellTx(day(2021, time.June, 1), 50, 1.4),
	}
	history := append(append([]models.Transaction{}, buys...), sells...)

	result := p.Match(history)

	drawnPerBuy := make(map[string]float64)
	for _, record := range allRecords(result) {
		var drawn float64
		for _, d := range record.Draws {
			drawnPerBuy[d.Buy.ID] += d.Quantity
			drawn += d.Quantity
		}
		assert.LessOrEqual(t, drawn, record.Sale.Quantity+1e-9, "sale over-drawn")
	}
	for _, b := range buys {
		assert.LessOrEqual(t, drawnPerBuy[b.ID], b.Quantity+1e-9, "buy %s over-consumed", b.ID)
	}
}

func TestMatchAllGroupsByISIN(t *testing.T) {
	p := NewFIFOProcessor()
	a1buy := buyTx(day(2023, time.January, 1), 10, 1.0)
	a1sell := sellTx(day(2023, time.February, 1), 10, 1.1)
	a2buy := buyTx(day(2023, time.January, 1), 5, 2.0)
	a2buy.ISIN = "US0000OTHER1"
	noISIN := buyTx(day(2023, time.January, 1), 3, 1.0)
	noISIN.ISIN = ""

	results := p.MatchAll([]models.Transaction{a1buy, a2buy, a1sell, noISIN})

	require.Len(t, results, 2)
	require.Contains(t, results, testISIN)
	require.Contains(t, results, "US0000OTHER1")
	assert.Len(t, results[testISIN].SalesByYear[2023], 1)
	assert.Len(t, results["US0000OTHER1"].RemainingLots, 1)
}
