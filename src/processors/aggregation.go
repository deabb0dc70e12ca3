package processors

import (
	"sort"

	"github.com/username/gainsfolio/backend/src/models"
)

// Aggregation views are pure projections over a MatchingResult. They never
// mutate the result they read.

// MatchesForYear returns the match records whose sale falls in the given
// calendar year, in chronological sale order. A year without sales yields an
// empty slice, never an error.
func MatchesForYear(result models.MatchingResult, year int) []models.MatchRecord {
	return result.SalesByYear[year]
}

// ConsolidateBuys aggregates, per distinct source buy, the total quantity
// drawn from it across all sales in the given records. A buy whose lot was
// split over many sales (or many years) comes back as a single entry.
// Distinctness is keyed on the buy's surrogate ID, assigned at enrichment
// time. Output is ascending by buy date; buys sharing a date keep their
// first-drawn order.
func ConsolidateBuys(records []models.MatchRecord) []models.ConsumedBuy {
	index := make(map[string]int)
	var consolidated []models.ConsumedBuy
	for _, record := range records {
		for _, draw := range record.Draws {
			if i, ok := index[draw.Buy.ID]; ok {
				consolidated[i].Quantity += draw.Quantity
				continue
			}
			index[draw.Buy.ID] = len(consolidated)
			consolidated = append(consolidated, models.ConsumedBuy{Buy: draw.Buy, Quantity: draw.Quantity})
		}
	}
	sort.SliceStable(consolidated, func(i, j int) bool {
		return consolidated[i].Buy.Date.Before(consolidated[j].Buy.Date)
	})
	return consolidated
}

// SummarizePeriod computes both sides of the gain/loss figures for a set of
// match records: sale count and totals, plus the consolidated consumed-buy
// totals, so callers never re-derive consumption themselves.
func SummarizePeriod(records []models.MatchRecord) models.PeriodSummary {
	summary := models.PeriodSummary{SaleCount: len(records)}
	for _, record := range records {
		summary.TotalSaleQuantity += record.Sale.Quantity
		summary.TotalSaleValueEUR += record.SaleValueEUR()
	}
	for _, buy := range ConsolidateBuys(records) {
		summary.TotalBuyQuantity += buy.Quantity
		summary.TotalBuyValueEUR += buy.ValueEUR()
	}
	return summary
}
