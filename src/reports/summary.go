package reports

import (
	"github.com/username/gainsfolio/backend/src/models"
	"github.com/username/gainsfolio/backend/src/processors"
)

// YearSummary is the JSON-friendly overview of one tax year: one summary per
// asset plus the totals across all assets.
type YearSummary struct {
	Year   int                             `json:"year"`
	Assets map[string]models.PeriodSummary `json:"assets"`
	Totals models.PeriodSummary            `json:"totals"`
}

// BuildYearSummary computes per-asset and overall gain/loss figures for one
// calendar year from the per-asset matching results.
func BuildYearSummary(assets map[string]models.MatchingResult, year int) YearSummary {
	summary := YearSummary{Year: year, Assets: make(map[string]models.PeriodSummary)}

	for isin, result := range assets {
		records := processors.MatchesForYear(result, year)
		if len(records) == 0 {
			continue
		}
		perAsset := processors.SummarizePeriod(records)
		summary.Assets[isin] = perAsset

		summary.Totals.SaleCount += perAsset.SaleCount
		summary.Totals.TotalSaleQuantity += perAsset.TotalSaleQuantity
		summary.Totals.TotalSaleValueEUR += perAsset.TotalSaleValueEUR
		summary.Totals.TotalBuyQuantity += perAsset.TotalBuyQuantity
		summary.Totals.TotalBuyValueEUR += perAsset.TotalBuyValueEUR
	}

	return summary
}
