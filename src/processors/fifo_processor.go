package processors

import (
	"sort"

	"github.com/username/gainsfolio/backend/src/models"
)

// quantityTolerance bounds floating-point drift when deciding whether a lot
// is exhausted or a sale fully covered. The matching engine and the history
// validator share this value so they agree on borderline cases.
const quantityTolerance = 1e-3

// FIFOProcessor pairs sales against the oldest available purchases of the
// same asset. Each call owns its working state for the duration of the call
// only; concurrent calls are safe.
type FIFOProcessor struct{}

func NewFIFOProcessor() *FIFOProcessor {
	return &FIFOProcessor{}
}

// Match computes the FIFO pairing of every sale in the supplied history
// against prior buys and reports the leftover inventory.
//
// All transactions must belong to the same asset; mixing assets is a caller
// error that Match does not detect (use MatchAll for mixed histories).
// Events are stable-sorted by date, so among same-day events the input order
// decides which comes first: a buy listed before a same-day sale is
// available to cover it.
//
// Match never fails. An empty history yields an empty result, a history of
// only buys yields full inventory, and a sale that exhausts the queue is
// recorded with partial draws; completeness checking is the
// HistoryValidator's job.
func (p *FIFOProcessor) Match(transactions []models.Transaction) models.MatchingResult {
	sorted := sortChronologically(transactions)

	result := models.MatchingResult{SalesByYear: make(map[int][]models.MatchRecord)}

	// Purchase queue, consumed from the front. front indexes the oldest lot
	// that still holds quantity.
	var queue []models.PurchaseLot
	front := 0

	for _, tx := range sorted {
		switch tx.Kind {
		case models.KindBuy:
			queue = append(queue, models.PurchaseLot{Buy: tx, Remaining: tx.Quantity})

		case models.KindSell:
			record := models.MatchRecord{Sale: tx}
			outstanding := tx.Quantity

			for outstanding > quantityTolerance && front < len(queue) {
				lot := &queue[front]
				if lot.Remaining <= outstanding+quantityTolerance {
					// Front lot is (within tolerance) fully consumed.
					if lot.Remaining > 0 {
						record.Draws = append(record.Draws, models.LotDraw{Buy: lot.Buy, Quantity: lot.Remaining})
					}
					outstanding -= lot.Remaining
					lot.Remaining = 0
					front++
				} else {
					record.Draws = append(record.Draws, models.LotDraw{Buy: lot.Buy, Quantity: outstanding})
					lot.Remaining -= outstanding
					outstanding = 0
				}
				if outstanding < 0 {
					outstanding = 0
				}
			}

			year := tx.Year()
			result.SalesByYear[year] = append(result.SalesByYear[year], record)
		}
	}

	for _, lot := range queue[front:] {
		if lot.Remaining > quantityTolerance {
			result.RemainingLots = append(result.RemainingLots, lot)
			result.RemainingValueEUR += lot.RemainingValueEUR()
		}
	}

	return result
}

// MatchAll groups a mixed history by ISIN and matches each asset
// independently. Rows without an ISIN are skipped.
func (p *FIFOProcessor) MatchAll(transactions []models.Transaction) map[string]models.MatchingResult {
	grouped, order := groupTransactionsByISIN(transactions)
	results := make(map[string]models.MatchingResult, len(order))
	for _, isin := range order {
		results[isin] = p.Match(grouped[isin])
	}
	return results
}

// sortChronologically returns a date-sorted copy of the history. The sort is
// stable: events sharing a date keep their input order, which is the
// tie-break the matching and validation passes rely on.
func sortChronologically(transactions []models.Transaction) []models.Transaction {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// groupTransactionsByISIN splits a mixed history per asset, remembering the
// order in which each asset first appears so callers stay deterministic.
func groupTransactionsByISIN(transactions []models.Transaction) (map[string][]models.Transaction, []string) {
	grouped := make(map[string][]models.Transaction)
	var order []string
	for _, tx := range transactions {
		if tx.ISIN == "" {
			continue
		}
		if _, seen := grouped[tx.ISIN]; !seen {
			order = append(order, tx.ISIN)
		}
		grouped[tx.ISIN] = append(grouped[tx.ISIN], tx)
	}
	return grouped, order
}
