package processors

import (
	"github.com/username/gainsfolio/backend/src/models"
)

// HistoryValidator checks whether a transaction history is complete enough
// to report gains from: no sale may exceed the inventory accumulated by
// prior buys. It re-derives a running inventory per asset without any
// lot-level bookkeeping, so it is cheap to run before the full FIFO match.
type HistoryValidator struct{}

func NewHistoryValidator() *HistoryValidator {
	return &HistoryValidator{}
}

// Validate scans a mixed multi-asset history and reports the first deficit
// found, or completeness when there is none.
//
// Assets are checked in the order they first appear in the input, and the
// scan stops at the first deficient asset; within an asset only the earliest
// deficit is reported. When multiple assets are deficient, which one is
// reported therefore depends only on input order, which is deterministic.
func (v *HistoryValidator) Validate(transactions []models.Transaction) models.ValidationResult {
	grouped, order := groupTransactionsByISIN(transactions)
	for _, isin := range order {
		if deficit := firstDeficit(isin, grouped[isin]); deficit != nil {
			return models.ValidationResult{Complete: false, Deficit: deficit}
		}
	}
	return models.ValidationResult{Complete: true}
}

// firstDeficit walks one asset's history in chronological order (same
// tie-break as the matching engine) and returns the first point where sales
// outrun prior buys beyond the shared tolerance.
func firstDeficit(isin string, transactions []models.Transaction) *models.Deficit {
	var inventory float64
	for _, tx := range sortChronologically(transactions) {
		switch tx.Kind {
		case models.KindBuy:
			inventory += tx.Quantity
		case models.KindSell:
			inventory -= tx.Quantity
			if inventory < -quantityTolerance {
				return &models.Deficit{
					ISIN:      isin,
					Date:      tx.Date,
					Shortfall: -inventory,
				}
			}
		}
	}
	return nil
}
