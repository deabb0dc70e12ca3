package processors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/models"
)

// TransactionProcessor enriches canonical transactions with data that is not
// source-specific: the EUR conversion, a surrogate id and a dedup hash.
type TransactionProcessor struct{}

func NewTransactionProcessor() *TransactionProcessor { return &TransactionProcessor{} }

// Process maps parsed canonical transactions to the final Transaction form
// consumed by the matching core. Every transaction gets a generated uuid so
// that downstream consolidation can identify "the same buy" without relying
// on date+quantity coincidences.
func (p *TransactionProcessor) Process(txs []models.CanonicalTransaction) []models.Transaction {
	var processed []models.Transaction
	for _, tx := range txs {
		rate, err := GetExchangeRate(tx.Currency, tx.TransactionDate)
		if err != nil || rate <= 0 {
			logger.L.Warn("Could not find exchange rate, defaulting to 1.0",
				"currency", tx.Currency, "date", tx.TransactionDate, "orderID", tx.OrderID, "error", err)
			rate = 1.0
		}

		processed = append(processed, models.Transaction{
			ID:           uuid.NewString(),
			HashID:       generateHash(tx),
			Source:       tx.Source,
			OrderID:      tx.OrderID,
			Kind:         tx.Kind,
			Date:         tx.TransactionDate,
			ISIN:         tx.ISIN,
			ProductName:  tx.ProductName,
			Quantity:     tx.Quantity,
			UnitPriceEUR: tx.Price / rate,
			Currency:     tx.Currency,
			ExchangeRate: rate,
		})
	}
	return processed
}

// generateHash creates a stable dedup hash from the transaction's source
// fields, so re-uploading a file containing already-known rows is a no-op.
func generateHash(tx models.CanonicalTransaction) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%f|%f|%s|%s",
		tx.Source, tx.TransactionDate.Format(time.RFC3339), tx.Kind, tx.ISIN,
		tx.Quantity, tx.Price, tx.OrderID, tx.RawText)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
