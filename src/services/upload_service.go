package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/gainsfolio/backend/src/database"
	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/models"
	"github.com/username/gainsfolio/backend/src/parsers"
	"github.com/username/gainsfolio/backend/src/processors"
	"github.com/username/gainsfolio/backend/src/utils"
)

const (
	// Long-lived cache for the full recomputed report; invalidated on upload.
	ckGainsReport = "res_gains_report_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type uploadServiceImpl struct {
	transactionProcessor *processors.TransactionProcessor
	fifoProcessor        *processors.FIFOProcessor
	historyValidator     *processors.HistoryValidator
	reportCache          *cache.Cache
}

func NewUploadService(
	transactionProcessor *processors.TransactionProcessor,
	fifoProcessor *processors.FIFOProcessor,
	historyValidator *processors.HistoryValidator,
	reportCache *cache.Cache,
) UploadService {
	return &uploadServiceImpl{
		transactionProcessor: transactionProcessor,
		fifoProcessor:        fifoProcessor,
		historyValidator:     historyValidator,
		reportCache:          reportCache,
	}
}

func (s *uploadServiceImpl) ProcessUpload(fileReader io.Reader, userID int64, source string) (*GainsReport, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID, "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	canonicalTxs, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	newTxs := s.transactionProcessor.Process(canonicalTxs)
	if len(newTxs) == 0 {
		return s.GetGainsReport(userID)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (id, user_id, hash_id, source, order_id, kind, date, isin, product_name, quantity, unit_price_eur, currency, exchange_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, tx := range newTxs {
		_, err := stmt.Exec(tx.ID, userID, tx.HashID, tx.Source, tx.OrderID, string(tx.Kind),
			tx.Date.Format(time.RFC3339), tx.ISIN, tx.ProductName, tx.Quantity,
			tx.UnitPriceEUR, tx.Currency, tx.ExchangeRate)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate transaction on upload", "userID", userID, "hash_id", tx.HashID)
				continue
			}
			return nil, fmt.Errorf("error inserting transaction (OrderID: %s): %w", tx.OrderID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transactions: %w", err)
	}

	// Invalidate rather than patch: the next request recomputes the report
	// from the full stored history, which keeps repeated partial uploads
	// idempotent.
	s.InvalidateUserCache(userID)

	logger.L.Info("ProcessUpload END", "userID", userID, "duration", time.Since(overallStartTime))
	return s.GetGainsReport(userID)
}

// InvalidateUserCache clears cached report data for a user, forcing a full
// recomputation on the next request.
func (s *uploadServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckGainsReport, userID))
	logger.L.Info("Invalidated report cache for user", "userID", userID)
}

func (s *uploadServiceImpl) GetGainsReport(userID int64) (*GainsReport, error) {
	cacheKey := fmt.Sprintf(ckGainsReport, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for gains report", "userID", userID)
		return cached.(*GainsReport), nil
	}
	logger.L.Info("Cache miss for gains report, recalculating from DB", "userID", userID)

	history, err := fetchUserTransactions(userID)
	if err != nil {
		return nil, err
	}

	report := &GainsReport{
		Validation: s.historyValidator.Validate(history),
		Assets:     s.fifoProcessor.MatchAll(history),
	}

	s.reportCache.Set(cacheKey, report, cache.NoExpiration)
	logger.L.Info("Populated gains report cache from DB", "userID", userID, "assetCount", len(report.Assets))
	return report, nil
}

func (s *uploadServiceImpl) GetHoldings(userID int64) ([]models.PurchaseLot, error) {
	report, err := s.GetGainsReport(userID)
	if err != nil {
		return nil, err
	}

	holdings := []models.PurchaseLot{}
	for _, result := range report.Assets {
		holdings = append(holdings, result.RemainingLots...)
	}
	return holdings, nil
}

func (s *uploadServiceImpl) GetProcessedTransactions(userID int64) ([]models.Transaction, error) {
	return fetchUserTransactions(userID)
}

func (s *uploadServiceImpl) DeleteAllTransactions(userID int64) error {
	if _, err := database.DB.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error deleting transactions for userID %d: %w", userID, err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

// fetchUserTransactions loads the user's full history ordered by date then
// insertion sequence, so the matching core's same-day tie-break sees a
// stable input order.
func fetchUserTransactions(userID int64) ([]models.Transaction, error) {
	logger.L.Debug("Fetching transactions from DB", "userID", userID)
	rows, err := database.DB.Query(`SELECT id, hash_id, source, order_id, kind, date, isin, product_name, quantity, unit_price_eur, currency, exchange_rate
		FROM transactions WHERE user_id = ? ORDER BY date ASC, seq ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var kind, dateStr string
		if err := rows.Scan(&tx.ID, &tx.HashID, &tx.Source, &tx.OrderID, &kind, &dateStr, &tx.ISIN, &tx.ProductName, &tx.Quantity, &tx.UnitPriceEUR, &tx.Currency, &tx.ExchangeRate); err != nil {
			return nil, fmt.Errorf("error scanning transaction row for userID %d: %w", userID, err)
		}
		tx.Kind = models.TransactionKind(kind)
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			logger.L.Warn("Invalid stored transaction date", "userID", userID, "date", dateStr, "error", err)
			date = utils.ParseDate(dateStr)
		}
		tx.Date = date
		transactions = append(transactions, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction rows for userID %d: %w", userID, err)
	}
	logger.L.Info("DB fetch complete.", "userID", userID, "transactionCount", len(transactions))
	return transactions, nil
}
