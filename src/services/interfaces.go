package services

import (
	"errors"
	"io"

	"github.com/username/gainsfolio/backend/src/models"
)

var (
	ErrParsingFailed    = errors.New("parsing failed")
	ErrProcessingFailed = errors.New("processing failed")
)

// GainsReport is the aggregate served to the frontend: the completeness
// verdict plus one FIFO matching result per asset. Consumers must treat it
// as read-only; it is shared through the cache.
type GainsReport struct {
	Validation models.ValidationResult          `json:"validation"`
	Assets     map[string]models.MatchingResult `json:"assets"` // keyed by ISIN
}

// UploadService owns the ingest-store-compute pipeline.
type UploadService interface {
	// ProcessUpload parses one broker export, enriches and stores the new
	// transactions (duplicates are skipped) and returns the recomputed
	// report over the user's full history.
	ProcessUpload(fileReader io.Reader, userID int64, source string) (*GainsReport, error)
	// GetGainsReport recomputes (or serves from cache) the validation and
	// FIFO matching over everything stored for the user.
	GetGainsReport(userID int64) (*GainsReport, error)
	// GetHoldings returns the remaining (unsold) purchase lots across all
	// of the user's assets, oldest first per asset.
	GetHoldings(userID int64) ([]models.PurchaseLot, error)
	GetProcessedTransactions(userID int64) ([]models.Transaction, error)
	DeleteAllTransactions(userID int64) error
	InvalidateUserCache(userID int64)
}
