package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/services"
	"github.com/username/gainsfolio/backend/src/utils"
)

type TransactionHandler struct {
	uploadService services.UploadService
}

func NewTransactionHandler(uploadService services.UploadService) *TransactionHandler {
	return &TransactionHandler{uploadService: uploadService}
}

// HandleGetProcessedTransactions lists the user's stored, enriched
// transactions in processing order.
func (h *TransactionHandler) HandleGetProcessedTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	transactions, err := h.uploadService.GetProcessedTransactions(userID)
	if err != nil {
		logger.L.Error("Failed to fetch processed transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to fetch transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// HandleDeleteAllTransactions wipes the user's transaction history and
// invalidates any cached reports built from it.
func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	if err := h.uploadService.DeleteAllTransactions(userID); err != nil {
		logger.L.Error("Failed to delete transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to delete transactions", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Deleted all transactions", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}
