package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/processors"
	"github.com/username/gainsfolio/backend/src/services"
	"github.com/username/gainsfolio/backend/src/utils"
)

type PortfolioHandler struct {
	uploadService services.UploadService
}

func NewPortfolioHandler(uploadService services.UploadService) *PortfolioHandler {
	return &PortfolioHandler{uploadService: uploadService}
}

// HandleGetGainsReport serves the full validation + FIFO matching report.
// Responses carry an ETag so unchanged reports return 304.
func (h *PortfolioHandler) HandleGetGainsReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	report, err := h.uploadService.GetGainsReport(userID)
	if err != nil {
		logger.L.Error("Failed to build gains report", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to build gains report", http.StatusInternalServerError)
		return
	}

	etag, err := utils.GenerateETag(report)
	if err != nil {
		utils.SendJSONError(w, "failed to encode gains report", http.StatusInternalServerError)
		return
	}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleGetHoldings returns the remaining purchase lots, the user's current
// inventory valued at original buy prices.
func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	holdings, err := h.uploadService.GetHoldings(userID)
	if err != nil {
		logger.L.Error("Failed to list holdings", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to list holdings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(holdings)
}

// HandleGetValidation runs only the history completeness check, without the
// full matching report.
func (h *PortfolioHandler) HandleGetValidation(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	report, err := h.uploadService.GetGainsReport(userID)
	if err != nil {
		logger.L.Error("Failed to validate history", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to validate history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report.Validation)
}

// HandleGetYearMatches returns the per-sale match records for a single tax
// year, across all of the user's assets.
func (h *PortfolioHandler) HandleGetYearMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		utils.SendJSONError(w, "invalid year", http.StatusBadRequest)
		return
	}

	report, err := h.uploadService.GetGainsReport(userID)
	if err != nil {
		logger.L.Error("Failed to build gains report", "userID", userID, "year", year, "error", err)
		utils.SendJSONError(w, "failed to build gains report", http.StatusInternalServerError)
		return
	}

	matches := make(map[string]interface{}, len(report.Assets))
	for isin, result := range report.Assets {
		records := processors.MatchesForYear(result, year)
		if len(records) == 0 {
			continue
		}
		matches[isin] = records
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}
