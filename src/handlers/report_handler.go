package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/reports"
	"github.com/username/gainsfolio/backend/src/services"
	"github.com/username/gainsfolio/backend/src/utils"
)

type ReportHandler struct {
	uploadService services.UploadService
}

func NewReportHandler(uploadService services.UploadService) *ReportHandler {
	return &ReportHandler{uploadService: uploadService}
}

func (h *ReportHandler) reportForYear(w http.ResponseWriter, r *http.Request) (*services.GainsReport, int, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return nil, 0, false
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2200 {
		utils.SendJSONError(w, "invalid year", http.StatusBadRequest)
		return nil, 0, false
	}

	report, err := h.uploadService.GetGainsReport(userID)
	if err != nil {
		logger.L.Error("Failed to build gains report", "userID", userID, "year", year, "error", err)
		utils.SendJSONError(w, "failed to build report", http.StatusInternalServerError)
		return nil, 0, false
	}
	return report, year, true
}

// HandleGetYearDeclarationXML renders the capital gains declaration for one
// tax year as an XML document, one entry per lot draw.
func (h *ReportHandler) HandleGetYearDeclarationXML(w http.ResponseWriter, r *http.Request) {
	report, year, ok := h.reportForYear(w, r)
	if !ok {
		return
	}

	declaration := reports.BuildYearDeclaration(report.Assets, year)
	body, err := reports.RenderYearDeclarationXML(declaration)
	if err != nil {
		logger.L.Error("Failed to render XML declaration", "year", year, "error", err)
		utils.SendJSONError(w, "failed to render declaration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="capital-gains-%d.xml"`, year))
	w.Write(body)
}

// HandleGetYearSummary returns the per-asset and total gain/loss figures for
// one tax year as JSON.
func (h *ReportHandler) HandleGetYearSummary(w http.ResponseWriter, r *http.Request) {
	report, year, ok := h.reportForYear(w, r)
	if !ok {
		return
	}

	summary := reports.BuildYearSummary(report.Assets, year)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
