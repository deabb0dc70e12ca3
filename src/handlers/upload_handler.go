package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/gainsfolio/backend/src/config"
	"github.com/username/gainsfolio/backend/src/logger"
	"github.com/username/gainsfolio/backend/src/security/validation"
	"github.com/username/gainsfolio/backend/src/services"
	"github.com/username/gainsfolio/backend/src/utils"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// HandleUpload receives a multipart broker export, validates it and runs the
// full parse-enrich-store-report pipeline.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		utils.SendJSONError(w, "uploaded file too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "missing form field 'file'", http.StatusBadRequest)
		return
	}
	defer file.Close()

	source := r.FormValue("source")
	if source == "" {
		source = "degiro"
	}

	if err := validation.ValidateClientContentType(header.Header.Get("Content-Type")); err != nil {
		utils.SendJSONError(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}
	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		utils.SendJSONError(w, "file content does not look like a CSV export", http.StatusUnsupportedMediaType)
		return
	}

	report, err := h.uploadService.ProcessUpload(file, userID, source)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, "could not parse the uploaded file", http.StatusUnprocessableEntity)
		case errors.Is(err, services.ErrProcessingFailed):
			logger.L.Error("Upload processing failed", "userID", userID, "error", err)
			utils.SendJSONError(w, "failed to process upload", http.StatusInternalServerError)
		default:
			logger.L.Error("Upload failed", "userID", userID, "error", err)
			utils.SendJSONError(w, "failed to process upload", http.StatusInternalServerError)
		}
		return
	}

	logger.L.Info("Upload processed", "userID", userID, "filename", header.Filename, "source", source)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
