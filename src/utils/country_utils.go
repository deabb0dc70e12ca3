package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/username/gainsfolio/backend/src/logger"
)

type CountryInfo struct {
	Country string `json:"country"`
	Alpha2  string `json:"alpha2"`
	Alpha3  string `json:"alpha3"`
	Numeric string `json:"numeric"`
}

var (
	countryMap map[string]CountryInfo
	loadOnce   sync.Once
	loadError  error
	dataLoaded bool
)

// InitCountryData loads country data from the given file path.
// This should be called once from main.go after config is loaded.
func InitCountryData(filePath string) error {
	logger.L.Info("Initializing country data", "path", filePath)
	loadOnce.Do(func() {
		fileData, err := os.ReadFile(filePath)
		if err != nil {
			loadError = fmt.Errorf("failed to read country data file '%s': %w", filePath, err)
			logger.L.Error("Failed to read country data file", "path", filePath, "error", err)
			return
		}

		var countries []CountryInfo
		if err := json.Unmarshal(fileData, &countries); err != nil {
			loadError = fmt.Errorf("failed to unmarshal country data from '%s': %w", filePath, err)
			logger.L.Error("Failed to unmarshal country data", "path", filePath, "error", err)
			return
		}

		countryMap = make(map[string]CountryInfo)
		for _, country := range countries {
			countryMap[strings.ToUpper(country.Alpha2)] = country
		}
		dataLoaded = true
		logger.L.Info("Country data loaded successfully.", "path", filePath, "countryCount", len(countryMap))
	})
	return loadError
}

// CountryCodeFromISIN derives the numeric source-country code used in the tax
// declaration from the ISIN's two-letter prefix. Returns an empty string when
// the prefix is unknown or the data was never loaded.
func CountryCodeFromISIN(isin string) string {
	if !dataLoaded || loadError != nil {
		return ""
	}
	if len(isin) < 2 {
		return ""
	}
	info, found := countryMap[strings.ToUpper(isin[:2])]
	if !found {
		return ""
	}
	return strings.TrimSpace(info.Numeric)
}

// CountryNameFromISIN resolves the country name for an ISIN prefix, for
// human-readable report output.
func CountryNameFromISIN(isin string) string {
	if !dataLoaded || loadError != nil || len(isin) < 2 {
		return ""
	}
	info, found := countryMap[strings.ToUpper(isin[:2])]
	if !found {
		return ""
	}
	return info.Country
}
