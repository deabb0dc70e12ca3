package reports

import (
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/username/gainsfolio/backend/src/models"
	"github.com/username/gainsfolio/backend/src/processors"
	"github.com/username/gainsfolio/backend/src/utils"
)

// SaleEntry is one disposal line of the yearly declaration: the realized
// portion of a sale paired with the acquisition it was matched to. A sale
// covered by several purchase lots produces several entries.
type SaleEntry struct {
	ISIN                string  `xml:"isin,attr"`
	CountryCode         string  `xml:"countryCode,attr,omitempty"`
	ProductName         string  `xml:"ProductName"`
	Quantity            float64 `xml:"Quantity"`
	RealizationDate     string  `xml:"RealizationDate"`
	RealizationValueEUR float64 `xml:"RealizationValueEUR"`
	AcquisitionDate     string  `xml:"AcquisitionDate"`
	AcquisitionValueEUR float64 `xml:"AcquisitionValueEUR"`
}

// YearDeclaration is the XML document for one tax year.
type YearDeclaration struct {
	XMLName             xml.Name    `xml:"CapitalGainsDeclaration"`
	Year                int         `xml:"year,attr"`
	Sales               []SaleEntry `xml:"Sale"`
	TotalRealizationEUR float64     `xml:"TotalRealizationEUR"`
	TotalAcquisitionEUR float64     `xml:"TotalAcquisitionEUR"`
}

// BuildYearDeclaration assembles the declaration for one calendar year from
// the per-asset matching results. Assets are emitted in ISIN order and the
// matching results are only read, never modified. Partial draw coverage
// shows up as entries whose quantities sum to less than the sale; callers
// are expected to gate on the history validation before filing.
func BuildYearDeclaration(assets map[string]models.MatchingResult, year int) YearDeclaration {
	declaration := YearDeclaration{Year: year}

	isins := make([]string, 0, len(assets))
	for isin := range assets {
		isins = append(isins, isin)
	}
	sort.Strings(isins)

	for _, isin := range isins {
		countryCode := utils.CountryCodeFromISIN(isin)
		for _, record := range processors.MatchesForYear(assets[isin], year) {
			for _, draw := range record.Draws {
				realized := utils.RoundFloat(draw.Quantity*record.Sale.UnitPriceEUR, 2)
				acquired := utils.RoundFloat(draw.Quantity*draw.Buy.UnitPriceEUR, 2)
				declaration.Sales = append(declaration.Sales, SaleEntry{
					ISIN:                isin,
					CountryCode:         countryCode,
					ProductName:         record.Sale.ProductName,
					Quantity:            draw.Quantity,
					RealizationDate:     utils.FormatDate(record.Sale.Date),
					RealizationValueEUR: realized,
					AcquisitionDate:     utils.FormatDate(draw.Buy.Date),
					AcquisitionValueEUR: acquired,
				})
				declaration.TotalRealizationEUR += realized
				declaration.TotalAcquisitionEUR += acquired
			}
		}
	}

	declaration.TotalRealizationEUR = utils.RoundFloat(declaration.TotalRealizationEUR, 2)
	declaration.TotalAcquisitionEUR = utils.RoundFloat(declaration.TotalAcquisitionEUR, 2)
	return declaration
}

// RenderYearDeclarationXML serializes the declaration with the standard XML
// header, ready to serve as a download.
func RenderYearDeclarationXML(declaration YearDeclaration) ([]byte, error) {
	body, err := xml.MarshalIndent(declaration, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal year declaration: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
