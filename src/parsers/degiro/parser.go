package degiro

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/gainsfolio/backend/src/models"
)

type RawTransaction struct {
	OrderDate, OrderTime, ValueDate, Name, ISIN, Description, ExchangeRate, Currency, Amount, OrderID string
}

type DeGiroParser struct{}

func NewParser() *DeGiroParser {
	return &DeGiroParser{}
}

// tradeRe matches DEGIRO trade descriptions, e.g.
// "Compra 10 VANGUARD FTSE AW@102,35". The engine only cares about buys and
// sells; dividends, fees and cash movements are skipped at this layer.
var tradeRe = regexp.MustCompile(`(?i)\s*(compra|venda)\s+([\d\s.,]+)\s+(.+?)\s*@([\d,.]+)`)

func (p *DeGiroParser) Parse(file io.Reader) ([]models.CanonicalTransaction, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	var rawTxs []RawTransaction
	for _, record := range records {
		if len(record) >= 12 {
			rawTxs = append(rawTxs, RawTransaction{
				OrderDate: record[0], OrderTime: record[1], ValueDate: record[2],
				Name: record[3], ISIN: record[4], Description: record[5],
				ExchangeRate: record[6], Currency: record[7], Amount: record[8],
				OrderID: record[11],
			})
		}
	}

	var canonicalTxs []models.CanonicalTransaction
	for _, raw := range rawTxs {
		date, err := time.Parse("02-01-2006", raw.OrderDate)
		if err != nil {
			log.Printf("Skipping row due to invalid date: %s", raw.OrderDate)
			continue
		}

		kind, productName, quantity, price, ok := classifyTrade(raw.Description)
		if !ok {
			continue
		}

		canonicalTxs = append(canonicalTxs, models.CanonicalTransaction{
			Source:          "degiro",
			TransactionDate: date,
			ProductName:     productName,
			ISIN:            strings.TrimSpace(raw.ISIN),
			Quantity:        quantity,
			Price:           price,
			Currency:        raw.Currency,
			OrderID:         raw.OrderID,
			RawText:         raw.Description,
			Kind:            kind,
		})
	}

	return canonicalTxs, nil
}

// classifyTrade extracts side, product, quantity and unit price from a
// DEGIRO trade description. Non-trade rows return ok=false.
func classifyTrade(description string) (kind models.TransactionKind, productName string, quantity, price float64, ok bool) {
	matches := tradeRe.FindStringSubmatch(description)
	if matches == nil {
		return "", "", 0, 0, false
	}

	switch strings.ToLower(matches[1]) {
	case "compra":
		kind = models.KindBuy
	case "venda":
		kind = models.KindSell
	}

	productName = strings.TrimSpace(matches[3])

	// DEGIRO uses European number formatting: "." groups thousands and ","
	// is the decimal separator.
	quantityStr := strings.ReplaceAll(strings.ReplaceAll(matches[2], " ", ""), ".", "")
	quantityStr = strings.ReplaceAll(quantityStr, ",", ".")
	quantity, _ = strconv.ParseFloat(quantityStr, 64)

	priceStr := strings.ReplaceAll(matches[4], ",", ".")
	price, _ = strconv.ParseFloat(priceStr, 64)

	return kind, productName, quantity, price, true
}
