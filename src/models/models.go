package models

import "time"

// TransactionKind distinguishes the two sides of a trade. A transaction is
// exactly one of the two; there is no "both" state.
type TransactionKind string

const (
	KindBuy  TransactionKind = "BUY"
	KindSell TransactionKind = "SELL"
)

// Transaction is a single normalized buy or sell event for one asset.
// It is produced by the ingestion/enrichment pipeline and is read-only for
// everything downstream: the matching engine, the validator and the report
// renderers never mutate it.
type Transaction struct {
	ID           string          `json:"id"`      // surrogate id assigned at enrichment time (uuid)
	HashID       string          `json:"hash_id"` // sha256 dedup key over source fields
	Source       string          `json:"source"`  // e.g. "degiro"
	OrderID      string          `json:"order_id"`
	Kind         TransactionKind `json:"kind"`
	Date         time.Time       `json:"date"`
	ISIN         string          `json:"isin"`
	ProductName  string          `json:"product_name"`
	Quantity     float64         `json:"quantity"`
	UnitPriceEUR float64         `json:"unit_price_eur"` // price per unit, already converted to EUR
	Currency     string          `json:"currency"`       // original trade currency
	ExchangeRate float64         `json:"exchange_rate"`  // rate used for the EUR conversion
}

// Year returns the calendar year the transaction falls in.
func (t Transaction) Year() int {
	return t.Date.Year()
}

// PurchaseLot tracks how much of a buy is still unconsumed. Remaining starts
// at the buy's quantity and only decreases while a matching run drains it.
type PurchaseLot struct {
	Buy       Transaction `json:"buy"`
	Remaining float64     `json:"remaining"`
}

// RemainingValueEUR is the EUR value of the unconsumed part of the lot,
// priced at the original buy's unit price.
func (l PurchaseLot) RemainingValueEUR() float64 {
	return l.Remaining * l.Buy.UnitPriceEUR
}

// LotDraw records a quantity taken from one specific buy to cover a sale.
type LotDraw struct {
	Buy      Transaction `json:"buy"`
	Quantity float64     `json:"quantity"`
}

// MatchRecord pairs one sale with the ordered draws that cover it. The draws
// sum to the sale quantity when inventory sufficed, or to less when the
// recorded history is missing earlier purchases.
type MatchRecord struct {
	Sale  Transaction `json:"sale"`
	Draws []LotDraw   `json:"draws"`
}

// DrawnQuantity is the total quantity drawn from buys for this sale.
func (m MatchRecord) DrawnQuantity() float64 {
	var total float64
	for _, d := range m.Draws {
		total += d.Quantity
	}
	return total
}

// SaleValueEUR is the EUR proceeds of the sale (quantity times unit price).
func (m MatchRecord) SaleValueEUR() float64 {
	return m.Sale.Quantity * m.Sale.UnitPriceEUR
}

// MatchingResult is the complete output of one FIFO matching run for one
// asset. It is built once and treated as immutable by every consumer.
type MatchingResult struct {
	// SalesByYear holds the match records keyed by the calendar year of the
	// sale. Within a year the slice is in chronological sale order.
	SalesByYear map[int][]MatchRecord `json:"sales_by_year"`
	// RemainingLots is the inventory left after all sales were applied,
	// oldest buy first.
	RemainingLots []PurchaseLot `json:"remaining_lots"`
	// RemainingValueEUR is the EUR value of RemainingLots at original buy prices.
	RemainingValueEUR float64 `json:"remaining_value_eur"`
}

// Deficit describes the first point in an asset's history where recorded
// sales exceed recorded prior purchases.
type Deficit struct {
	ISIN      string    `json:"isin"`
	Date      time.Time `json:"date"`      // date of the first sale that could not be covered
	Shortfall float64   `json:"shortfall"` // quantity missing at that point
}

// ValidationResult reports whether a transaction history is complete enough
// to produce a defensible gains report. Deficit is nil when Complete is true.
type ValidationResult struct {
	Complete bool     `json:"complete"`
	Deficit  *Deficit `json:"deficit,omitempty"`
}

// ConsumedBuy is the consolidated consumption of one buy across a set of
// match records: one entry per distinct buy, no matter how many sales (or
// years) its lot was split over.
type ConsumedBuy struct {
	Buy      Transaction `json:"buy"`
	Quantity float64     `json:"quantity"`
}

// ValueEUR is the EUR acquisition value of the consumed quantity, at the
// buy's unit price.
func (c ConsumedBuy) ValueEUR() float64 {
	return c.Quantity * c.Buy.UnitPriceEUR
}

// PeriodSummary carries both sides of the gain/loss computation for a set of
// match records, typically one year's slice.
type PeriodSummary struct {
	SaleCount         int     `json:"sale_count"`
	TotalSaleQuantity float64 `json:"total_sale_quantity"`
	TotalSaleValueEUR float64 `json:"total_sale_value_eur"`
	TotalBuyQuantity  float64 `json:"total_buy_quantity"`
	TotalBuyValueEUR  float64 `json:"total_buy_value_eur"`
}
