package models

import "time"

// CanonicalTransaction is the unified, intermediate representation of a
// broker row. Each parser is responsible for populating these fields
// directly from the source file, including the buy/sell classification.
// Enrichment (EUR conversion, ids) happens afterwards in the processors.
type CanonicalTransaction struct {
	Source          string          `json:"source"`
	TransactionDate time.Time       `json:"transaction_date"`
	ProductName     string          `json:"product_name"`
	ISIN            string          `json:"isin"`
	Quantity        float64         `json:"quantity"`
	Price           float64         `json:"price"` // unit price in the original currency
	Currency        string          `json:"currency"`
	OrderID         string          `json:"order_id"`
	RawText         string          `json:"raw_text"` // original description, kept for hashing and audit
	Kind            TransactionKind `json:"kind"`
}
