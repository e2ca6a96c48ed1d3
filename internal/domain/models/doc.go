// Package models holds the records each service stores and serves.
package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching the published API shapes.
	decimal.MarshalJSONWithoutQuotes = true
}
