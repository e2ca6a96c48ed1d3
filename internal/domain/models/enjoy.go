package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enjoy is an event or activity.
type Enjoy struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title" validate:"required"`
	Address     string          `json:"address"`
	City        string          `json:"city" validate:"required"`
	URL         string          `json:"url"`
	PhotoURL    string          `json:"photo_url"`
	Date        time.Time       `json:"date" validate:"required"`
	Duration    string          `json:"duration"`
	Price       decimal.Decimal `json:"price"`
	Service     string          `json:"service"`
	Description string          `json:"description"`
}

type EnjoySearch struct {
	City       string
	NbAdults   int
	NbChildren int
	Date       time.Time
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}
