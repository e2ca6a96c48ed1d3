package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sleep struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title" validate:"required"`
	Type        string          `json:"type"`
	PhotoURL    string          `json:"photo_url"`
	City        string          `json:"city" validate:"required"`
	Zip         string          `json:"zip"`
	Country     string          `json:"country"`
	NbAdults    int             `json:"nb_adults" validate:"min=1"`
	NbChildren  int             `json:"nb_children" validate:"min=0"`
	Avis        float64         `json:"avis" validate:"min=0,max=5"`
	Description string          `json:"description"`
	Service     string          `json:"service"`
	Checkin     time.Time       `json:"checkin" validate:"required"`
	Checkout    time.Time       `json:"checkout" validate:"required,gtfield=Checkin"`
	Price       decimal.Decimal `json:"price"`
}

type SleepSearch struct {
	City       string
	NbAdults   int
	NbChildren int
	Checkin    time.Time
	Checkout   time.Time
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}
