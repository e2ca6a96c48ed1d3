package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Travel is a saved transport booking, identified upstream by (Service, TravelID).
type Travel struct {
	ID          int64           `json:"id"`
	FromCity    string          `json:"from_city" validate:"required"`
	FromAirport string          `json:"from_airport"`
	ToCity      string          `json:"to_city" validate:"required"`
	ToAirport   string          `json:"to_airport"`
	Departure   time.Time       `json:"departure" validate:"required"`
	Arrival     time.Time       `json:"arrival" validate:"required,gtefield=Departure"`
	Price       decimal.Decimal `json:"price"`
	Avis        float64         `json:"avis" validate:"min=0,max=5"`
	NbAdults    int             `json:"nb_adults" validate:"min=1"`
	NbChildren  int             `json:"nb_children" validate:"min=0"`
	Cabin       string          `json:"cabin"`
	TravelID    string          `json:"travel_id" validate:"required"`
	TravelURL   string          `json:"travel_url"`
	Service     string          `json:"service" validate:"required"`
	CreatedBy   int64           `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TravelOffer is what a provider returns for a search or a lookup.
type TravelOffer struct {
	FromCity    string          `json:"from_city"`
	FromAirport string          `json:"from_airport"`
	ToCity      string          `json:"to_city"`
	ToAirport   string          `json:"to_airport"`
	Departure   time.Time       `json:"departure"`
	Arrival     time.Time       `json:"arrival"`
	Price       decimal.Decimal `json:"price"`
	Avis        float64         `json:"avis"`
	NbAdults    int             `json:"nb_adults"`
	NbChildren  int             `json:"nb_children"`
	Cabin       string          `json:"cabin"`
	TravelID    string          `json:"travel_id"`
	TravelURL   string          `json:"travel_url"`
	Service     string          `json:"service"`
}

// TravelSearch carries /travel/list filters.
type TravelSearch struct {
	FromCity   string
	ToCity     string
	Departure  time.Time
	Arrival    time.Time
	NbAdults   int
	NbChildren int
	MinAvis    *float64
	MaxAvis    *float64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Matches applies the optional rating/price ranges.
func (s TravelSearch) Matches(o TravelOffer) bool {
	if s.MinAvis != nil && o.Avis < *s.MinAvis {
		return false
	}
	if s.MaxAvis != nil && o.Avis > *s.MaxAvis {
		return false
	}
	if s.MinPrice != nil && o.Price.LessThan(*s.MinPrice) {
		return false
	}
	if s.MaxPrice != nil && o.Price.GreaterThan(*s.MaxPrice) {
		return false
	}
	return true
}

// FieldChange records one difference found by a verification.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}
