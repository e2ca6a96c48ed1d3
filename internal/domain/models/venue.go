package models

import "time"

// Venue is the shared shape of restaurants (eat) and bars (drink).
type Venue struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" validate:"required"`
	PhotoURL    string    `json:"photo_url"`
	Address     string    `json:"address"`
	City        string    `json:"city" validate:"required"`
	Avis        float64   `json:"avis" validate:"min=0,max=5"`
	NbAdults    int       `json:"nb_adults" validate:"min=1"`
	NbChildren  int       `json:"nb_children" validate:"min=0"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
}

type VenueSearch struct {
	City       string
	NbAdults   int
	NbChildren int
	Date       time.Time
	MinAvis    *float64
	MaxAvis    *float64
}
