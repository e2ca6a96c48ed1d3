package services

import (
	"testing"
	"time"

	"voyage/internal/domain/models"
)

func TestDocsServiceGenerateItinerary(t *testing.T) {
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	until := start.Add(24 * time.Hour)
	trip := models.Trip{
		ID:             7,
		Name:           "Été à Rome / 2024",
		Description:    "Family trip",
		StartDate:      &start,
		ShareExpiresAt: &until,
		Steps: []models.Step{
			{Position: 1, Kind: models.StepTravel, Title: "Flight", StartsAt: &start, Status: models.StepOK},
			{Position: 2, Kind: models.StepSleep, Title: "Hotel", Notes: "Late check-in", Status: models.StepPending},
		},
	}

	pdf, filename, err := DocsService{RequestID: "r1"}.GenerateItinerary(trip)
	if err != nil {
		t.Fatalf("GenerateItinerary returned error: %v", err)
	}
	if len(pdf) == 0 || filename == "" {
		t.Fatalf("GenerateItinerary returned empty data")
	}
	if filename != "ITINERARY_7_Été_à_Rome___2024.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}

	empty, _, err := DocsService{}.GenerateItinerary(models.Trip{ID: 8})
	if err != nil || len(empty) == 0 {
		t.Fatalf("empty trip should still render: %v", err)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := safeFilenamePart("  "); got != "NA" {
		t.Fatalf("blank name: got %q", got)
	}
	if got := safeFilenamePart("a/b:c"); got != "a_b_c" {
		t.Fatalf("got %q", got)
	}
}
