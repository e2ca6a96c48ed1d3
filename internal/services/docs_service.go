package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"voyage/internal/domain/models"
	"voyage/internal/utils"
)

// DocsService renders printable trip documents.
type DocsService struct {
	RequestID string
}

// GenerateItinerary renders t and its steps as a one-column A4 PDF.
func (s DocsService) GenerateItinerary(t models.Trip) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, "docs", "generate_itinerary", fmt.Sprintf("trip_id=%d steps=%d", t.ID, len(t.Steps)))
	return buildItineraryPDF(t)
}

func buildItineraryPDF(t models.Trip) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Itinerary", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(safe(t.Name, "Trip")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Trip      : #%d", t.ID),
		fmt.Sprintf("From      : %s", dateOrDash(t.StartDate)),
		fmt.Sprintf("To        : %s", dateOrDash(t.EndDate)),
	}
	if t.ShareExpiresAt != nil {
		lines = append(lines, fmt.Sprintf("Shared until: %s", utils.FormatDateTime(*t.ShareExpiresAt)))
	}
	for _, l := range lines {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, tr(d), "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Steps")
	pdf.Ln(9)

	if len(t.Steps) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 7, "No steps yet.")
		pdf.Ln(7)
	}
	for _, st := range t.Steps {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, tr(fmt.Sprintf("%d. [%s] %s", st.Position, strings.ToUpper(string(st.Kind)), safe(st.Title, "-"))))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 10)
		when := dateTimeOrDash(st.StartsAt)
		if st.EndsAt != nil {
			when += " -> " + utils.FormatDateTime(*st.EndsAt)
		}
		pdf.Cell(0, 6, tr(fmt.Sprintf("   When   : %s", when)))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("   Status : %s", st.Status))
		pdf.Ln(6)
		if n := strings.TrimSpace(st.Notes); n != "" {
			pdf.MultiCell(0, 5, tr("   "+n), "", "", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ITINERARY_%d_%s.pdf", t.ID, safeFilenamePart(t.Name))
	return buf.Bytes(), filename, nil
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return utils.FormatDate(*t)
}

func dateTimeOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return utils.FormatDateTime(*t)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
