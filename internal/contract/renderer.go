// Package contract renders a one-page performance contract PDF for a gig.
package contract

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/gigdesk/gigdesk-api/internal/calendar"
	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/internal/schedule"
)

// Renderer produces performance contract PDFs.
type Renderer struct {
	bandName     string
	bookingEmail string
}

// NewRenderer constructs a contract renderer. bandName appears as the
// contracting party.
func NewRenderer(bandName, bookingEmail string) *Renderer {
	return &Renderer{bandName: bandName, bookingEmail: bookingEmail}
}

// Render draws the contract for a gig. Only the event date is required; every
// other field renders blank when absent so a half-booked gig still produces a
// usable draft.
func (r *Renderer) Render(detail models.GigDetail) ([]byte, error) {
	day, err := schedule.ParseDate(detail.EventDate)
	if err != nil {
		return nil, fmt.Errorf("contract date: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "PERFORMANCE CONTRACT", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, r.bandName, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	rows := [][2]string{
		{"Event", calendar.Summary(detail)},
		{"Date", day.Format("Monday, January 2, 2006")},
		{"Location", calendar.Location(detail.Venue)},
	}
	if detail.StartTime != nil {
		rows = append(rows, [2]string{"Start", schedule.Format12h(*detail.StartTime)})
	}
	if detail.EndTime != nil {
		rows = append(rows, [2]string{"End", schedule.Format12h(*detail.EndTime)})
	}
	if detail.Fee != nil {
		rows = append(rows, [2]string{"Fee", fmt.Sprintf("$%.2f", *detail.Fee)})
	}

	pdf.SetFont("Arial", "", 11)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, row[1], "1", 1, "", false, 0, "")
	}
	pdf.Ln(6)

	if len(detail.Lineup) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Performers", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, slot := range detail.Lineup {
			line := slot.Name
			if slot.Role != "" {
				line += " (" + slot.Role + ")"
			}
			pdf.CellFormat(0, 6, "- "+line, "", 1, "", false, 0, "")
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, "Payment is due in full on the date of performance unless otherwise "+
		"agreed in writing. Cancellation within 14 days of the event forfeits any deposit. "+
		"Questions to "+r.bookingEmail+".", "", "", false)
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(85, 8, "Purchaser signature: ______________________", "", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, "Date: ____________", "", 1, "", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(85, 8, "For "+r.bandName+": ______________________", "", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, "Date: ____________", "", 1, "", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render contract pdf: %w", err)
	}
	return buf.Bytes(), nil
}
