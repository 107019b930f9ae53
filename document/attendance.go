// Package document renders the documents the notification engine attaches to
// its emails. Today that is the attendance sheet shipped with the trainer
// documentation pack.
package document

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"trainflow/session"
)

// AttendanceSheet renders a printable sign-in sheet for a session.
type AttendanceSheet struct{}

func NewAttendanceSheet() *AttendanceSheet {
	return &AttendanceSheet{}
}

const blankSignatureRows = 10

// Render produces the PDF bytes for the session's attendance sheet. Known
// participants are pre-filled; when the list is empty or unparsable the sheet
// falls back to blank rows the trainer fills in on site.
func (r *AttendanceSheet) Render(s session.Session) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Attendance sheet", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Attendance sheet", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Training: %s", s.Formation.Title), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Date: %s", s.Date.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Client: %s", s.Client.CompanyName), "", 1, "L", false, 0, "")
	if s.Trainer != nil {
		pdf.CellFormat(0, 7, fmt.Sprintf("Trainer: %s", s.Trainer.FullName), "", 1, "L", false, 0, "")
	}
	if s.Location != nil && *s.Location != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Location: %s", *s.Location), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 8, "Participant", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Signature (morning)", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Signature (afternoon)", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	participants := s.Participants()
	for _, p := range participants {
		pdf.CellFormat(70, 10, p.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 10, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 10, "", "1", 1, "L", false, 0, "")
	}
	for i := len(participants); i < blankSignatureRows; i++ {
		pdf.CellFormat(70, 10, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 10, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 10, "", "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("document: render attendance sheet: %w", err)
	}
	return buf.Bytes(), nil
}
