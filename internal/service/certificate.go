package service

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"clearance-backend/internal/domain"
)

type pdfCertificateRenderer struct {
	institution string
}

// NewCertificateRenderer builds the PDF renderer for approved clearance
// applications. The institution name goes on the certificate header.
func NewCertificateRenderer(institution string) CertificateRenderer {
	return &pdfCertificateRenderer{institution: institution}
}

func (r *pdfCertificateRenderer) Render(app *domain.Application, student *domain.Student, decisions []domain.StageDecision) ([]byte, error) {
	if app.Status != domain.ApplicationApproved {
		return nil, fmt.Errorf("%w: certificate requires an approved application", domain.ErrValidation)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Clearance Certificate", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, r.institution, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Clearance Certificate", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"This certifies that %s (student number %s) has completed the clearance process. All %d approval stages were cleared with no outstanding obligations.",
		student.FullName, student.Number, app.TotalStages), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Application: #%d (%s)", app.ID, app.Type), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Submitted: %s", app.SubmittedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
	if app.CompletedAt != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Completed: %s", app.CompletedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(15, 7, "No", "1", 0, "C", false, 0, "")
	pdf.CellFormat(75, 7, "Stage", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, "Decided By", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Date", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i := range decisions {
		d := &decisions[i]
		decided := ""
		if d.DecidedAt != nil {
			decided = d.DecidedAt.Format("2006-01-02")
		}
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", d.StageOrder), "1", 0, "C", false, 0, "")
		pdf.CellFormat(75, 7, d.StageName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, d.AuthorityName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, decided, "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering certificate: %w", err)
	}
	return buf.Bytes(), nil
}
