package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders one report as a single-page PDF for download.
func BuildPDF(rep *Report, emp EmployeeInfo) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Performance Report %s", rep.Month), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Monthly Performance Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", emp.Name, emp.Title))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Month: %s", rep.Month))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Score: %.1f / 10", rep.Ranking))
	pdf.Ln(11)

	writeSection := func(title string, items []string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		if len(items) == 0 {
			pdf.Cell(0, 6, "-")
			pdf.Ln(8)
			return
		}
		for _, item := range items {
			pdf.MultiCell(0, 6, "- "+item, "", "L", false)
		}
		pdf.Ln(4)
	}

	writeSection("Strengths", rep.Qualities)
	writeSection("Areas for Improvement", rep.Improvements)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, rep.Summary, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return buf.Bytes(), nil
}
