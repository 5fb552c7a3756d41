package report

import (
	"bytes"
	"testing"
	"time"
)

func TestBuildPDF(t *testing.T) {
	rep := &Report{
		ID:           "rep-1",
		EmployeeID:   "emp-1",
		Month:        "2025-07",
		Ranking:      8.5,
		Qualities:    []string{"collaborative", "thorough"},
		Improvements: []string{"estimation"},
		Summary:      "A strong month with consistent delivery.",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	emp := EmployeeInfo{ID: "emp-1", Name: "Alice", Title: "Engineer"}

	pdf, err := BuildPDF(rep, emp)
	if err != nil {
		t.Fatalf("BuildPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestBuildPDFPlaceholderReport(t *testing.T) {
	rep := &Report{
		ID:           "rep-2",
		EmployeeID:   "emp-1",
		Month:        "2025-06",
		Qualities:    []string{},
		Improvements: []string{},
		Summary:      "No reviews were submitted for this period.",
	}

	pdf, err := BuildPDF(rep, EmployeeInfo{Name: "Alice", Title: "Engineer"})
	if err != nil {
		t.Fatalf("BuildPDF failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty PDF output")
	}
}
