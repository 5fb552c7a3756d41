package report

import "time"

// Report is one synthesized performance evaluation for an employee covering
// a single calendar month. The JSON shape (including the `_id` key) is a
// stable contract with the frontend and must not change.
type Report struct {
	ID           string    `json:"_id"`
	EmployeeID   string    `json:"employeeId"`
	Month        string    `json:"month"`
	Ranking      float64   `json:"ranking"`
	Improvements []string  `json:"improvements"`
	Qualities    []string  `json:"qualities"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Synthesis is the validated payload extracted from the model response.
type Synthesis struct {
	Ranking      float64  `json:"ranking"`
	Improvements []string `json:"improvements"`
	Qualities    []string `json:"qualities"`
	Summary      string   `json:"summary"`
}

// PlaceholderSynthesis stands in for a month with no reviews. The model is
// never called for an empty window.
func PlaceholderSynthesis() Synthesis {
	return Synthesis{
		Ranking:      0,
		Improvements: []string{},
		Qualities:    []string{},
		Summary:      "No reviews were submitted for this period.",
	}
}
