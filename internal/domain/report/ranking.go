package report

import (
	"context"
	"sort"
)

type RankingEntry struct {
	EmployeeID    string   `json:"employeeId"`
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	AverageScore  float64  `json:"averageScore"`
	MissingMonths []string `json:"missingMonths"`
}

type Ranking struct {
	// Months lists the three considered month identifiers, most recent
	// first, so the UI can render which window was evaluated.
	Months  []string       `json:"months"`
	Entries []RankingEntry `json:"entries"`
}

// BestEmployees averages each employee's report scores over the three prior
// completed calendar months and sorts descending. Employees without any
// report average 0 with all three months missing. The sort is stable: ties
// keep the employee fetch order.
func (s *Service) BestEmployees(ctx context.Context, orgID string) (Ranking, error) {
	months := lastCompletedMonths(s.now(), 3)

	employees, err := s.employees.List(ctx, orgID)
	if err != nil {
		return Ranking{}, err
	}

	ranking := Ranking{
		Months:  make([]string, 0, len(months)),
		Entries: make([]RankingEntry, 0, len(employees)),
	}
	for _, month := range months {
		ranking.Months = append(ranking.Months, month.String())
	}

	for _, emp := range employees {
		entry := RankingEntry{
			EmployeeID:    emp.ID,
			Name:          emp.Name,
			Title:         emp.Title,
			MissingMonths: make([]string, 0, len(months)),
		}

		var total float64
		var found int
		for _, month := range months {
			rep, err := s.store.GetByMonth(ctx, orgID, emp.ID, month)
			if err != nil {
				return Ranking{}, err
			}
			if rep == nil {
				entry.MissingMonths = append(entry.MissingMonths, month.String())
				continue
			}
			total += rep.Ranking
			found++
		}
		if found > 0 {
			entry.AverageScore = total / float64(found)
		}
		ranking.Entries = append(ranking.Entries, entry)
	}

	sort.SliceStable(ranking.Entries, func(i, j int) bool {
		return ranking.Entries[i].AverageScore > ranking.Entries[j].AverageScore
	})
	return ranking, nil
}
