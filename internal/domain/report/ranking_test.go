package report

import (
	"context"
	"testing"
	"time"
)

func seedReport(store *fakeStore, employeeID string, month Month, score float64) {
	_, _ = store.Create(context.Background(), "org-1", employeeID, month, Synthesis{
		Ranking:      score,
		Improvements: []string{},
		Qualities:    []string{},
		Summary:      "seeded",
	})
}

func TestBestEmployeesOrdering(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeReviews{texts: map[string][]string{}}, &stubGenerator{})
	svc.now = func() time.Time { return time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC) }

	months := []Month{
		{Year: 2025, Month: time.July},
		{Year: 2025, Month: time.June},
		{Year: 2025, Month: time.May},
	}
	for _, m := range months {
		seedReport(store, "emp-1", m, 9.0)
		seedReport(store, "emp-2", m, 7.0)
		seedReport(store, "emp-3", m, 8.0)
	}

	ranking, err := svc.BestEmployees(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("BestEmployees failed: %v", err)
	}

	wantMonths := []string{"2025-07", "2025-06", "2025-05"}
	for i, m := range ranking.Months {
		if m != wantMonths[i] {
			t.Fatalf("months[%d] = %s, want %s", i, m, wantMonths[i])
		}
	}

	wantOrder := []string{"emp-1", "emp-3", "emp-2"}
	if len(ranking.Entries) != len(wantOrder) {
		t.Fatalf("got %d entries, want %d", len(ranking.Entries), len(wantOrder))
	}
	for i, entry := range ranking.Entries {
		if entry.EmployeeID != wantOrder[i] {
			t.Fatalf("entries[%d] = %s, want %s", i, entry.EmployeeID, wantOrder[i])
		}
		if len(entry.MissingMonths) != 0 {
			t.Fatalf("entries[%d] missing months = %v", i, entry.MissingMonths)
		}
	}
	if ranking.Entries[0].AverageScore != 9.0 {
		t.Fatalf("top average = %v, want 9.0", ranking.Entries[0].AverageScore)
	}
}

func TestBestEmployeesPartialReports(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeReviews{texts: map[string][]string{}}, &stubGenerator{})
	svc.now = func() time.Time { return time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC) }

	// emp-1 has only one of the three months; emp-2 has none.
	seedReport(store, "emp-1", Month{Year: 2025, Month: time.July}, 6.0)

	ranking, err := svc.BestEmployees(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("BestEmployees failed: %v", err)
	}

	byID := map[string]RankingEntry{}
	for _, entry := range ranking.Entries {
		byID[entry.EmployeeID] = entry
	}

	one := byID["emp-1"]
	if one.AverageScore != 6.0 {
		t.Fatalf("average over found months = %v, want 6.0", one.AverageScore)
	}
	if len(one.MissingMonths) != 2 {
		t.Fatalf("missing months = %v, want 2 entries", one.MissingMonths)
	}

	two := byID["emp-2"]
	if two.AverageScore != 0 {
		t.Fatalf("employee without reports should average 0, got %v", two.AverageScore)
	}
	if len(two.MissingMonths) != 3 {
		t.Fatalf("missing months = %v, want 3 entries", two.MissingMonths)
	}
}

func TestBestEmployeesStableTieBreak(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeReviews{texts: map[string][]string{}}, &stubGenerator{})
	svc.now = func() time.Time { return time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC) }

	for _, id := range []string{"emp-1", "emp-2", "emp-3"} {
		seedReport(store, id, Month{Year: 2025, Month: time.July}, 5.0)
	}

	ranking, err := svc.BestEmployees(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("BestEmployees failed: %v", err)
	}

	wantOrder := []string{"emp-1", "emp-2", "emp-3"}
	for i, entry := range ranking.Entries {
		if entry.EmployeeID != wantOrder[i] {
			t.Fatalf("tie-break broke fetch order: entries[%d] = %s", i, entry.EmployeeID)
		}
	}
}
