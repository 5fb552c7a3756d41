package reporthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/report"
	"reviewhub/internal/transport/http/middleware"
)

type memReportStore struct {
	reports map[string]*report.Report
	nextID  int
}

func (m *memReportStore) key(employeeID string, month report.Month) string {
	return employeeID + "/" + month.String()
}

func (m *memReportStore) GetByMonth(ctx context.Context, orgID, employeeID string, month report.Month) (*report.Report, error) {
	return m.reports[m.key(employeeID, month)], nil
}

func (m *memReportStore) GetByID(ctx context.Context, orgID, reportID string) (*report.Report, error) {
	for _, rep := range m.reports {
		if rep.ID == reportID {
			return rep, nil
		}
	}
	return nil, report.ErrNotFound
}

func (m *memReportStore) ListByEmployee(ctx context.Context, orgID, employeeID string) ([]report.Report, error) {
	var out []report.Report
	for _, rep := range m.reports {
		if rep.EmployeeID == employeeID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (m *memReportStore) Create(ctx context.Context, orgID, employeeID string, month report.Month, syn report.Synthesis) (*report.Report, error) {
	key := m.key(employeeID, month)
	if _, exists := m.reports[key]; exists {
		return nil, report.ErrDuplicateReport
	}
	m.nextID++
	rep := &report.Report{
		ID:           fmt.Sprintf("rep-%d", m.nextID),
		EmployeeID:   employeeID,
		Month:        month.String(),
		Ranking:      syn.Ranking,
		Improvements: syn.Improvements,
		Qualities:    syn.Qualities,
		Summary:      syn.Summary,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.reports[key] = rep
	return rep, nil
}

type memReviews struct {
	texts map[string][]string
}

func (m *memReviews) TextsForRange(ctx context.Context, orgID, employeeID string, start, end time.Time) ([]string, error) {
	return m.texts[employeeID], nil
}

type memEmployees struct{}

func (memEmployees) Get(ctx context.Context, orgID, employeeID string) (report.EmployeeInfo, error) {
	return report.EmployeeInfo{ID: employeeID, Name: "Alice", Title: "Engineer"}, nil
}

func (memEmployees) List(ctx context.Context, orgID string) ([]report.EmployeeInfo, error) {
	return []report.EmployeeInfo{{ID: "emp-1", Name: "Alice", Title: "Engineer"}}, nil
}

type memGenerator struct {
	response string
}

func (g *memGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.response, nil
}

const testSecret = "test-secret"

func newTestRouter(t *testing.T, gen report.Generator) (*chi.Mux, *memReportStore) {
	t.Helper()

	store := &memReportStore{reports: map[string]*report.Report{}}
	reviews := &memReviews{texts: map[string][]string{
		"emp-1": {"Thorough reviewer, ships on time."},
	}}
	svc := report.NewService(store, reviews, memEmployees{}, report.NewSynthesizer(gen))
	handler := NewHandler(svc, memEmployees{}, nil, time.Minute)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	handler.RegisterRoutes(router)
	handler.RegisterGenerationRoutes(router)
	return router, store
}

func bearerToken(t *testing.T, role, employeeID string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:     "user-1",
		OrgID:      "org-1",
		EmployeeID: employeeID,
		Role:       role,
	}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return "Bearer " + token
}

func TestGenerateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &memGenerator{
		response: `{"ranking": 7, "qualities": ["thorough"], "improvements": ["pacing"], "summary": "Good month."}`,
	})

	body, _ := json.Marshal(map[string]string{"employeeId": "emp-1", "month": "2025-07"})
	req := httptest.NewRequest(http.MethodPost, "/reports/generate", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, auth.RoleAdmin, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatal("success must be true")
	}

	var data map[string]any
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if _, ok := data["_id"]; !ok {
		t.Fatal("report payload must expose the _id key")
	}
	if data["month"] != "2025-07" {
		t.Fatalf("month = %v", data["month"])
	}
	if data["ranking"] != 7.0 {
		t.Fatalf("ranking = %v", data["ranking"])
	}
}

func TestGenerateEndpointRequiresAdmin(t *testing.T) {
	router, _ := newTestRouter(t, &memGenerator{})

	body, _ := json.Marshal(map[string]string{"employeeId": "emp-1", "month": "2025-07"})
	req := httptest.NewRequest(http.MethodPost, "/reports/generate", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, auth.RoleEmployee, "emp-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestGenerateEndpointRejectsBadMonth(t *testing.T) {
	router, _ := newTestRouter(t, &memGenerator{})

	body, _ := json.Marshal(map[string]string{"employeeId": "emp-1", "month": "July 2025"})
	req := httptest.NewRequest(http.MethodPost, "/reports/generate", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, auth.RoleAdmin, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateEndpointMapsSynthesisFailure(t *testing.T) {
	router, _ := newTestRouter(t, &memGenerator{response: "sorry, no JSON today"})

	body, _ := json.Marshal(map[string]string{"employeeId": "emp-1", "month": "2025-07"})
	req := httptest.NewRequest(http.MethodPost, "/reports/generate", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, auth.RoleAdmin, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "synthesis_failed" {
		t.Fatalf("code = %s", envelope.Error.Code)
	}
}

func TestGetByMonthOwnReportOnly(t *testing.T) {
	router, store := newTestRouter(t, &memGenerator{})
	month := report.Month{Year: 2025, Month: time.July}
	if _, err := store.Create(context.Background(), "org-1", "emp-1", month, report.PlaceholderSynthesis()); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/employee/emp-1/month/2025-07", nil)
	req.Header.Set("Authorization", bearerToken(t, auth.RoleEmployee, "emp-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("own report status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/employee/emp-1/month/2025-07", nil)
	req.Header.Set("Authorization", bearerToken(t, auth.RoleEmployee, "emp-2"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign report status = %d, want 403", rec.Code)
	}
}

func TestGetByMonthMissingReport(t *testing.T) {
	router, _ := newTestRouter(t, &memGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/reports/employee/emp-1/month/2025-07", nil)
	req.Header.Set("Authorization", bearerToken(t, auth.RoleAdmin, ""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBackfillEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &memGenerator{
		response: `{"ranking": 6, "qualities": [], "improvements": [], "summary": "ok"}`,
	})

	body, _ := json.Marshal(map[string]any{
		"employeeId": "emp-1",
		"months":     []string{"2025-05", "2025-06", "2025-07"},
	})
	req := httptest.NewRequest(http.MethodPost, "/reports/backfill", bytes.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, auth.RoleAdmin, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Success      bool              `json:"success"`
			Reports      []json.RawMessage `json:"generatedReports"`
			FailedMonths []json.RawMessage `json:"failedMonths"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Data.Success {
		t.Fatal("backfill should succeed")
	}
	if len(envelope.Data.Reports)+len(envelope.Data.FailedMonths) != 3 {
		t.Fatalf("reports(%d) + failures(%d) != 3", len(envelope.Data.Reports), len(envelope.Data.FailedMonths))
	}
}
