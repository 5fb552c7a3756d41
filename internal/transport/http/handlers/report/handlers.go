package reporthandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/employee"
	"reviewhub/internal/domain/notifications"
	"reviewhub/internal/domain/report"
	"reviewhub/internal/transport/http/api"
	"reviewhub/internal/transport/http/middleware"
	"reviewhub/internal/transport/http/shared"
)

const maxBackfillMonths = 24

type Handler struct {
	Service          *report.Service
	Employees        report.EmployeeSource
	Notify           *notifications.Service
	SynthesisTimeout time.Duration
}

func NewHandler(service *report.Service, employees report.EmployeeSource, notify *notifications.Service, synthesisTimeout time.Duration) *Handler {
	return &Handler{
		Service:          service,
		Employees:        employees,
		Notify:           notify,
		SynthesisTimeout: synthesisTimeout,
	}
}

// RegisterRoutes registers the read endpoints. The generation endpoints are
// registered separately so the router can wrap them in a tighter rate limit;
// both register flat paths because chi refuses to mount /reports twice.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/reports/best-employees", h.handleBestEmployees)
		r.Get("/reports/employee/{employeeID}", h.handleListByEmployee)
		r.Get("/reports/employee/{employeeID}/month/{month}", h.handleGetByMonth)
		r.Get("/reports/{reportID}/pdf", h.handleDownloadPDF)
		r.Get("/reports/{reportID}", h.handleGetByID)
	})
}

func (h *Handler) RegisterGenerationRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/reports/generate", h.handleGenerate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/reports/backfill", h.handleBackfill)
	})
}

// canViewEmployee restricts non-admin callers to their own reports.
func canViewEmployee(user auth.UserContext, employeeID string) bool {
	return user.Role == auth.RoleAdmin || (user.EmployeeID != "" && user.EmployeeID == employeeID)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if !canViewEmployee(user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}

	reports, err := h.Service.ListByEmployee(r.Context(), user.OrgID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_list_failed", "failed to list reports", reqID)
		return
	}
	if reports == nil {
		reports = []report.Report{}
	}
	api.Success(w, reports, reqID)
}

func (h *Handler) handleGetByMonth(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if !canViewEmployee(user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}

	v := shared.NewValidator()
	month, ok := v.Month("month", chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}

	rep, err := h.Service.GetByMonth(r.Context(), user.OrgID, employeeID, month)
	if errors.Is(err, report.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "no report for this employee and month", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_get_failed", "failed to load report", reqID)
		return
	}
	api.Success(w, rep, reqID)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	rep, err := h.Service.GetByID(r.Context(), user.OrgID, chi.URLParam(r, "reportID"))
	if errors.Is(err, report.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_get_failed", "failed to load report", reqID)
		return
	}
	if !canViewEmployee(user, rep.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}
	api.Success(w, rep, reqID)
}

func (h *Handler) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	rep, err := h.Service.GetByID(r.Context(), user.OrgID, chi.URLParam(r, "reportID"))
	if errors.Is(err, report.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_get_failed", "failed to load report", reqID)
		return
	}
	if !canViewEmployee(user, rep.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}

	emp, err := h.Employees.Get(r.Context(), user.OrgID, rep.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_pdf_failed", "failed to render report", reqID)
		return
	}

	pdf, err := report.BuildPDF(rep, emp)
	if err != nil {
		slog.Warn("report pdf render failed", "err", err, "reportId", rep.ID)
		api.Fail(w, http.StatusInternalServerError, "report_pdf_failed", "failed to render report", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("report-%s.pdf", rep.Month)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("report pdf write failed", "err", err)
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		EmployeeID string `json:"employeeId"`
		Month      string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	month, ok := v.Month("month", payload.Month)
	if v.Reject(w, reqID) || !ok {
		return
	}

	ctx, cancel := h.synthesisContext(r.Context())
	defer cancel()

	rep, err := h.Service.Generate(ctx, user.OrgID, payload.EmployeeID, month)
	if err != nil {
		h.failGenerate(w, err, reqID)
		return
	}

	if h.Notify != nil {
		if err := h.Notify.NotifyEmployee(r.Context(), user.OrgID, rep.EmployeeID, notifications.TypeReportReady, "Performance report ready", fmt.Sprintf("Your performance report for %s is available.", rep.Month)); err != nil {
			slog.Warn("report notification failed", "err", err)
		}
	}
	api.Created(w, rep, reqID)
}

func (h *Handler) handleBackfill(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		EmployeeID string   `json:"employeeId"`
		Months     []string `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	if len(payload.Months) == 0 {
		v.Add("months", "at least one month is required")
	}
	if len(payload.Months) > maxBackfillMonths {
		v.Add("months", fmt.Sprintf("at most %d months per request", maxBackfillMonths))
	}
	months := make([]report.Month, 0, len(payload.Months))
	for _, raw := range payload.Months {
		month, ok := v.Month("months", raw)
		if ok {
			months = append(months, month)
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	ctx, cancel := h.synthesisContext(r.Context())
	defer cancel()

	result, err := h.Service.Backfill(ctx, user.OrgID, payload.EmployeeID, months)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_backfill_failed", "failed to backfill reports", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) failGenerate(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, employee.ErrNotFound), errors.Is(err, report.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
	case errors.Is(err, report.ErrDuplicateReport):
		api.Fail(w, http.StatusConflict, "report_exists", "a report already exists for this employee and month", reqID)
	case errors.Is(err, report.ErrMalformedResponse), errors.Is(err, report.ErrSynthesisFailed):
		slog.Warn("report synthesis failed", "err", err)
		api.Fail(w, http.StatusBadGateway, "synthesis_failed", "the AI synthesis did not produce a usable report", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "report_generate_failed", "failed to generate report", reqID)
	}
}

func (h *Handler) handleBestEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	ranking, err := h.Service.BestEmployees(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ranking_failed", "failed to compute ranking", reqID)
		return
	}
	api.Success(w, ranking, reqID)
}

func (h *Handler) synthesisContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.SynthesisTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.SynthesisTimeout)
}
