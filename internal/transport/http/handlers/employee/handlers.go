package employeehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/employee"
	"reviewhub/internal/domain/notifications"
	"reviewhub/internal/transport/http/api"
	"reviewhub/internal/transport/http/middleware"
	"reviewhub/internal/transport/http/shared"
)

type Handler struct {
	Store  *employee.Store
	Notify *notifications.Service
}

func NewHandler(store *employee.Store, notify *notifications.Service) *Handler {
	return &Handler{Store: store, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{employeeID}", h.handleDelete)
	})
	r.Route("/assignments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListAssignments)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreateAssignment)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/", h.handleDeleteAssignment)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employees, err := h.Store.List(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", reqID)
		return
	}
	if employees == nil {
		employees = []employee.Employee{}
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	emp, err := h.Store.Get(r.Context(), user.OrgID, chi.URLParam(r, "employeeID"))
	if err == employee.ErrNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name         string `json:"name"`
		Title        string `json:"title"`
		Email        string `json:"email"`
		DepartmentID string `json:"departmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("title", payload.Title, "title is required")
	v.Required("email", payload.Email, "email is required")
	v.Email("email", payload.Email)
	if v.Reject(w, reqID) {
		return
	}

	var departmentID any
	if payload.DepartmentID != "" {
		departmentID = payload.DepartmentID
	}

	id, err := h.Store.Create(r.Context(), user.OrgID, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Title), strings.ToLower(strings.TrimSpace(payload.Email)), departmentID)
	if err == employee.ErrEmailTaken {
		api.Fail(w, http.StatusConflict, "email_taken", "an employee with this email already exists", reqID)
		return
	}
	if err == employee.ErrDepartmentNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}

	emp, err := h.Store.Get(r.Context(), user.OrgID, id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload struct {
		Name         string `json:"name"`
		Title        string `json:"title"`
		Email        string `json:"email"`
		DepartmentID string `json:"departmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("title", payload.Title, "title is required")
	v.Required("email", payload.Email, "email is required")
	v.Email("email", payload.Email)
	if v.Reject(w, reqID) {
		return
	}

	var departmentID any
	if payload.DepartmentID != "" {
		departmentID = payload.DepartmentID
	}

	err := h.Store.Update(r.Context(), user.OrgID, employeeID, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Title), strings.ToLower(strings.TrimSpace(payload.Email)), departmentID)
	switch err {
	case nil:
	case employee.ErrNotFound:
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	case employee.ErrEmailTaken:
		api.Fail(w, http.StatusConflict, "email_taken", "an employee with this email already exists", reqID)
		return
	case employee.ErrDepartmentNotFound:
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		return
	default:
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		return
	}

	emp, err := h.Store.Get(r.Context(), user.OrgID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	err := h.Store.Delete(r.Context(), user.OrgID, chi.URLParam(r, "employeeID"))
	if err == employee.ErrNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", reqID)
		return
	}
	api.Success(w, map[string]string{"message": "employee deleted"}, reqID)
}

// handleListAssignments returns the org's reviewer -> reviewee edges.
// Non-admin callers only ever see their own outgoing edges.
func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	reviewerID := r.URL.Query().Get("reviewerId")
	if user.Role != auth.RoleAdmin {
		reviewerID = user.EmployeeID
	}

	assignments, err := h.Store.ListAssignments(r.Context(), user.OrgID, reviewerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_list_failed", "failed to list assignments", reqID)
		return
	}
	if assignments == nil {
		assignments = []employee.Assignment{}
	}
	api.Success(w, assignments, reqID)
}

func (h *Handler) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		ReviewerID string `json:"reviewerId"`
		RevieweeID string `json:"revieweeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("reviewerId", payload.ReviewerID, "reviewer id is required")
	v.Required("revieweeId", payload.RevieweeID, "reviewee id is required")
	if payload.ReviewerID != "" && payload.ReviewerID == payload.RevieweeID {
		v.Add("revieweeId", "an employee cannot review themselves")
	}
	if v.Reject(w, reqID) {
		return
	}

	err := h.Store.CreateAssignment(r.Context(), user.OrgID, payload.ReviewerID, payload.RevieweeID)
	switch err {
	case nil:
	case employee.ErrAssignmentExists:
		api.Fail(w, http.StatusConflict, "assignment_exists", "this assignment already exists", reqID)
		return
	case employee.ErrNotFound:
		api.Fail(w, http.StatusNotFound, "not_found", "reviewer or reviewee not found", reqID)
		return
	case employee.ErrSelfAssignment:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "an employee cannot review themselves", reqID)
		return
	default:
		api.Fail(w, http.StatusInternalServerError, "assignment_create_failed", "failed to create assignment", reqID)
		return
	}

	if h.Notify != nil {
		if err := h.Notify.NotifyEmployee(r.Context(), user.OrgID, payload.ReviewerID, notifications.TypeAssignmentCreated, "New review assignment", "You have been assigned a new colleague to review."); err != nil {
			slog.Warn("assignment notification failed", "err", err)
		}
	}
	api.Created(w, map[string]string{
		"reviewerId": payload.ReviewerID,
		"revieweeId": payload.RevieweeID,
	}, reqID)
}

func (h *Handler) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	reviewerID := r.URL.Query().Get("reviewerId")
	revieweeID := r.URL.Query().Get("revieweeId")

	v := shared.NewValidator()
	v.Required("reviewerId", reviewerID, "reviewer id is required")
	v.Required("revieweeId", revieweeID, "reviewee id is required")
	if v.Reject(w, reqID) {
		return
	}

	err := h.Store.DeleteAssignment(r.Context(), user.OrgID, reviewerID, revieweeID)
	if err == employee.ErrAssignmentNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_delete_failed", "failed to delete assignment", reqID)
		return
	}
	api.Success(w, map[string]string{"message": "assignment deleted"}, reqID)
}
