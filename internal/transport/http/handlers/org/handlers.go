package orghandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/org"
	"reviewhub/internal/transport/http/api"
	"reviewhub/internal/transport/http/middleware"
	"reviewhub/internal/transport/http/shared"
)

type Handler struct {
	Store *org.Store
}

func NewHandler(store *org.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/organization", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/", h.handleUpdate)
		r.Get("/departments", h.handleListDepartments)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/departments", h.handleCreateDepartment)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/departments/{departmentID}", h.handleDeleteDepartment)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	organization, err := h.Store.Get(r.Context(), user.OrgID)
	if err == org.ErrOrganizationNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_get_failed", "failed to load organization", reqID)
		return
	}
	api.Success(w, organization, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "organization name is required")
	if v.Reject(w, reqID) {
		return
	}

	err := h.Store.UpdateProfile(r.Context(), user.OrgID, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Description))
	if err == org.ErrOrganizationNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_update_failed", "failed to update organization", reqID)
		return
	}

	organization, err := h.Store.Get(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_get_failed", "failed to load organization", reqID)
		return
	}
	api.Success(w, organization, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	departments, err := h.Store.ListDepartments(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", reqID)
		return
	}
	if departments == nil {
		departments = []org.Department{}
	}
	api.Success(w, departments, reqID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "department name is required")
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Store.CreateDepartment(r.Context(), user.OrgID, strings.TrimSpace(payload.Name))
	if err == org.ErrDepartmentExists {
		api.Fail(w, http.StatusConflict, "department_exists", "a department with this name already exists", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	err := h.Store.DeleteDepartment(r.Context(), user.OrgID, departmentID)
	switch err {
	case nil:
		api.Success(w, map[string]string{"message": "department deleted"}, reqID)
	case org.ErrDepartmentInUse:
		api.Fail(w, http.StatusConflict, "department_in_use", "department still has employees assigned", reqID)
	case org.ErrDepartmentNotFound:
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", reqID)
	}
}
