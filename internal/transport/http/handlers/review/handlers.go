package reviewhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/notifications"
	"reviewhub/internal/domain/review"
	"reviewhub/internal/transport/http/api"
	"reviewhub/internal/transport/http/middleware"
	"reviewhub/internal/transport/http/shared"
)

const maxContentLength = 10000

type Handler struct {
	Service *review.Service
	Notify  *notifications.Service
}

func NewHandler(service *review.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: service, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{reviewID}", h.handleGet)
		r.Put("/{reviewID}", h.handleUpdate)
		r.Delete("/{reviewID}", h.handleDelete)
	})
}

// handleList filters by subjectId and authorId. Non-admin callers may only
// see reviews they wrote or reviews written about them.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	subjectID := r.URL.Query().Get("subjectId")
	authorID := r.URL.Query().Get("authorId")

	if user.Role != auth.RoleAdmin {
		if user.EmployeeID == "" {
			api.Fail(w, http.StatusForbidden, "forbidden", "no employee record linked to this account", reqID)
			return
		}
		if subjectID != user.EmployeeID && authorID != user.EmployeeID {
			authorID = user.EmployeeID
		}
	}

	reviews, err := h.Service.List(r.Context(), user.OrgID, subjectID, authorID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_list_failed", "failed to list reviews", reqID)
		return
	}

	if rawMonth := r.URL.Query().Get("month"); rawMonth != "" {
		v := shared.NewValidator()
		month, ok := v.Month("month", rawMonth)
		if !ok {
			v.Reject(w, reqID)
			return
		}
		start, end := month.Bounds()
		filtered := reviews[:0]
		for _, rev := range reviews {
			if !rev.CreatedAt.Before(start) && rev.CreatedAt.Before(end) {
				filtered = append(filtered, rev)
			}
		}
		reviews = filtered
	}

	if reviews == nil {
		reviews = []review.Review{}
	}
	api.Success(w, reviews, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	rev, err := h.Service.Get(r.Context(), user.OrgID, chi.URLParam(r, "reviewID"))
	if err == review.ErrNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_get_failed", "failed to load review", reqID)
		return
	}
	if user.Role != auth.RoleAdmin && rev.AuthorID != user.EmployeeID && rev.SubjectID != user.EmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}
	api.Success(w, rev, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if user.EmployeeID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "no employee record linked to this account", reqID)
		return
	}

	var payload struct {
		SubjectID string `json:"subjectId"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	content := strings.TrimSpace(payload.Content)
	v := shared.NewValidator()
	v.Required("subjectId", payload.SubjectID, "subject id is required")
	v.Required("content", content, "content is required")
	if len(content) > maxContentLength {
		v.Add("content", "must be at most 10000 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Service.Create(r.Context(), user.OrgID, user.EmployeeID, payload.SubjectID, content)
	if err == review.ErrNotAssigned {
		api.Fail(w, http.StatusForbidden, "not_assigned", "you are not assigned to review this employee", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_create_failed", "failed to create review", reqID)
		return
	}

	if h.Notify != nil {
		if err := h.Notify.NotifyEmployee(r.Context(), user.OrgID, payload.SubjectID, notifications.TypeReviewReceived, "New peer review", "A colleague has submitted a review about you."); err != nil {
			slog.Warn("review notification failed", "err", err)
		}
	}

	rev, err := h.Service.Get(r.Context(), user.OrgID, id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_get_failed", "failed to load review", reqID)
		return
	}
	api.Created(w, rev, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	content := strings.TrimSpace(payload.Content)
	v := shared.NewValidator()
	v.Required("content", content, "content is required")
	if len(content) > maxContentLength {
		v.Add("content", "must be at most 10000 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	err := h.Service.Update(r.Context(), user.OrgID, reviewID, user.EmployeeID, content)
	switch err {
	case nil:
	case review.ErrNotFound:
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
		return
	case review.ErrNotAuthor:
		api.Fail(w, http.StatusForbidden, "not_author", "only the author may edit a review", reqID)
		return
	case review.ErrNotAssigned:
		api.Fail(w, http.StatusForbidden, "not_assigned", "you are no longer assigned to review this employee", reqID)
		return
	default:
		api.Fail(w, http.StatusInternalServerError, "review_update_failed", "failed to update review", reqID)
		return
	}

	rev, err := h.Service.Get(r.Context(), user.OrgID, reviewID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_get_failed", "failed to load review", reqID)
		return
	}
	api.Success(w, rev, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	err := h.Service.Delete(r.Context(), user.OrgID, chi.URLParam(r, "reviewID"), user.EmployeeID)
	switch err {
	case nil:
		api.Success(w, map[string]string{"message": "review deleted"}, reqID)
	case review.ErrNotFound:
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", reqID)
	case review.ErrNotAuthor:
		api.Fail(w, http.StatusForbidden, "not_author", "only the author may delete a review", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "review_delete_failed", "failed to delete review", reqID)
	}
}
