package authhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reviewhub/internal/domain/auth"
	"reviewhub/internal/domain/notifications"
	"reviewhub/internal/transport/http/api"
	"reviewhub/internal/transport/http/middleware"
	"reviewhub/internal/transport/http/shared"
)

const tokenTTL = 24 * time.Hour

type Handler struct {
	Store           *auth.Store
	Mailer          notifications.Mailer
	JWTSecret       string
	AppBaseURL      string
	EmailFrom       string
	InviteTTL       time.Duration
	AllowSelfSignup bool
}

func NewHandler(store *auth.Store, mailer notifications.Mailer, jwtSecret, appBaseURL, emailFrom string, inviteTTL time.Duration, allowSelfSignup bool) *Handler {
	return &Handler{
		Store:           store,
		Mailer:          mailer,
		JWTSecret:       jwtSecret,
		AppBaseURL:      appBaseURL,
		EmailFrom:       emailFrom,
		InviteTTL:       inviteTTL,
		AllowSelfSignup: allowSelfSignup,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/accept-invite", h.handleAcceptInvite)
		r.Post("/request-password-reset", h.handleRequestPasswordReset)
		r.Post("/reset-password", h.handleResetPassword)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/invites", h.handleCreateInvite)
	})
}

// handleSignup bootstraps a new organization with its first admin account.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if !h.AllowSelfSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self signup is disabled", reqID)
		return
	}

	var payload struct {
		OrganizationName string `json:"organizationName"`
		Email            string `json:"email"`
		Password         string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("organizationName", payload.OrganizationName, "organization name is required")
	v.Required("email", payload.Email, "email is required")
	v.Email("email", payload.Email)
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create account", reqID)
		return
	}

	orgID, err := h.Store.CreateOrganization(r.Context(), strings.TrimSpace(payload.OrganizationName))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create organization", reqID)
		return
	}

	userID, err := h.Store.CreateUser(r.Context(), orgID, normalizeEmail(payload.Email), hash, auth.RoleAdmin, nil)
	if err == auth.ErrEmailTaken {
		api.Fail(w, http.StatusConflict, "email_taken", "an account with this email already exists", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create account", reqID)
		return
	}

	token, err := h.issueToken(userID, orgID, "", auth.RoleAdmin)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to issue token", reqID)
		return
	}
	api.Created(w, map[string]any{
		"token":          token,
		"organizationId": orgID,
		"userId":         userID,
		"role":           auth.RoleAdmin,
	}, reqID)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), normalizeEmail(payload.Email))
	if err == auth.ErrUserNotFound {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", reqID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}

	token, err := h.issueToken(user.ID, user.OrgID, user.EmployeeID, user.Role)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to issue token", reqID)
		return
	}
	api.Success(w, map[string]any{
		"token":          token,
		"organizationId": user.OrgID,
		"userId":         user.ID,
		"employeeId":     user.EmployeeID,
		"role":           user.Role,
	}, reqID)
}

// handleLogout exists for the client's sake; tokens are stateless, so the
// server has nothing to invalidate.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]string{"message": "logged out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, map[string]any{
		"userId":         user.UserID,
		"organizationId": user.OrgID,
		"employeeId":     user.EmployeeID,
		"role":           user.Role,
	}, middleware.GetRequestID(r.Context()))
}

// handleCreateInvite lets an admin invite an employee to claim an account.
// The raw token leaves the server only inside the invite email (or the
// response in development setups without a mailer).
func (h *Handler) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		EmployeeID string `json:"employeeId"`
		Email      string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("email", payload.Email, "email is required")
	v.Email("email", payload.Email)
	if v.Reject(w, reqID) {
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(h.InviteTTL)
	err := h.Store.CreateInvite(r.Context(), user.OrgID, payload.EmployeeID, normalizeEmail(payload.Email), hashToken(token), expires)
	if err == auth.ErrEmployeeNotFound {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invite_failed", "failed to create invite", reqID)
		return
	}

	link := fmt.Sprintf("%s/accept-invite?token=%s", strings.TrimRight(h.AppBaseURL, "/"), token)
	if h.Mailer != nil {
		body := fmt.Sprintf("You have been invited to join your organization's review workspace.\n\nAccept the invite: %s\n\nThe link expires at %s.", link, expires.UTC().Format(time.RFC3339))
		if err := h.Mailer.Send(r.Context(), h.EmailFrom, normalizeEmail(payload.Email), "You're invited", body); err != nil {
			slog.Warn("invite email send failed", "err", err)
		}
	}

	api.Created(w, map[string]any{
		"inviteToken": token,
		"expiresAt":   expires.UTC(),
	}, reqID)
}

func (h *Handler) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("token", payload.Token, "token is required")
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	inv, err := h.Store.InviteByTokenHash(r.Context(), hashToken(payload.Token))
	if err == auth.ErrInviteInvalid {
		api.Fail(w, http.StatusBadRequest, "invite_invalid", "invite token is invalid", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invite_failed", "failed to accept invite", reqID)
		return
	}
	if inv.Used || time.Now().After(inv.ExpiresAt) {
		api.Fail(w, http.StatusBadRequest, "invite_invalid", "invite token is expired or already used", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invite_failed", "failed to accept invite", reqID)
		return
	}

	userID, err := h.Store.CreateUser(r.Context(), inv.OrgID, inv.Email, hash, auth.RoleEmployee, inv.EmployeeID)
	if err == auth.ErrEmailTaken {
		api.Fail(w, http.StatusConflict, "email_taken", "an account with this email already exists", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invite_failed", "failed to accept invite", reqID)
		return
	}
	if err := h.Store.LinkEmployee(r.Context(), inv.OrgID, userID, inv.EmployeeID); err != nil {
		slog.Warn("invite employee link failed", "err", err, "employeeId", inv.EmployeeID)
	}
	if err := h.Store.MarkInviteUsed(r.Context(), inv.ID); err != nil {
		slog.Warn("invite mark used failed", "err", err, "inviteId", inv.ID)
	}

	token, err := h.issueToken(userID, inv.OrgID, inv.EmployeeID, auth.RoleEmployee)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invite_failed", "failed to issue token", reqID)
		return
	}
	api.Success(w, map[string]any{
		"token":          token,
		"organizationId": inv.OrgID,
		"userId":         userID,
		"employeeId":     inv.EmployeeID,
		"role":           auth.RoleEmployee,
	}, reqID)
}

// handleRequestPasswordReset always answers 200 so the endpoint cannot be
// used to enumerate which emails have accounts.
func (h *Handler) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), normalizeEmail(payload.Email))
	if err == nil {
		token := uuid.NewString()
		if err := h.Store.CreatePasswordReset(r.Context(), user.ID, hashToken(token), time.Now().Add(time.Hour)); err != nil {
			slog.Warn("password reset create failed", "err", err)
		} else if h.Mailer != nil {
			link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(h.AppBaseURL, "/"), token)
			body := fmt.Sprintf("A password reset was requested for your account.\n\nReset your password: %s\n\nIf you did not request this, ignore this message.", link)
			if err := h.Mailer.Send(r.Context(), h.EmailFrom, user.Email, "Password reset", body); err != nil {
				slog.Warn("password reset email send failed", "err", err)
			}
		}
	} else if err != auth.ErrUserNotFound {
		slog.Warn("password reset lookup failed", "err", err)
	}

	api.Success(w, map[string]any{"message": "if the account exists, a reset email has been sent"}, reqID)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("token", payload.Token, "token is required")
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	tokenHash := hashToken(payload.Token)
	userID, err := h.Store.PasswordResetUserID(r.Context(), tokenHash)
	if err == auth.ErrResetInvalid {
		api.Fail(w, http.StatusBadRequest, "reset_invalid", "reset token is invalid or expired", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to reset password", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to reset password", reqID)
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to reset password", reqID)
		return
	}
	if err := h.Store.MarkPasswordResetUsed(r.Context(), tokenHash); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}

	api.Success(w, map[string]any{"message": "password updated"}, reqID)
}

func (h *Handler) issueToken(userID, orgID, employeeID, role string) (string, error) {
	return auth.GenerateToken(h.JWTSecret, auth.Claims{
		UserID:     userID,
		OrgID:      orgID,
		EmployeeID: employeeID,
		Role:       role,
	}, tokenTTL)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
