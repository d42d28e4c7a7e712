// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/service"
)

// Authentication messages that are not produced by the service layer.
const (
	msgLogoutSuccess = "Logout realizado com sucesso"
	msgAccountLocked = "Conta bloqueada temporariamente por excesso de tentativas. Tente novamente em %s."
	msgInvalidBody   = "Dados inválidos"
)

// AuthHandler handles login, logout, registration and password changes.
type AuthHandler struct {
	auth            *service.AuthService
	audit           *service.AuditService
	pages           *Pages
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(auth *service.AuthService, audit *service.AuditService, pages *Pages, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		auth:            auth,
		audit:           audit,
		pages:           pages,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// LoginData is the data of the login page.
type LoginData struct {
	Error   string
	Success string
	Email   string
}

// Root sends logged-in administrators to the dashboard and everyone else to
// the login page.
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionAdmin(r.Context(), h.sessionManager); ok {
		http.Redirect(w, r, redirectDashboard, http.StatusFound)
		return
	}
	http.Redirect(w, r, redirectLogin, http.StatusFound)
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionAdmin(r.Context(), h.sessionManager); ok {
		http.Redirect(w, r, redirectDashboard, http.StatusFound)
		return
	}

	var data LoginData
	if r.URL.Query().Get("message") == logoutSuccessParam {
		data.Success = msgLogoutSuccess
	}
	h.renderLogin(w, r, http.StatusOK, data)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	h.pages.renderPage(w, r, status, tmplLogin, titleLogin, "", data)
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Error: msgInvalidBody})
		return
	}

	email := model.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	info := middleware.RequestInfo(r)
	ctx := r.Context()

	fail := func(status int, message string) {
		h.renderLogin(w, r, status, LoginData{Error: message, Email: email})
	}

	if h.loginProtection != nil && email != "" {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.audit.Auth(ctx, model.AuditLevelWarning, "Login attempt on locked account", "", info,
				map[string]any{"email": email})
			fail(http.StatusTooManyRequests, fmt.Sprintf(msgAccountLocked, formatDuration(remaining)))
			return
		}
	}

	admin, err := h.auth.Login(ctx, email, password)
	if err != nil {
		if ve, ok := service.IsValidation(err); ok {
			fail(http.StatusBadRequest, ve.Message)
			return
		}

		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			slog.Debug("invalid login attempt", "email", email)
			h.audit.Auth(ctx, model.AuditLevelWarning, "Login failed: invalid credentials", "", info,
				map[string]any{"email": email})
			if h.loginProtection != nil {
				if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
					h.audit.Auth(ctx, model.AuditLevelWarning, "Account locked due to failed attempts", "", info,
						map[string]any{"email": email, "duration": lockDuration.String()})
					fail(http.StatusTooManyRequests, fmt.Sprintf(msgAccountLocked, formatDuration(lockDuration)))
					return
				}
			}
			fail(http.StatusUnauthorized, service.MsgInvalidCredentials)
		case errors.Is(err, service.ErrAccountDisabled):
			h.audit.Auth(ctx, model.AuditLevelWarning, "Login failed: account disabled", "", info,
				map[string]any{"email": email})
			fail(http.StatusForbidden, service.MsgAccountDisabled)
		default:
			slog.ErrorContext(r.Context(), "login error", "error", err)
			fail(http.StatusInternalServerError, service.MsgInternal)
		}
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		slog.ErrorContext(r.Context(), "session renewal error", "error", err)
		fail(http.StatusInternalServerError, service.MsgInternal)
		return
	}
	middleware.PutAdmin(ctx, h.sessionManager, admin)

	slog.Info("admin logged in", "admin_id", admin.ID, "email", admin.Email)
	h.audit.Auth(ctx, model.AuditLevelInfo, "Admin logged in", admin.ID, info, map[string]any{"email": admin.Email})

	http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
}

// LoginRateLimited answers login POSTs rejected by the per-IP rate limit.
func (h *AuthHandler) LoginRateLimited(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusTooManyRequests, LoginData{Error: middleware.MsgTooManyRequests})
}

// Logout destroys the session. Destroy errors are logged only.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.SessionAdmin(r.Context(), h.sessionManager)
	if ok {
		h.audit.Auth(r.Context(), model.AuditLevelInfo, "Admin logged out", admin.ID, middleware.RequestInfo(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "session destroy error", "error", err)
	}

	slog.Info("admin logged out", "admin_id", admin.ID)
	http.Redirect(w, r, redirectLogoutSuccess, http.StatusSeeOther)
}

// RegisterData is the data of the administrator registration page.
type RegisterData struct {
	Error   string
	Success string
	Name    string
	Email   string
	Role    string
	Roles   []string
}

func newRegisterData() RegisterData {
	return RegisterData{
		Role:  model.RoleAdmin,
		Roles: []string{model.RoleAdmin, model.RoleSuperAdmin},
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if !middleware.GetAdmin(r).IsSuperAdmin() {
		h.pages.Forbidden(w, r)
		return
	}
	h.pages.renderPage(w, r, http.StatusOK, tmplRegister, titleRegister, pageRegister, newRegisterData())
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetAdmin(r)
	data := newRegisterData()

	if err := r.ParseForm(); err != nil {
		data.Error = msgInvalidBody
		h.pages.renderPage(w, r, http.StatusBadRequest, tmplRegister, titleRegister, pageRegister, data)
		return
	}

	in := service.RegisterInput{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Role:            r.PostFormValue("role"),
	}

	admin, err := h.auth.Register(r.Context(), caller, in)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.pages.Forbidden(w, r)
			return
		}

		data.Name, data.Email = in.Name, in.Email
		if in.Role != "" {
			data.Role = in.Role
		}
		status := http.StatusBadRequest
		if ve, ok := service.IsValidation(err); ok {
			data.Error = ve.Message
		} else {
			slog.ErrorContext(r.Context(), "registration error", "error", err)
			data.Error = service.MsgInternal
			status = http.StatusInternalServerError
		}
		h.pages.renderPage(w, r, status, tmplRegister, titleRegister, pageRegister, data)
		return
	}

	slog.Info("admin registered", "admin_id", admin.ID, "email", admin.Email, "created_by", caller.ID)
	h.audit.Auth(r.Context(), model.AuditLevelInfo, "Admin registered", caller.ID, middleware.RequestInfo(r),
		map[string]any{"new_admin_id": admin.ID, "email": admin.Email, "role": admin.Role})

	data.Success = service.MsgAdminCreated
	h.pages.renderPage(w, r, http.StatusOK, tmplRegister, titleRegister, pageRegister, data)
}

// ChangePassword handles POST /auth/change-password. The body is JSON or a
// form; the answer is always {success, message}.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetAdmin(r)
	if caller == nil {
		writeJSONError(w, http.StatusUnauthorized, service.MsgLoginRequired, nil, false)
		return
	}

	in, err := decodeChangePassword(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, msgInvalidBody, err, h.pages.ShowDetail())
		return
	}

	if err := h.auth.ChangePassword(r.Context(), *caller, in); err != nil {
		if ve, ok := service.IsValidation(err); ok {
			writeJSONError(w, http.StatusBadRequest, ve.Message, nil, false)
			return
		}
		slog.ErrorContext(r.Context(), "change password error", "error", err, "admin_id", caller.ID)
		writeJSONError(w, http.StatusInternalServerError, service.MsgInternal, err, h.pages.ShowDetail())
		return
	}

	h.audit.Auth(r.Context(), model.AuditLevelInfo, "Password changed", caller.ID, middleware.RequestInfo(r), nil)
	writeJSONSuccess(w, apiResponse{Message: service.MsgPasswordChanged})
}

func decodeChangePassword(w http.ResponseWriter, r *http.Request) (service.ChangePasswordInput, error) {
	var in service.ChangePasswordInput
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get(HeaderContentType)); mediaType == "application/json" {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return in, err
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.CurrentPassword = r.PostFormValue("currentPassword")
	in.NewPassword = r.PostFormValue("newPassword")
	in.ConfirmNewPassword = r.PostFormValue("confirmNewPassword")
	return in, nil
}

// formatDuration formats a duration in Portuguese.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d segundos", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minuto"
		}
		return fmt.Sprintf("%d minutos", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hora"
	}
	return fmt.Sprintf("%d horas", hours)
}
