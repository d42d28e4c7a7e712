// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/turismo-admin/internal/logging"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/service"
	"github.com/olegiv/turismo-admin/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyAdmin ContextKey = "admin"
)

// Session keys for the logged-in administrator.
const (
	SessionKeyAdminID    = "admin_id"
	SessionKeyAdminEmail = "admin_email"
	SessionKeyAdminName  = "admin_name"
	SessionKeyAdminRole  = "admin_role"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/auth/login"

// PutAdmin stores the administrator identity in the session.
func PutAdmin(ctx context.Context, sm *scs.SessionManager, a model.SessionAdmin) {
	sm.Put(ctx, SessionKeyAdminID, a.ID)
	sm.Put(ctx, SessionKeyAdminEmail, a.Email)
	sm.Put(ctx, SessionKeyAdminName, a.Name)
	sm.Put(ctx, SessionKeyAdminRole, a.Role)
}

// SessionAdmin reads the administrator identity from the session.
func SessionAdmin(ctx context.Context, sm *scs.SessionManager) (model.SessionAdmin, bool) {
	id := sm.GetString(ctx, SessionKeyAdminID)
	if id == "" {
		return model.SessionAdmin{}, false
	}
	return model.SessionAdmin{
		ID:    id,
		Email: sm.GetString(ctx, SessionKeyAdminEmail),
		Name:  sm.GetString(ctx, SessionKeyAdminName),
		Role:  sm.GetString(ctx, SessionKeyAdminRole),
	}, true
}

// Auth creates middleware that requires an administrator session.
// Requests without one are redirected to the login page.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetString(r.Context(), SessionKeyAdminID) == "" {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadAdmin places the session administrator in the request context.
// Stored accounts are re-read so that a deactivated or removed admin loses
// access immediately; the bootstrap identity is taken from the session as is.
func LoadAdmin(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := SessionAdmin(r.Context(), sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if !admin.IsBootstrap() {
				stored, err := queries.GetAdminByID(r.Context(), admin.ID)
				switch {
				case errors.Is(err, sql.ErrNoRows) || (err == nil && !stored.IsActive):
					slog.WarnContext(r.Context(), "session admin no longer active", "admin_id", admin.ID)
					_ = sm.Destroy(r.Context())
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				case err != nil:
					slog.ErrorContext(r.Context(), "failed to load session admin", "error", err, "admin_id", admin.ID)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				admin = stored.SessionIdentity()
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdmin, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin retrieves the current administrator from the request context.
// Returns nil if no administrator is in context.
func GetAdmin(r *http.Request) *model.SessionAdmin {
	admin, ok := r.Context().Value(ContextKeyAdmin).(model.SessionAdmin)
	if !ok {
		return nil
	}
	return &admin
}

// GetAdminID returns the current administrator's id, or "" if not found.
func GetAdminID(r *http.Request) string {
	if admin := GetAdmin(r); admin != nil {
		return admin.ID
	}
	return ""
}

// RequestPath creates middleware that stores the request path in the context
// so warnings logged while serving it are stored with the path.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithRequestPath(r.Context(), r.URL.Path)))
	})
}

// RequireSuperAdmin creates middleware that lets only super administrators
// through. Denied requests are logged to the audit trail and answered by deny.
func RequireSuperAdmin(audit *service.AuditService, deny http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := GetAdmin(r)
			if admin == nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if !admin.IsSuperAdmin() {
				slog.WarnContext(r.Context(), "access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"admin_id", admin.ID,
					"admin_role", admin.Role,
				)
				if audit != nil {
					audit.Auth(r.Context(), model.AuditLevelWarning, "Access denied: super admin required", admin.ID,
						RequestInfo(r), map[string]any{"method": r.Method, "path": r.URL.Path})
				}
				deny.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestInfo extracts the audited client details from a request.
func RequestInfo(r *http.Request) service.RequestInfo {
	return service.RequestInfo{IP: ClientIP(r), UserAgent: r.UserAgent()}
}
