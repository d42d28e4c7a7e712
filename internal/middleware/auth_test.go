// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/turismo-admin/internal/logging"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/service"
	"github.com/olegiv/turismo-admin/internal/store"
	"github.com/olegiv/turismo-admin/internal/testutil"
)

// sessionServer serves /login-as, which stores admin in the session, and
// /protected, which is wrapped by chain.
func sessionServer(t *testing.T, sm *scs.SessionManager, admin model.SessionAdmin, chain func(http.Handler) http.Handler) (*httptest.Server, *http.Client) {
	t.Helper()

	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a := GetAdmin(r); a != nil {
			_, _ = io.WriteString(w, a.ID+"|"+a.Name+"|"+a.Role)
			return
		}
		_, _ = io.WriteString(w, "anonymous")
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/login-as", func(w http.ResponseWriter, r *http.Request) {
		PutAdmin(r.Context(), sm, admin)
	})
	mux.Handle("/protected", chain(protected))

	srv := httptest.NewServer(sm.LoadAndSave(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func createAdmin(t *testing.T, db *sql.DB, id, role string) {
	t.Helper()
	_, err := store.New(db).CreateAdmin(context.Background(), store.CreateAdminParams{
		ID: id, Email: id + "@example.com", PasswordHash: "x", Name: "Stored " + id,
		Role: role, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
}

func TestAuth(t *testing.T) {
	sm := scs.New()
	admin := model.SessionAdmin{ID: model.BootstrapAdminID, Role: model.RoleSuperAdmin}
	srv, client := sessionServer(t, sm, admin, Auth(sm))

	resp, _ := get(t, client, srv.URL+"/protected")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != LoginPath {
		t.Errorf("Location = %q, want %q", loc, LoginPath)
	}

	get(t, client, srv.URL+"/login-as")

	resp, _ = get(t, client, srv.URL+"/protected")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after login = %d, want 200", resp.StatusCode)
	}
}

func TestLoadAdmin_Bootstrap(t *testing.T) {
	db := testutil.TestDB(t)
	sm := scs.New()
	admin := model.SessionAdmin{ID: model.BootstrapAdminID, Name: "Administrador", Role: model.RoleSuperAdmin}
	srv, client := sessionServer(t, sm, admin, LoadAdmin(sm, db))

	_, body := get(t, client, srv.URL+"/protected")
	if body != "anonymous" {
		t.Errorf("body before login = %q, want anonymous", body)
	}

	get(t, client, srv.URL+"/login-as")
	_, body = get(t, client, srv.URL+"/protected")
	if want := "default_admin|Administrador|super_admin"; body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestLoadAdmin_StoredAdminIsReloaded(t *testing.T) {
	db := testutil.TestDB(t)
	createAdmin(t, db, "a1", model.RoleAdmin)

	sm := scs.New()
	// The session carries a stale name and role; the stored record wins.
	stale := model.SessionAdmin{ID: "a1", Name: "Old", Role: model.RoleSuperAdmin}
	srv, client := sessionServer(t, sm, stale, LoadAdmin(sm, db))

	get(t, client, srv.URL+"/login-as")
	_, body := get(t, client, srv.URL+"/protected")
	if want := "a1|Stored a1|admin"; body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestLoadAdmin_DeactivatedAdminIsLoggedOut(t *testing.T) {
	db := testutil.TestDB(t)
	createAdmin(t, db, "a2", model.RoleAdmin)

	sm := scs.New()
	srv, client := sessionServer(t, sm, model.SessionAdmin{ID: "a2"}, LoadAdmin(sm, db))
	get(t, client, srv.URL+"/login-as")

	if err := store.New(db).SetAdminActive(context.Background(), "a2", false, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	resp, _ := get(t, client, srv.URL+"/protected")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}

	// The session was destroyed, so the next request is anonymous.
	_, body := get(t, client, srv.URL+"/protected")
	if body != "anonymous" {
		t.Errorf("body = %q, want anonymous", body)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	db := testutil.TestDB(t)
	audit := service.NewAuditService(db, testutil.TestLoggerSilent())
	deny := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Acesso Negado", http.StatusForbidden)
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireSuperAdmin(audit, deny)(ok)

	tests := []struct {
		name   string
		admin  *model.SessionAdmin
		status int
	}{
		{"no admin", nil, http.StatusSeeOther},
		{"admin", &model.SessionAdmin{ID: "x", Role: model.RoleAdmin}, http.StatusForbidden},
		{"super admin", &model.SessionAdmin{ID: "y", Role: model.RoleSuperAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/register", nil)
			if tt.admin != nil {
				req = req.WithContext(context.WithValue(req.Context(), ContextKeyAdmin, *tt.admin))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	entries, err := audit.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].AdminID.String != "x" {
		t.Errorf("audit entries = %+v, want one denial for x", entries)
	}
}

func TestGetAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetAdmin(req) != nil {
		t.Error("GetAdmin() without context value should be nil")
	}
	if GetAdminID(req) != "" {
		t.Error("GetAdminID() without context value should be empty")
	}

	req = req.WithContext(context.WithValue(req.Context(), ContextKeyAdmin, model.SessionAdmin{ID: "z"}))
	if got := GetAdminID(req); got != "z" {
		t.Errorf("GetAdminID() = %q, want z", got)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5123"
	if got := ClientIP(req); got != "198.51.100.4" {
		t.Errorf("ClientIP() = %q", got)
	}
	req.RemoteAddr = "198.51.100.5"
	if got := ClientIP(req); got != "198.51.100.5" {
		t.Errorf("ClientIP() without port = %q", got)
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logging.RequestPath(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/events?page=2", nil))
	if got != "/dashboard/events" {
		t.Errorf("request path = %q, want /dashboard/events", got)
	}
}
