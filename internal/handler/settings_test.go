// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/scheduler"
	"github.com/olegiv/turismo-admin/internal/service"
)

type fakeJobs struct {
	jobs      []scheduler.JobInfo
	triggered []string
	err       error
}

func (f *fakeJobs) List() []scheduler.JobInfo { return f.jobs }

func (f *fakeJobs) TriggerNow(name string) error {
	f.triggered = append(f.triggered, name)
	return f.err
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: []scheduler.JobInfo{{
		Name:        "media-reconcile",
		Description: "Remove imagens órfãs",
		Schedule:    "@daily",
		NextRun:     time.Date(2030, 1, 2, 3, 0, 0, 0, time.UTC),
	}}}
}

func TestSettings_SuperAdmin(t *testing.T) {
	e := newTestEnv(t)
	caller := superAdmin()
	if _, err := e.auth.Register(context.Background(), &caller, service.RegisterInput{
		Name: "Diego", Email: "diego@example.com", Password: "senha123", ConfirmPassword: "senha123", Role: model.RoleAdmin,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	h := NewSettingsHandler(e.auth, e.audit, newFakeJobs(), e.pages)

	w := e.serve(h.Settings, withAdmin(httptest.NewRequest(http.MethodGet, "/dashboard/settings", nil), superAdmin()))
	assertStatus(t, w.Code, http.StatusOK)

	body := w.Body.String()
	for _, want := range []string{"diego@example.com", "media-reconcile", "Executar agora", "/auth/change-password"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSettings_PlainAdmin(t *testing.T) {
	e := newTestEnv(t)
	h := NewSettingsHandler(e.auth, e.audit, nil, e.pages)

	w := e.serve(h.Settings, withAdmin(httptest.NewRequest(http.MethodGet, "/dashboard/settings", nil), plainAdmin()))
	assertStatus(t, w.Code, http.StatusOK)

	body := w.Body.String()
	if strings.Contains(body, "Administradores") {
		t.Error("admin management should be hidden")
	}
	if !strings.Contains(body, "Nenhuma tarefa agendada") {
		t.Error("expected the empty job list")
	}
}

func TestSetAdminActive(t *testing.T) {
	e := newTestEnv(t)
	caller := superAdmin()
	admin, err := e.auth.Register(context.Background(), &caller, service.RegisterInput{
		Name: "Elisa", Email: "elisa@example.com", Password: "senha123", ConfirmPassword: "senha123", Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	h := NewSettingsHandler(e.auth, e.audit, nil, e.pages)

	req := formRequest(http.MethodPost, "/dashboard/settings/admins/"+admin.ID+"/active", url.Values{"active": {"false"}})
	req = withURLParams(withAdmin(req, superAdmin()), map[string]string{"id": admin.ID})
	w := e.serve(h.SetAdminActive, req)
	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != redirectSettings {
		t.Errorf("Location = %q, want %q", loc, redirectSettings)
	}

	admins, err := e.auth.Admins(context.Background())
	if err != nil {
		t.Fatalf("Admins: %v", err)
	}
	if len(admins) != 1 || admins[0].IsActive {
		t.Errorf("admin should be inactive: %+v", admins)
	}
}

func TestSetAdminActive_Forbidden(t *testing.T) {
	e := newTestEnv(t)
	h := NewSettingsHandler(e.auth, e.audit, nil, e.pages)

	req := formRequest(http.MethodPost, "/dashboard/settings/admins/x/active", url.Values{"active": {"false"}})
	req = withURLParams(withAdmin(req, plainAdmin()), map[string]string{"id": "x"})
	w := e.serve(h.SetAdminActive, req)
	assertStatus(t, w.Code, http.StatusForbidden)
}

func TestRunJob(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"unknown", fmt.Errorf("%w: nope", scheduler.ErrJobNotFound)},
		{"running", fmt.Errorf("%w: media-reconcile", scheduler.ErrJobRunning)},
		{"failure", errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			jobs := newFakeJobs()
			jobs.err = tt.err
			h := NewSettingsHandler(e.auth, e.audit, jobs, e.pages)

			req := httptest.NewRequest(http.MethodPost, "/dashboard/settings/jobs/media-reconcile/run", nil)
			req = withURLParams(withAdmin(req, superAdmin()), map[string]string{"name": "media-reconcile"})
			w := e.serve(h.RunJob, req)

			assertStatus(t, w.Code, http.StatusSeeOther)
			if len(jobs.triggered) != 1 || jobs.triggered[0] != "media-reconcile" {
				t.Errorf("triggered = %v", jobs.triggered)
			}
		})
	}
}

func TestRunJob_FlashMessage(t *testing.T) {
	e := newTestEnv(t)
	h := NewSettingsHandler(e.auth, e.audit, newFakeJobs(), e.pages)

	// The flash set by RunJob is shown by the next page in the same session.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", func(w http.ResponseWriter, r *http.Request) {
		h.RunJob(w, withURLParams(withAdmin(r, superAdmin()), map[string]string{"name": "media-reconcile"}))
	})
	mux.HandleFunc("GET /settings", func(w http.ResponseWriter, r *http.Request) {
		h.Settings(w, withAdmin(r, superAdmin()))
	})
	srv := e.sm.LoadAndSave(mux)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/run", nil))
	assertStatus(t, w.Code, http.StatusSeeOther)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), msgJobFinished+"media-reconcile") {
		t.Error("expected the job flash message")
	}
}
