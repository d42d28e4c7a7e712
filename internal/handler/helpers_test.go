// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/render"
	"github.com/olegiv/turismo-admin/internal/service"
	"github.com/olegiv/turismo-admin/internal/storage"
	"github.com/olegiv/turismo-admin/internal/testutil"
	"github.com/olegiv/turismo-admin/web"
)

const (
	testBucket        = "turismo-curitiba"
	testAdminEmail    = "admin@turismocuritiba.com"
	testAdminPassword = "admin123"
)

// testEnv wires the services and pages over a fresh database and an
// in-memory bucket.
type testEnv struct {
	db      *sql.DB
	bucket  *storage.MemoryBucket
	sm      *scs.SessionManager
	pages   *Pages
	auth    *service.AuthService
	audit   *service.AuditService
	content *service.ContentService
	stats   *service.StatisticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.TestDB(t)
	logger := testutil.TestLoggerSilent()
	sm := scs.New()

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	bucket := storage.NewMemoryBucket(testBucket, storage.GCSBaseURL)
	media := service.NewMediaService(db, bucket, logger)

	return &testEnv{
		db:     db,
		bucket: bucket,
		sm:     sm,
		pages:  NewPages(renderer, false),
		auth: service.NewAuthService(db, service.Bootstrap{
			Email:    testAdminEmail,
			Password: testAdminPassword,
			Name:     "Administrador",
		}, logger),
		audit:   service.NewAuditService(db, logger),
		content: service.NewContentService(db, media, logger),
		stats:   service.NewStatisticsService(db),
	}
}

// serve runs h inside the session middleware and records the answer.
func (e *testEnv) serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.sm.LoadAndSave(h).ServeHTTP(w, req)
	return w
}

func (e *testEnv) apiHandler() *APIHandler {
	return NewAPIHandler(e.content, e.stats, e.audit, true)
}

func (e *testEnv) createPoint(t *testing.T, name, category string) model.TouristPoint {
	t.Helper()
	tp, err := e.content.CreateTouristPoint(context.Background(), service.TouristPointInput{
		Name:        model.Localized{PT: name},
		Description: model.Localized{PT: "Descrição de " + name},
		Address:     model.Localized{PT: "Rua " + name},
		Latitude:    "-25.4284",
		Longitude:   "-49.2733",
		Category:    category,
	}, nil, model.BootstrapAdminID)
	if err != nil {
		t.Fatalf("CreateTouristPoint: %v", err)
	}
	return tp
}

func (e *testEnv) createEvent(t *testing.T, title string) model.Event {
	t.Helper()
	ev, err := e.content.CreateEvent(context.Background(), service.EventInput{
		Title:       model.Localized{PT: title},
		Description: model.Localized{PT: "Descrição de " + title},
		StartDate:   "2030-09-01T18:00",
		EndDate:     "2030-09-01T23:00",
		Category:    "musica",
	}, nil, model.BootstrapAdminID)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return ev
}

func superAdmin() model.SessionAdmin {
	return model.SessionAdmin{
		ID:    model.BootstrapAdminID,
		Email: testAdminEmail,
		Name:  "Administrador",
		Role:  model.RoleSuperAdmin,
	}
}

func plainAdmin() model.SessionAdmin {
	return model.SessionAdmin{ID: "01HADMIN", Email: "ana@example.com", Name: "Ana", Role: model.RoleAdmin}
}

// withAdmin places admin in the request context the way LoadAdmin does.
func withAdmin(req *http.Request, admin model.SessionAdmin) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyAdmin, admin)
	return req.WithContext(ctx)
}

// withURLParams adds chi URL parameters to a request.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}

type testResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      string            `json:"error"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v (body %q)", err, w.Body.String())
	}
	return resp
}
