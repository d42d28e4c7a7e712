// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/turismo-admin/internal/testutil"
	"github.com/olegiv/turismo-admin/internal/version"
)

func TestHealth(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), version.Info{Version: "1.2.3"})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assertStatus(t, w.Code, http.StatusOK)

	var got HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Status != "OK" || got.Service != ServiceName || got.Version != "1.2.3" {
		t.Errorf("unexpected status %+v", got)
	}
	if got.Timestamp.IsZero() || got.Uptime == "" {
		t.Errorf("timestamp and uptime must be set: %+v", got)
	}
}

func TestLivenessAndReadiness(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, version.Info{})

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assertStatus(t, w.Code, http.StatusOK)

	w = httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assertStatus(t, w.Code, http.StatusOK)

	_ = db.Close()
	w = httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assertStatus(t, w.Code, http.StatusServiceUnavailable)

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["status"] != "not_ready" {
		t.Errorf("status = %q, want not_ready", body["status"])
	}
}
