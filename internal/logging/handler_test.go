// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "logging-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func entries(t *testing.T, db *sql.DB) []model.AuditEntry {
	t.Helper()
	list, err := store.New(db).ListAuditEntries(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	return list
}

func TestAuditLogHandler_MirrorsWarnAndError(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandler(discardHandler{}, db))

	logger.Info("dashboard rendered")
	logger.Warn("login failed", "email", "ana@example.com")
	logger.Error("object delete failed", "key", "events/x.png", AttrAdminID, "01ABC")

	list := entries(t, db)
	if len(list) != 2 {
		t.Fatalf("audit entries = %d, want 2 (info must not be mirrored)", len(list))
	}

	byMsg := map[string]model.AuditEntry{}
	for _, e := range list {
		byMsg[e.Message] = e
	}

	warn := byMsg["login failed"]
	if warn.Level != model.AuditLevelWarning || warn.Category != model.AuditCategoryAuth {
		t.Errorf("warn entry = %+v", warn)
	}
	if !strings.Contains(warn.Metadata, `"email":"ana@example.com"`) {
		t.Errorf("metadata = %s", warn.Metadata)
	}

	errEntry := byMsg["object delete failed"]
	if errEntry.Level != model.AuditLevelError || errEntry.Category != model.AuditCategoryMedia {
		t.Errorf("error entry = %+v", errEntry)
	}
	if errEntry.AdminID.String != "01ABC" {
		t.Errorf("AdminID = %v, want 01ABC", errEntry.AdminID)
	}
	if strings.Contains(errEntry.Metadata, AttrAdminID) {
		t.Errorf("admin id should not be duplicated in metadata: %s", errEntry.Metadata)
	}
}

func TestAuditLogHandler_ExplicitCategory(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandler(discardHandler{}, db))

	logger.Warn("something odd", AttrCategory, model.AuditCategoryContent)

	list := entries(t, db)
	if len(list) != 1 || list[0].Category != model.AuditCategoryContent {
		t.Fatalf("entries = %+v", list)
	}
	if list[0].Metadata != "{}" {
		t.Errorf("metadata = %s, want {}", list[0].Metadata)
	}
}

func TestAuditLogHandler_CustomLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandlerWithLevel(discardHandler{}, db, slog.LevelError))

	logger.Warn("not mirrored")
	logger.With("component", "test").WithGroup("g").Error("mirrored")

	list := entries(t, db)
	if len(list) != 1 || list[0].Message != "mirrored" {
		t.Fatalf("entries = %+v", list)
	}
}

func TestInferCategory(t *testing.T) {
	tests := map[string]string{
		"Login succeeded":       model.AuditCategoryAuth,
		"password changed":      model.AuditCategoryAuth,
		"upload rolled back":    model.AuditCategoryMedia,
		"tourist point updated": model.AuditCategoryContent,
		"server started":        model.AuditCategorySystem,
	}
	for msg, want := range tests {
		if got := inferCategory(msg); got != want {
			t.Errorf("inferCategory(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestAuditLogHandler_RequestPath(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandler(discardHandler{}, db))

	ctx := WithRequestPath(context.Background(), "/api/tourist-points")
	if got := RequestPath(ctx); got != "/api/tourist-points" {
		t.Fatalf("RequestPath() = %q", got)
	}
	if got := RequestPath(context.Background()); got != "" {
		t.Errorf("RequestPath() without value = %q, want empty", got)
	}

	logger.ErrorContext(ctx, "tourist point update failed")
	logger.WarnContext(ctx, "explicit path wins", AttrPath, "/auth/login")

	byMsg := map[string]model.AuditEntry{}
	for _, e := range entries(t, db) {
		byMsg[e.Message] = e
	}
	if m := byMsg["tourist point update failed"].Metadata; m != `{"path":"/api/tourist-points"}` {
		t.Errorf("metadata = %s", m)
	}
	if m := byMsg["explicit path wins"].Metadata; m != `{"path":"/auth/login"}` {
		t.Errorf("metadata = %s", m)
	}
}
