// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors WARN and ERROR records
// into the audit log table.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
)

// Attribute keys with special meaning for the audit log.
const (
	AttrCategory = "category"
	AttrAdminID  = "admin_id"
	AttrPath     = "path"
)

type requestPathKey struct{}

// WithRequestPath returns a copy of ctx carrying the request path. Records
// logged with that context are stored with a "path" metadata entry.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathKey{}, path)
}

// RequestPath returns the path stored by WithRequestPath, or "".
func RequestPath(ctx context.Context) string {
	path, _ := ctx.Value(requestPathKey{}).(string)
	return path
}

// AuditLogHandler wraps another handler and also writes records at or above
// its level to the audit log.
type AuditLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewAuditLogHandler wraps inner, mirroring WARN and above into the audit log.
func NewAuditLogHandler(inner slog.Handler, db *sql.DB) *AuditLogHandler {
	return NewAuditLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewAuditLogHandlerWithLevel wraps inner with a custom minimum mirrored level.
func NewAuditLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *AuditLogHandler {
	return &AuditLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *AuditLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.write(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditLogHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *AuditLogHandler) WithGroup(name string) slog.Handler {
	return &AuditLogHandler{inner: h.inner.WithGroup(name), queries: h.queries, level: h.level}
}

// write stores the record. A background context is used so the entry is kept
// even when the request that logged it was canceled.
func (h *AuditLogHandler) write(ctx context.Context, r slog.Record) {
	var category string
	var adminID sql.NullString
	meta := make(map[string]string, r.NumAttrs())

	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case AttrCategory:
			category = a.Value.String()
		case AttrAdminID:
			adminID = sql.NullString{String: a.Value.String(), Valid: a.Value.String() != ""}
		default:
			meta[a.Key] = a.Value.String()
		}
		return true
	})
	if category == "" {
		category = inferCategory(r.Message)
	}
	if _, set := meta[AttrPath]; !set {
		if path := RequestPath(ctx); path != "" {
			meta[AttrPath] = path
		}
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	_ = h.queries.CreateAuditEntry(context.Background(), store.CreateAuditEntryParams{
		Level:     levelName(r.Level),
		Category:  category,
		Message:   r.Message,
		AdminID:   adminID,
		Metadata:  metadata,
		CreatedAt: r.Time.UTC(),
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.AuditLevelError
	case level >= slog.LevelWarn:
		return model.AuditLevelWarning
	default:
		return model.AuditLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "password") || strings.Contains(msg, "auth"):
		return model.AuditCategoryAuth
	case strings.Contains(msg, "upload") || strings.Contains(msg, "image") || strings.Contains(msg, "object"):
		return model.AuditCategoryMedia
	case strings.Contains(msg, "tourist point") || strings.Contains(msg, "event"):
		return model.AuditCategoryContent
	default:
		return model.AuditCategorySystem
	}
}
