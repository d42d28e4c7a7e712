// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the admin panel's business logic: authentication,
// content management, image uploads, statistics and the audit trail.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"maps"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
)

// RequestInfo identifies the client behind an audited action.
type RequestInfo struct {
	IP        string
	UserAgent string
}

// AuditService records security-relevant actions in the audit log.
type AuditService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
	country func(ip string) string
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
}

// SetCountryResolver makes Record tag entries with the client's country.
func (s *AuditService) SetCountryResolver(fn func(ip string) string) {
	s.country = fn
}

// Record writes an audit entry. Failures are logged and returned.
func (s *AuditService) Record(ctx context.Context, level, category, message, adminID string, info RequestInfo, metadata map[string]any) error {
	if s.country != nil && info.IP != "" {
		if c := s.country(info.IP); c != "" {
			metadata = maps.Clone(metadata)
			if metadata == nil {
				metadata = map[string]any{}
			}
			metadata["country"] = c
		}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	err := s.queries.CreateAuditEntry(ctx, store.CreateAuditEntryParams{
		Level:     level,
		Category:  category,
		Message:   message,
		AdminID:   sql.NullString{String: adminID, Valid: adminID != ""},
		IPAddress: info.IP,
		UserAgent: SummarizeUserAgent(info.UserAgent),
		Metadata:  metadataJSON,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to record audit entry", "error", err, "message", message)
		return err
	}
	return nil
}

// Auth records an authentication event.
func (s *AuditService) Auth(ctx context.Context, level, message, adminID string, info RequestInfo, metadata map[string]any) {
	_ = s.Record(ctx, level, model.AuditCategoryAuth, message, adminID, info, metadata)
}

// Content records a content change.
func (s *AuditService) Content(ctx context.Context, message, adminID string, info RequestInfo, metadata map[string]any) {
	_ = s.Record(ctx, model.AuditLevelInfo, model.AuditCategoryContent, message, adminID, info, metadata)
}

// Media records an object storage change.
func (s *AuditService) Media(ctx context.Context, message, adminID string, info RequestInfo, metadata map[string]any) {
	_ = s.Record(ctx, model.AuditLevelInfo, model.AuditCategoryMedia, message, adminID, info, metadata)
}

// Recent returns the newest audit entries.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	return s.queries.ListAuditEntries(ctx, limit)
}

// Purge removes entries older than the given age.
func (s *AuditService) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteAuditEntriesBefore(ctx, s.now().UTC().Add(-olderThan))
}

// SummarizeUserAgent reduces a User-Agent header to "browser version / os / device".
func SummarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.Parse(raw)

	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	} else if ua.Version != "" {
		browser += " " + ua.Version
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}

	var device string
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	default:
		device = "desktop"
	}

	return browser + " / " + os + " / " + device
}
