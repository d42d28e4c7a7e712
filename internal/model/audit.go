// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Audit levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryContent = "content"
	AuditCategoryMedia   = "media"
	AuditCategorySystem  = "system"
)

// AuditEntry is a row of the audit log.
type AuditEntry struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	AdminID   sql.NullString
	IPAddress string
	UserAgent string
	Metadata  string // JSON object
	CreatedAt time.Time
}
