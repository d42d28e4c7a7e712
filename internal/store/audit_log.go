// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
)

// CreateAuditEntryParams holds the fields of a new audit log row.
type CreateAuditEntryParams struct {
	Level     string
	Category  string
	Message   string
	AdminID   sql.NullString
	IPAddress string
	UserAgent string
	Metadata  string
	CreatedAt time.Time
}

// CreateAuditEntry appends a row to the audit log.
func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) error {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO audit_log (level, category, message, admin_id, ip_address, user_agent, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.AdminID, arg.IPAddress, arg.UserAgent, arg.Metadata, arg.CreatedAt)
	return err
}

// ListAuditEntries returns the newest audit entries.
func (q *Queries) ListAuditEntries(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, admin_id, ip_address, user_agent, metadata, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.AdminID,
			&e.IPAddress, &e.UserAgent, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteAuditEntriesBefore removes entries older than the cutoff.
func (q *Queries) DeleteAuditEntriesBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
