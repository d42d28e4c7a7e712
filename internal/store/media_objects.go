// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
)

const mediaColumns = `object_key, url, content_type, size, owner_collection, owner_id, uploaded_by, created_at`

func scanMediaObject(row interface{ Scan(...any) error }) (model.MediaObject, error) {
	var m model.MediaObject
	err := row.Scan(&m.Key, &m.URL, &m.ContentType, &m.Size, &m.OwnerCollection, &m.OwnerID,
		&m.UploadedBy, &m.CreatedAt)
	return m, err
}

// CreateMediaObject records an uploaded object that has no owner yet.
func (q *Queries) CreateMediaObject(ctx context.Context, m model.MediaObject) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO media_objects (object_key, url, content_type, size, owner_collection, owner_id, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Key, m.URL, m.ContentType, m.Size, m.OwnerCollection, m.OwnerID, m.UploadedBy, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting media object: %w", err)
	}
	return nil
}

// AttachMediaObjects sets the owner of the given keys.
func (q *Queries) AttachMediaObjects(ctx context.Context, keys []string, collection, ownerID string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, 0, len(keys)+2)
	args = append(args, collection, ownerID)
	for _, k := range keys {
		args = append(args, k)
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE media_objects SET owner_collection = ?, owner_id = ? WHERE object_key IN (`+placeholders+`)`,
		args...)
	return err
}

// GetMediaObjectByURL looks up a tracked object by its public URL.
func (q *Queries) GetMediaObjectByURL(ctx context.Context, url string) (model.MediaObject, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_objects WHERE url = ?`, url)
	return scanMediaObject(row)
}

// DeleteMediaObject removes the tracking row of an object.
func (q *Queries) DeleteMediaObject(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media_objects WHERE object_key = ?`, key)
	return err
}

// ListOrphanMediaObjects returns unattached objects created before the cutoff.
func (q *Queries) ListOrphanMediaObjects(ctx context.Context, before time.Time, limit int) ([]model.MediaObject, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media_objects
		WHERE owner_id IS NULL AND created_at < ?
		ORDER BY created_at ASC LIMIT ?`, before, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var objects []model.MediaObject
	for rows.Next() {
		m, err := scanMediaObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, m)
	}
	return objects, rows.Err()
}
