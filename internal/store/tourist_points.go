// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
)

const touristPointColumns = `id, name, description, address, latitude, longitude, category,
	phone, website, opening_hours, image_urls, rating, review_count, is_active,
	created_at, updated_at, created_by, updated_by, deleted_at, deleted_by`

func scanTouristPoint(row interface{ Scan(...any) error }) (model.TouristPoint, error) {
	var (
		p                     model.TouristPoint
		phone, website, hours sql.NullString
		updatedBy, deletedBy  sql.NullString
		deletedAt             sql.NullTime
		active                int
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Address, &p.Latitude, &p.Longitude, &p.Category,
		&phone, &website, &hours, &p.ImageURLs, &p.Rating, &p.ReviewCount, &active,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &updatedBy, &deletedAt, &deletedBy)
	if err != nil {
		return p, err
	}
	p.Phone = stringPtr(phone)
	p.Website = stringPtr(website)
	p.UpdatedBy = stringPtr(updatedBy)
	p.DeletedBy = stringPtr(deletedBy)
	p.IsActive = active != 0
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	if hours.Valid && hours.String != "" {
		var l model.Localized
		if err := json.Unmarshal([]byte(hours.String), &l); err != nil {
			return p, fmt.Errorf("decoding opening hours: %w", err)
		}
		p.OpeningHours = &l
	}
	if p.ImageURLs == nil {
		p.ImageURLs = model.StringList{}
	}
	return p, nil
}

func encodeOpeningHours(l *model.Localized) (sql.NullString, error) {
	if l == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// CreateTouristPoint inserts a tourist point.
func (q *Queries) CreateTouristPoint(ctx context.Context, p model.TouristPoint) error {
	hours, err := encodeOpeningHours(p.OpeningHours)
	if err != nil {
		return fmt.Errorf("encoding opening hours: %w", err)
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO tourist_points (id, name, description, address, latitude, longitude, category,
			phone, website, opening_hours, image_urls, rating, review_count, is_active,
			created_at, updated_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Address, p.Latitude, p.Longitude, p.Category,
		nullString(p.Phone), nullString(p.Website), hours, p.ImageURLs, p.Rating, p.ReviewCount,
		boolToInt(p.IsActive), p.CreatedAt, p.UpdatedAt, p.CreatedBy)
	if err != nil {
		return fmt.Errorf("inserting tourist point: %w", err)
	}
	return nil
}

// GetTouristPoint returns a tourist point by id, including inactive ones.
func (q *Queries) GetTouristPoint(ctx context.Context, id string) (model.TouristPoint, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+touristPointColumns+` FROM tourist_points WHERE id = ?`, id)
	return scanTouristPoint(row)
}

// TouchTouristPoint bumps updated_at. Run first in a transaction it takes the
// write lock before the read-merge-write that follows.
func (q *Queries) TouchTouristPoint(ctx context.Context, id string, at time.Time) error {
	return requireAffected(q.db.ExecContext(ctx,
		`UPDATE tourist_points SET updated_at = ? WHERE id = ?`, at, id))
}

// UpdateTouristPoint writes every mutable column of p.
func (q *Queries) UpdateTouristPoint(ctx context.Context, p model.TouristPoint) error {
	hours, err := encodeOpeningHours(p.OpeningHours)
	if err != nil {
		return fmt.Errorf("encoding opening hours: %w", err)
	}
	return requireAffected(q.db.ExecContext(ctx, `
		UPDATE tourist_points SET
			name = ?, description = ?, address = ?, latitude = ?, longitude = ?, category = ?,
			phone = ?, website = ?, opening_hours = ?, image_urls = ?, is_active = ?,
			updated_at = ?, updated_by = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Address, p.Latitude, p.Longitude, p.Category,
		nullString(p.Phone), nullString(p.Website), hours, p.ImageURLs, boolToInt(p.IsActive),
		p.UpdatedAt, nullString(p.UpdatedBy), p.ID))
}

// SoftDeleteTouristPoint marks a tourist point inactive and records who deleted it.
func (q *Queries) SoftDeleteTouristPoint(ctx context.Context, id, by string, at time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, `
		UPDATE tourist_points SET is_active = 0, deleted_at = ?, deleted_by = ?
		WHERE id = ?`, at, by, id))
}

// ContentFilter selects records by category and active flag.
// A zero Limit returns every matching row.
type ContentFilter struct {
	Category string
	Active   *bool
	Limit    int
	Offset   int
}

func (f ContentFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Active != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, boolToInt(*f.Active))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f ContentFilter) page(args []any) (string, []any) {
	if f.Limit <= 0 {
		return " LIMIT -1", args
	}
	return " LIMIT ? OFFSET ?", append(args, f.Limit, f.Offset)
}

// ListTouristPoints returns tourist points newest first.
func (q *Queries) ListTouristPoints(ctx context.Context, f ContentFilter) ([]model.TouristPoint, error) {
	where, args := f.where()
	limit, args := f.page(args)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+touristPointColumns+` FROM tourist_points`+where+
			` ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tourist points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	points := []model.TouristPoint{}
	for rows.Next() {
		p, err := scanTouristPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// CountTouristPoints counts tourist points matching the filter, ignoring paging.
func (q *Queries) CountTouristPoints(ctx context.Context, f ContentFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tourist_points`+where, args...).Scan(&n)
	return n, err
}
