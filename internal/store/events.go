// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/turismo-admin/internal/model"
)

const eventColumns = `id, title, description, start_date, end_date, location, latitude, longitude,
	category, is_featured, ticket_url, image_urls, is_active, created_at, updated_at, created_by`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var (
		e                   model.Event
		location, ticketURL sql.NullString
		lat, lng            sql.NullFloat64
		featured, active    int
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &location, &lat, &lng,
		&e.Category, &featured, &ticketURL, &e.ImageURLs, &active, &e.CreatedAt, &e.UpdatedAt, &e.CreatedBy)
	if err != nil {
		return e, err
	}
	e.Location = stringPtr(location)
	e.TicketURL = stringPtr(ticketURL)
	e.Latitude = floatPtr(lat)
	e.Longitude = floatPtr(lng)
	e.IsFeatured = featured != 0
	e.IsActive = active != 0
	if e.ImageURLs == nil {
		e.ImageURLs = model.StringList{}
	}
	return e, nil
}

// CreateEvent inserts an event.
func (q *Queries) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, start_date, end_date, location, latitude, longitude,
			category, is_featured, ticket_url, image_urls, is_active, created_at, updated_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.StartDate, e.EndDate, nullString(e.Location),
		nullFloat(e.Latitude), nullFloat(e.Longitude), e.Category, boolToInt(e.IsFeatured),
		nullString(e.TicketURL), e.ImageURLs, boolToInt(e.IsActive), e.CreatedAt, e.UpdatedAt, e.CreatedBy)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// GetEvent returns an event by id.
func (q *Queries) GetEvent(ctx context.Context, id string) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListEvents returns events ordered by start date, latest first.
func (q *Queries) ListEvents(ctx context.Context, f ContentFilter) ([]model.Event, error) {
	where, args := f.where()
	limit, args := f.page(args)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events`+where+
			` ORDER BY start_date DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents counts events matching the filter, ignoring paging.
func (q *Queries) CountEvents(ctx context.Context, f ContentFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&n)
	return n, err
}
