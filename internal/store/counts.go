// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// CountActiveTouristPoints counts tourist points with is_active set.
func (q *Queries) CountActiveTouristPoints(ctx context.Context) (int64, error) {
	return q.count(ctx, `SELECT COUNT(*) FROM tourist_points WHERE is_active = 1`)
}

// CountActiveEvents counts events with is_active set.
func (q *Queries) CountActiveEvents(ctx context.Context) (int64, error) {
	return q.count(ctx, `SELECT COUNT(*) FROM events WHERE is_active = 1`)
}

// CountUsers counts app users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	return q.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountReviews counts app reviews.
func (q *Queries) CountReviews(ctx context.Context) (int64, error) {
	return q.count(ctx, `SELECT COUNT(*) FROM reviews`)
}

func (q *Queries) count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

// AppUser is a read-only row of the public app's users table.
type AppUser struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Review is a read-only row of the public app's reviews table.
type Review struct {
	ID             string
	TouristPointID string
	UserID         string
	Rating         int
	Comment        string
	CreatedAt      time.Time
}

// ListUsers returns app users newest first.
func (q *Queries) ListUsers(ctx context.Context, limit, offset int) ([]AppUser, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, email, created_at FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []AppUser
	for rows.Next() {
		var u AppUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListReviews returns app reviews newest first.
func (q *Queries) ListReviews(ctx context.Context, limit, offset int) ([]Review, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, tourist_point_id, user_id, rating, comment, created_at
		 FROM reviews ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.TouristPointID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
