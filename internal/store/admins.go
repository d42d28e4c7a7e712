// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
)

const adminColumns = `id, email, password_hash, name, role, is_active, created_at, updated_at, last_login_at, created_by`

func scanAdmin(row interface{ Scan(...any) error }) (model.Admin, error) {
	var a model.Admin
	var active int
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &active,
		&a.CreatedAt, &a.UpdatedAt, &a.LastLoginAt, &a.CreatedBy)
	a.IsActive = active != 0
	return a, err
}

// CreateAdminParams holds the fields of a new administrator.
type CreateAdminParams struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedBy    string
	CreatedAt    time.Time
}

// CreateAdmin inserts an administrator. A taken email returns ErrDuplicate;
// the UNIQUE index makes the check and the write a single step.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (model.Admin, error) {
	createdBy := sql.NullString{String: arg.CreatedBy, Valid: arg.CreatedBy != ""}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash, name, role, is_active, created_at, updated_at, created_by)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		arg.ID, arg.Email, arg.PasswordHash, arg.Name, arg.Role, arg.CreatedAt, arg.CreatedAt, createdBy)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Admin{}, ErrDuplicate
		}
		return model.Admin{}, fmt.Errorf("inserting admin: %w", err)
	}
	return q.GetAdminByID(ctx, arg.ID)
}

// GetAdminByID returns the administrator with the given id.
func (q *Queries) GetAdminByID(ctx context.Context, id string) (model.Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	return scanAdmin(row)
}

// GetAdminByEmail returns the administrator with the given normalized email.
func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (model.Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = ?`, email)
	return scanAdmin(row)
}

// ListAdmins returns every administrator ordered by creation.
func (q *Queries) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var admins []model.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// UpdateAdminLastLogin records a successful login.
func (q *Queries) UpdateAdminLastLogin(ctx context.Context, id string, at time.Time) error {
	return requireAffected(q.db.ExecContext(ctx,
		`UPDATE admins SET last_login_at = ? WHERE id = ?`, at, id))
}

// UpdateAdminPassword replaces the password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, id, hash string, at time.Time) error {
	return requireAffected(q.db.ExecContext(ctx,
		`UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, at, id))
}

// SetAdminActive enables or disables an account.
func (q *Queries) SetAdminActive(ctx context.Context, id string, active bool, at time.Time) error {
	return requireAffected(q.db.ExecContext(ctx,
		`UPDATE admins SET is_active = ?, updated_at = ? WHERE id = ?`, boolToInt(active), at, id))
}
