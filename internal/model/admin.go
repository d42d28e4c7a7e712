// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types of the admin panel: administrators,
// tourist points, events, media objects and audit entries.
package model

import (
	"database/sql"
	"strings"
	"time"
)

// Administrator roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// BootstrapAdminID is the session id of the configured bootstrap administrator.
// It never corresponds to a stored record.
const BootstrapAdminID = "default_admin"

// ValidRole reports whether role is one of the administrator roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Admin represents a stored administrator account.
type Admin struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `json:"name"`
	Role         string         `json:"role"`
	IsActive     bool           `json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	LastLoginAt  sql.NullTime   `json:"-"`
	CreatedBy    sql.NullString `json:"-"`
}

// IsSuperAdmin returns true if the admin has the super_admin role.
func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// SessionAdmin is the identity carried in the session for a logged-in administrator.
type SessionAdmin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsSuperAdmin returns true if the session identity has the super_admin role.
func (s *SessionAdmin) IsSuperAdmin() bool {
	return s != nil && s.Role == RoleSuperAdmin
}

// IsBootstrap returns true for the configured bootstrap identity.
func (s *SessionAdmin) IsBootstrap() bool {
	return s != nil && s.ID == BootstrapAdminID
}

// SessionIdentity builds the session identity for a stored admin.
func (a *Admin) SessionIdentity() SessionAdmin {
	return SessionAdmin{ID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role}
}
