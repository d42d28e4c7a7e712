// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/turismo-admin/internal/auth"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
)

// MinPasswordLength is the shortest accepted administrator password.
const MinPasswordLength = 6

// Bootstrap is the configured fallback administrator. It is checked before
// any store lookup and never persisted. Empty Email or Password disables it.
type Bootstrap struct {
	Email    string
	Password string
	Name     string
}

func (b Bootstrap) enabled() bool {
	return b.Email != "" && b.Password != ""
}

func (b Bootstrap) identity() model.SessionAdmin {
	return model.SessionAdmin{
		ID:    model.BootstrapAdminID,
		Email: b.Email,
		Name:  b.Name,
		Role:  model.RoleSuperAdmin,
	}
}

// AuthService handles administrator login, registration and password changes.
type AuthService struct {
	queries   *store.Queries
	bootstrap Bootstrap
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, bootstrap Bootstrap, logger *slog.Logger) *AuthService {
	bootstrap.Email = model.NormalizeEmail(bootstrap.Email)
	return &AuthService{
		queries:   store.New(db),
		bootstrap: bootstrap,
		logger:    logger,
		now:       time.Now,
	}
}

// Login verifies the credentials and returns the identity to store in the session.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials; a correct
// password on an inactive account yields ErrAccountDisabled.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.SessionAdmin, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.SessionAdmin{}, validationError(MsgLoginRequired)
	}

	if s.bootstrap.enabled() && email == s.bootstrap.Email {
		if auth.EqualSecret(password, s.bootstrap.Password) {
			return s.bootstrap.identity(), nil
		}
		return model.SessionAdmin{}, ErrInvalidCredentials
	}

	admin, err := s.queries.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SessionAdmin{}, ErrInvalidCredentials
		}
		return model.SessionAdmin{}, fmt.Errorf("looking up admin: %w", err)
	}

	ok, err := auth.CheckPassword(password, admin.PasswordHash)
	if err != nil {
		return model.SessionAdmin{}, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return model.SessionAdmin{}, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return model.SessionAdmin{}, ErrAccountDisabled
	}

	now := s.now().UTC()
	if err := s.queries.UpdateAdminLastLogin(ctx, admin.ID, now); err != nil {
		s.logger.Warn("failed to update last login", "error", err, "admin_id", admin.ID)
	}
	if auth.NeedsRehash(admin.PasswordHash) {
		s.rehash(ctx, admin.ID, password, now)
	}

	return admin.SessionIdentity(), nil
}

// rehash upgrades a legacy or outdated hash after a successful login.
func (s *AuthService) rehash(ctx context.Context, adminID, password string, now time.Time) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "error", err, "admin_id", adminID)
		return
	}
	if err := s.queries.UpdateAdminPassword(ctx, adminID, hash, now); err != nil {
		s.logger.Warn("failed to store rehashed password", "error", err, "admin_id", adminID)
	}
}

// RegisterInput holds the registration form fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// Register creates a new administrator. Only super admins may register others.
func (s *AuthService) Register(ctx context.Context, caller *model.SessionAdmin, in RegisterInput) (model.Admin, error) {
	if !caller.IsSuperAdmin() {
		return model.Admin{}, ErrForbidden
	}

	name := strings.TrimSpace(in.Name)
	email := model.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" || in.Role == "" {
		return model.Admin{}, validationError(MsgAllFieldsRequired)
	}
	if in.Password != in.ConfirmPassword {
		return model.Admin{}, validationError(MsgPasswordsMismatch)
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return model.Admin{}, validationError(MsgPasswordTooShort)
	}
	if !model.ValidRole(in.Role) {
		return model.Admin{}, validationError(MsgInvalidRole)
	}
	if s.bootstrap.enabled() && email == s.bootstrap.Email {
		return model.Admin{}, validationError(MsgEmailInUse)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.Admin{}, fmt.Errorf("hashing password: %w", err)
	}

	admin, err := s.queries.CreateAdmin(ctx, store.CreateAdminParams{
		ID:           store.NewID(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         in.Role,
		CreatedBy:    caller.ID,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Admin{}, validationError(MsgEmailInUse)
		}
		return model.Admin{}, err
	}
	return admin, nil
}

// ChangePasswordInput holds the change-password form fields.
type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// ChangePassword replaces the caller's password. The bootstrap identity can
// never change its password; it still has to prove the current one first.
func (s *AuthService) ChangePassword(ctx context.Context, caller model.SessionAdmin, in ChangePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmNewPassword == "" {
		return validationError(MsgAllFieldsRequired)
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return validationError(MsgNewPasswordsMismatch)
	}
	if utf8.RuneCountInString(in.NewPassword) < MinPasswordLength {
		return validationError(MsgNewPasswordTooShort)
	}

	if caller.IsBootstrap() {
		if !auth.EqualSecret(in.CurrentPassword, s.bootstrap.Password) {
			return validationError(MsgWrongCurrentPassword)
		}
		return validationError(MsgBootstrapPasswordFixed)
	}

	admin, err := s.queries.GetAdminByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return validationError(MsgAdminNotFound)
		}
		return fmt.Errorf("loading admin: %w", err)
	}

	ok, err := auth.CheckPassword(in.CurrentPassword, admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return validationError(MsgWrongCurrentPassword)
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.queries.UpdateAdminPassword(ctx, admin.ID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}
	return nil
}

// Admins lists the stored administrators.
func (s *AuthService) Admins(ctx context.Context) ([]model.Admin, error) {
	return s.queries.ListAdmins(ctx)
}

// SetAdminActive enables or disables a stored administrator. Only super
// admins may do it, and never on their own account.
func (s *AuthService) SetAdminActive(ctx context.Context, caller *model.SessionAdmin, id string, active bool) (model.Admin, error) {
	if !caller.IsSuperAdmin() {
		return model.Admin{}, ErrForbidden
	}
	if id == caller.ID {
		return model.Admin{}, validationError(MsgCannotDisableSelf)
	}

	err := s.queries.SetAdminActive(ctx, id, active, s.now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return model.Admin{}, ErrNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("updating admin: %w", err)
	}

	admin, err := s.queries.GetAdminByID(ctx, id)
	if err != nil {
		return model.Admin{}, fmt.Errorf("loading admin: %w", err)
	}
	return admin, nil
}
