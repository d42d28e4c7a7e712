// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/scheduler"
	"github.com/olegiv/turismo-admin/internal/service"
)

const (
	msgJobFinished = "Tarefa executada com sucesso: "
	msgJobFailed   = "Falha ao executar a tarefa: "
	msgJobRunning  = "A tarefa já está em execução: "
	msgJobNotFound = "Tarefa não encontrada"

	settingsActivityLimit = 25
)

// JobLister is the part of the scheduler used by the settings page.
type JobLister interface {
	List() []scheduler.JobInfo
	TriggerNow(name string) error
}

// SettingsHandler renders the settings page and its administrator actions.
type SettingsHandler struct {
	auth  *service.AuthService
	audit *service.AuditService
	jobs  JobLister
	pages *Pages
}

// NewSettingsHandler creates a new SettingsHandler. jobs may be nil.
func NewSettingsHandler(auth *service.AuthService, audit *service.AuditService, jobs JobLister, pages *Pages) *SettingsHandler {
	return &SettingsHandler{auth: auth, audit: audit, jobs: jobs, pages: pages}
}

// SettingsData is the data of the settings page.
type SettingsData struct {
	CanManage bool
	Admins    []model.Admin
	Jobs      []scheduler.JobInfo
	Activity  []model.AuditEntry
}

// Settings renders the settings page. Administrator management, job control
// and the audit log are shown to super admins only.
func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r)
	data := SettingsData{CanManage: admin.IsSuperAdmin()}

	if h.jobs != nil {
		data.Jobs = h.jobs.List()
	}

	if data.CanManage {
		admins, err := h.auth.Admins(r.Context())
		if err != nil {
			h.pages.InternalError(w, r, err)
			return
		}
		data.Admins = admins

		if data.Activity, err = h.audit.Recent(r.Context(), settingsActivityLimit); err != nil {
			slog.ErrorContext(r.Context(), "failed to load audit entries", "error", err)
		}
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplSettings, titleSettings, pageSettings, data)
}

// SetAdminActive enables or disables an administrator account.
func (h *SettingsHandler) SetAdminActive(w http.ResponseWriter, r *http.Request) {
	renderer := h.pages.Renderer()
	caller := middleware.GetAdmin(r)
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectSettings, msgInvalidBody)
		return
	}
	active := r.PostFormValue("active") == "true"

	admin, err := h.auth.SetAdminActive(r.Context(), caller, id, active)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			h.pages.Forbidden(w, r)
		case errors.Is(err, service.ErrNotFound):
			flashError(w, r, renderer, redirectSettings, service.MsgAdminNotFound)
		default:
			if ve, ok := service.IsValidation(err); ok {
				flashError(w, r, renderer, redirectSettings, ve.Message)
				return
			}
			slog.ErrorContext(r.Context(), "failed to update admin", "error", err, "admin_id", id)
			flashError(w, r, renderer, redirectSettings, service.MsgInternal)
		}
		return
	}

	message, msg := "Admin deactivated", service.MsgAdminDeactivated
	if active {
		message, msg = "Admin activated", service.MsgAdminActivated
	}
	slog.Info(message, "admin_id", admin.ID, "by", caller.ID)
	h.audit.Auth(r.Context(), model.AuditLevelInfo, message, caller.ID, middleware.RequestInfo(r),
		map[string]any{"target_admin_id": admin.ID, "email": admin.Email})

	flashSuccess(w, r, renderer, redirectSettings, msg)
}

// RunJob triggers a scheduled job and waits for it to finish.
func (h *SettingsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	renderer := h.pages.Renderer()
	name := chi.URLParam(r, "name")

	if h.jobs == nil {
		flashError(w, r, renderer, redirectSettings, msgJobNotFound)
		return
	}

	adminID := middleware.GetAdminID(r)
	_ = h.audit.Record(r.Context(), model.AuditLevelInfo, model.AuditCategorySystem, "Job triggered manually",
		adminID, middleware.RequestInfo(r), map[string]any{"job": name})

	err := h.jobs.TriggerNow(name)
	switch {
	case err == nil:
		slog.Info("job triggered manually", "name", name, "admin_id", adminID)
		flashSuccess(w, r, renderer, redirectSettings, msgJobFinished+name)
	case errors.Is(err, scheduler.ErrJobNotFound):
		flashError(w, r, renderer, redirectSettings, msgJobNotFound)
	case errors.Is(err, scheduler.ErrJobRunning):
		flashError(w, r, renderer, redirectSettings, msgJobRunning+name)
	default:
		flashError(w, r, renderer, redirectSettings, msgJobFailed+err.Error())
	}
}
