// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/render"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// logAndInternalError logs an error and writes a plain 500 response. It is
// the fallback when the error page itself cannot be rendered.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// pageTitle builds the document title of a page.
func pageTitle(heading string) string {
	return heading + titleSuffix
}

// renderPage renders a page template for the current administrator. Render
// failures produce the 500 page.
func (p *Pages) renderPage(w http.ResponseWriter, r *http.Request, status int, name, heading, current string, data any) {
	err := p.renderer.RenderStatus(w, r, status, name, render.TemplateData{
		Title:       pageTitle(heading),
		Admin:       middleware.GetAdmin(r),
		CurrentPage: current,
		Data:        data,
	})
	if err != nil {
		p.InternalError(w, r, err)
	}
}
