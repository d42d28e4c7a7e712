// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/olegiv/turismo-admin/internal/render"
)

// Error page texts.
const (
	headingNotFound  = "Página não encontrada"
	messageNotFound  = "A página que você está procurando não existe."
	headingForbidden = "Acesso Negado"
	messageForbidden = "Você não tem permissão para acessar esta página."
	headingInternal  = "Erro no servidor"
	messageInternal  = "Ocorreu um erro interno no servidor."

	msgResourceNotFound = "Recurso não encontrado"
)

// ErrorData is the data of the error page template.
type ErrorData struct {
	Status  int
	Heading string
	Message string
	Detail  string
}

// Pages renders HTML pages and the error pages shared by all handlers.
type Pages struct {
	renderer   *render.Renderer
	production bool
}

// NewPages creates a Pages. Outside production the 500 page shows the
// error detail.
func NewPages(renderer *render.Renderer, production bool) *Pages {
	return &Pages{renderer: renderer, production: production}
}

// Renderer returns the underlying template renderer.
func (p *Pages) Renderer() *render.Renderer {
	return p.renderer
}

// ShowDetail reports whether error details may be sent to clients.
func (p *Pages) ShowDetail() bool {
	return !p.production
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, RouteAPI+"/")
}

func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, data ErrorData) {
	err := p.renderer.RenderStatus(w, r, data.Status, tmplError, render.TemplateData{
		Title: pageTitle(data.Heading),
		Data:  data,
	})
	if err != nil {
		logAndInternalError(w, "failed to render error page", "error", err, "status", data.Status)
	}
}

// NotFound renders the 404 page. API paths get a JSON answer.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeJSONError(w, http.StatusNotFound, msgResourceNotFound, nil, false)
		return
	}
	p.renderError(w, r, ErrorData{
		Status:  http.StatusNotFound,
		Heading: headingNotFound,
		Message: messageNotFound,
	})
}

// Forbidden renders the access denied page.
func (p *Pages) Forbidden(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeJSONError(w, http.StatusForbidden, messageForbidden, nil, false)
		return
	}
	p.renderError(w, r, ErrorData{
		Status:  http.StatusForbidden,
		Heading: headingForbidden,
		Message: messageForbidden,
	})
}

// InternalError logs err and renders the 500 page.
func (p *Pages) InternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error", "error", err, "method", r.Method, "path", r.URL.Path)

	data := ErrorData{
		Status:  http.StatusInternalServerError,
		Heading: headingInternal,
		Message: messageInternal,
	}
	if !p.production && err != nil {
		data.Message = err.Error()
	}
	if isAPIRequest(r) {
		writeJSONError(w, http.StatusInternalServerError, messageInternal, err, p.ShowDetail())
		return
	}
	p.renderError(w, r, data)
}

// Recoverer turns panics into the 500 page. The stack is logged; it is shown
// to the client only outside production.
func (p *Pages) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			stack := string(debug.Stack())
			slog.ErrorContext(r.Context(), "panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path, "stack", stack)

			err := fmt.Errorf("panic: %v", rec)
			if isAPIRequest(r) {
				writeJSONError(w, http.StatusInternalServerError, messageInternal, err, p.ShowDetail())
				return
			}
			data := ErrorData{
				Status:  http.StatusInternalServerError,
				Heading: headingInternal,
				Message: messageInternal,
			}
			if !p.production {
				data.Message = err.Error()
				data.Detail = stack
			}
			p.renderError(w, r, data)
		}()
		next.ServeHTTP(w, r)
	})
}
