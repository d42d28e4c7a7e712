// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses and executes the admin panel's HTML templates.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/uikit"
)

// Template groups. Dashboard pages are wrapped in the dashboard layout;
// auth and error pages use the base layout only.
const (
	dirDashboard = "dashboard"
	dirAuth      = "auth"
	dirErrors    = "errors"

	baseLayout      = "layouts/base.html"
	dashboardLayout = "layouts/dashboard.html"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
	markdown       goldmark.Markdown
	policy         *bluemonday.Policy
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
		markdown:       goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		policy:         bluemonday.UGCPolicy(),
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses all templates from the filesystem.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	groups := []struct {
		dir     string
		layouts []string
	}{
		{dirDashboard, []string{baseLayout, dashboardLayout}},
		{dirAuth, []string{baseLayout}},
		{dirErrors, []string{baseLayout}},
	}

	for _, g := range groups {
		pages, err := getTemplateFiles(templatesFS, g.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", g.dir, err)
		}

		for _, tmplPath := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			// Parse in order: layouts, partials, page template
			files := append([]string{}, g.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Directory might not exist, that's ok
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// categoryLabels are the display names of tourist point and event categories.
var categoryLabels = map[string]string{
	"parque":      "Parque",
	"museu":       "Museu",
	"monumento":   "Monumento",
	"igreja":      "Igreja",
	"mirante":     "Mirante",
	"gastronomia": "Gastronomia",
	"compras":     "Compras",
	"cultura":     "Cultura",
	"natureza":    "Natureza",
	"musica":      "Música",
	"esporte":     "Esporte",
	"feira":       "Feira",
	"festival":    "Festival",
	"teatro":      "Teatro",
	"exposicao":   "Exposição",
	"outro":       "Outro",
}

// CategoryLabel returns the display name of a category.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// RoleLabel returns the display name of an administrator role.
func RoleLabel(role string) string {
	switch role {
	case model.RoleSuperAdmin:
		return "Super Administrador"
	case model.RoleAdmin:
		return "Administrador"
	default:
		return role
	}
}

// Markdown renders s as sanitized HTML.
func (r *Renderer) Markdown(s string) template.HTML {
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// TemplateFuncs returns the template functions: the uikit helpers plus the
// panel-specific ones.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	funcs["categoryLabel"] = CategoryLabel
	funcs["roleLabel"] = RoleLabel
	funcs["languages"] = func() []string { return model.Languages }
	funcs["localized"] = func(l model.Localized, lang string) string { return l.Get(lang) }
	funcs["derefLocalized"] = func(l *model.Localized) model.Localized {
		if l == nil {
			return model.Localized{}
		}
		return *l
	}
	funcs["markdown"] = func(s string) template.HTML {
		if r.markdown == nil {
			return template.HTML(template.HTMLEscapeString(s))
		}
		return r.Markdown(s)
	}
	funcs["isDev"] = func() bool { return r.isDev }
	return funcs
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Admin       *model.SessionAdmin
	CurrentPage string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
}

// Render renders a template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()

	// Get flash message from session
	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), sessionKeyFlash); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), sessionKeyFlashType)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// Has reports whether a template with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), sessionKeyFlash, message)
		r.sessionManager.Put(req.Context(), sessionKeyFlashType, flashType)
	}
}
