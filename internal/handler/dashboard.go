// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/service"
	"github.com/olegiv/turismo-admin/internal/store"
	"github.com/olegiv/turismo-admin/internal/uikit"
)

// Dashboard list sizes.
const (
	recentItemsLimit    = 5
	recentActivityLimit = 10
)

// DashboardHandler renders the dashboard pages.
type DashboardHandler struct {
	queries *store.Queries
	content *service.ContentService
	stats   *service.StatisticsService
	audit   *service.AuditService
	pages   *Pages
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *sql.DB, content *service.ContentService, stats *service.StatisticsService, audit *service.AuditService, pages *Pages) *DashboardHandler {
	return &DashboardHandler{
		queries: store.New(db),
		content: content,
		stats:   stats,
		audit:   audit,
		pages:   pages,
	}
}

// DashboardData is the data of the dashboard home page.
type DashboardData struct {
	Stats        model.Statistics
	RecentPoints []model.TouristPoint
	RecentEvents []model.Event
	Activity     []model.AuditEntry
}

// ListFilters holds the filter form state of a list page.
type ListFilters struct {
	Action     string
	Search     string
	Category   string
	Status     string
	Categories []string
}

// ListData is the data of the paginated list pages.
type ListData[T any] struct {
	Filters    ListFilters
	Items      []T
	Pagination uikit.PageLinks
}

// TouristPointFormData is the data of the tourist point add and edit pages.
type TouristPointFormData struct {
	Point      *model.TouristPoint
	IsEdit     bool
	Method     string
	Action     string
	Categories []string
}

// EventFormData is the data of the add event page.
type EventFormData struct {
	Event      model.Event
	Categories []string
}

// parseListParams reads page, limit, category, status and search from the query.
func parseListParams(r *http.Request) model.ListParams {
	q := r.URL.Query()
	p := model.ListParams{
		Page:     uikit.ParsePageParam(r),
		Limit:    uikit.ParseIntParam(r, "limit", model.DefaultLimit, 1, model.MaxLimit),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	switch q.Get("status") {
	case "true":
		active := true
		p.Active = &active
	case "false":
		active := false
		p.Active = &active
	}
	return p.Normalize()
}

func listFilters(r *http.Request, action string, categories []string) ListFilters {
	q := r.URL.Query()
	status := q.Get("status")
	if status != "true" && status != "false" {
		status = ""
	}
	return ListFilters{
		Action:     action,
		Search:     strings.TrimSpace(q.Get("search")),
		Category:   q.Get("category"),
		Status:     status,
		Categories: categories,
	}
}

// Index renders the dashboard home page.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data DashboardData

	stats, err := h.stats.GetStatistics(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load statistics", "error", err)
	}
	data.Stats = stats

	recent := model.ListParams{Page: 1, Limit: recentItemsLimit}
	if data.RecentPoints, _, err = h.content.ListTouristPoints(ctx, recent); err != nil {
		slog.ErrorContext(ctx, "failed to load recent tourist points", "error", err)
	}
	active := true
	recent.Active = &active
	if data.RecentEvents, _, err = h.content.ListEvents(ctx, recent); err != nil {
		slog.ErrorContext(ctx, "failed to load recent events", "error", err)
	}
	if data.Activity, err = h.audit.Recent(ctx, recentActivityLimit); err != nil {
		slog.ErrorContext(ctx, "failed to load audit entries", "error", err)
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplDashboard, titleDashboard, pageDashboard, data)
}

// TouristPoints renders the tourist point list.
func (h *DashboardHandler) TouristPoints(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	items, pg, err := h.content.ListTouristPoints(r.Context(), params)
	if err != nil {
		h.pages.InternalError(w, r, err)
		return
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplTouristPoints, titleTouristPoints, pageTouristPoints, ListData[model.TouristPoint]{
		Filters:    listFilters(r, pathDashboardTouristPoints, model.TouristPointCategories),
		Items:      items,
		Pagination: uikit.NewPageLinks(pg, pathDashboardTouristPoints, r.URL.Query()),
	})
}

// AddTouristPoint renders the empty tourist point form.
func (h *DashboardHandler) AddTouristPoint(w http.ResponseWriter, r *http.Request) {
	h.pages.renderPage(w, r, http.StatusOK, tmplTouristPointForm, titleAddTouristPoint, pageTouristPoints, TouristPointFormData{
		Point:      &model.TouristPoint{},
		Method:     http.MethodPost,
		Action:     pathAPITouristPoints,
		Categories: model.TouristPointCategories,
	})
}

// EditTouristPoint renders the form for an existing tourist point.
func (h *DashboardHandler) EditTouristPoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tp, err := h.content.GetTouristPoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.pages.NotFound(w, r)
			return
		}
		h.pages.InternalError(w, r, err)
		return
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplTouristPointForm, titleEditTouristPoint, pageTouristPoints, TouristPointFormData{
		Point:      &tp,
		IsEdit:     true,
		Method:     http.MethodPut,
		Action:     pathAPITouristPoints + "/" + tp.ID,
		Categories: model.TouristPointCategories,
	})
}

// Events renders the event list.
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	items, pg, err := h.content.ListEvents(r.Context(), params)
	if err != nil {
		h.pages.InternalError(w, r, err)
		return
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplEvents, titleEvents, pageEvents, ListData[model.Event]{
		Filters:    listFilters(r, pathDashboardEvents, model.EventCategories),
		Items:      items,
		Pagination: uikit.NewPageLinks(pg, pathDashboardEvents, r.URL.Query()),
	})
}

// AddEvent renders the empty event form.
func (h *DashboardHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	h.pages.renderPage(w, r, http.StatusOK, tmplEventForm, titleAddEvent, pageEvents, EventFormData{
		Categories: model.EventCategories,
	})
}

// Users renders the read-only list of app users.
func (h *DashboardHandler) Users(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	ctx := r.Context()

	total, err := h.queries.CountUsers(ctx)
	if err != nil {
		h.pages.InternalError(w, r, err)
		return
	}
	items, err := h.queries.ListUsers(ctx, params.Limit, params.Offset())
	if err != nil {
		h.pages.InternalError(w, r, err)
		return
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplUsers, titleUsers, pageUsers, ListData[store.AppUser]{
		Items:      items,
		Pagination: uikit.NewPageLinks(model.NewPagination(params.Page, params.Limit, total), pathDashboardUsers, r.URL.Query()),
	})
}

// Reviews renders the read-only list of reviews.
func (h *DashboardHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	ctx := r.Context()

	total, err := h.queries.CountReviews(ctx)
	if err != nil {
		h.pages.InternalError(w, r, err)
		return
	}
	items, err := h.queries.ListReviews(ctx, params.Limit, params.Offset())
	if err != nil {
		h.pages.InternalError(w, r, err)
		return
	}

	h.pages.renderPage(w, r, http.StatusOK, tmplReviews, titleReviews, pageReviews, ListData[store.Review]{
		Items:      items,
		Pagination: uikit.NewPageLinks(model.NewPagination(params.Page, params.Limit, total), pathDashboardReviews, r.URL.Query()),
	})
}
