// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/turismo-admin/internal/config"
	"github.com/olegiv/turismo-admin/internal/handler"
	"github.com/olegiv/turismo-admin/internal/middleware"
	"github.com/olegiv/turismo-admin/internal/service"
	"github.com/olegiv/turismo-admin/internal/storage"
	"github.com/olegiv/turismo-admin/web"
)

// Cache lifetimes for embedded assets.
const staticCacheMaxAge = 31536000

type routerDeps struct {
	cfg             *config.Config
	db              *sql.DB
	sessions        *scs.SessionManager
	pages           *handler.Pages
	loginProtection *middleware.LoginProtection
	imageOrigin     string
	bucket          storage.Bucket

	health    *handler.HealthHandler
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	settings  *handler.SettingsHandler
	api       *handler.APIHandler
	audit     *service.AuditService
}

func newRouter(d routerDeps) (chi.Router, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(d.pages.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)

	securityConfig := middleware.DefaultSecurityHeadersConfig(d.cfg.IsDevelopment(), d.imageOrigin)
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !d.cfg.IsDevelopment(), "image_origin", d.imageOrigin)

	r.Use(middleware.RequestPath)
	r.Use(d.sessions.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(d.cfg.SessionSecret), d.cfg.IsDevelopment(), d.cfg.ServerPort)))

	// Probes
	r.Get(handler.RouteHealth, d.health.Health)
	r.Get(handler.RouteHealthLive, d.health.Liveness)
	r.Get(handler.RouteHealthReady, d.health.Readiness)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	r.With(middleware.StaticCache(staticCacheMaxAge)).Handle(handler.RouteStatic+"/*",
		http.StripPrefix(handler.RouteStatic+"/", http.FileServer(http.FS(staticFS))))

	// Local buckets are served by the panel itself; GCS objects are public on Google's origin.
	if local, ok := d.bucket.(*storage.LocalBucket); ok {
		r.Handle(storage.LocalURLPrefix+"/"+local.Name()+"/*", handler.StorageHandler(local))
	}

	r.Get(handler.RouteRoot, d.auth.Root)

	r.Route(handler.RouteAuth, func(r chi.Router) {
		r.With(d.loginProtection.Middleware(http.HandlerFunc(d.auth.LoginRateLimited))).Group(func(r chi.Router) {
			r.Get(handler.RouteLogin, d.auth.LoginForm)
			r.Post(handler.RouteLogin, d.auth.Login)
		})
		r.Get(handler.RouteLogout, d.auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.sessions))
			r.Use(middleware.LoadAdmin(d.sessions, d.db))
			r.Use(middleware.NoStore)

			r.Post(handler.RouteChangePassword, d.auth.ChangePassword)
			r.With(middleware.RequireSuperAdmin(d.audit, http.HandlerFunc(d.pages.Forbidden))).Group(func(r chi.Router) {
				r.Get(handler.RouteRegister, d.auth.RegisterForm)
				r.Post(handler.RouteRegister, d.auth.Register)
			})
		})
	})

	authenticated := chi.Chain(
		middleware.Auth(d.sessions),
		middleware.LoadAdmin(d.sessions, d.db),
		middleware.NoStore,
	)

	r.With(authenticated...).Route(handler.RouteDashboard, func(r chi.Router) {
		r.Get(handler.RouteRoot, d.dashboard.Index)

		r.Get(handler.RouteTouristPoints, d.dashboard.TouristPoints)
		r.Get(handler.RouteTouristPoints+handler.RouteSuffixAdd, d.dashboard.AddTouristPoint)
		r.Get(handler.RouteTouristPoints+handler.RouteSuffixEdit, d.dashboard.EditTouristPoint)

		r.Get(handler.RouteEvents, d.dashboard.Events)
		r.Get(handler.RouteEvents+handler.RouteSuffixAdd, d.dashboard.AddEvent)

		r.Get(handler.RouteUsers, d.dashboard.Users)
		r.Get(handler.RouteReviews, d.dashboard.Reviews)

		r.Get(handler.RouteSettings, d.settings.Settings)
		r.With(middleware.RequireSuperAdmin(d.audit, http.HandlerFunc(d.pages.Forbidden))).Group(func(r chi.Router) {
			r.Post(handler.RouteSettings+handler.RouteAdminActive, d.settings.SetAdminActive)
			r.Post(handler.RouteSettings+handler.RouteJobRun, d.settings.RunJob)
		})
	})

	r.With(authenticated...).Route(handler.RouteAPI, func(r chi.Router) {
		r.Route(handler.RouteTouristPoints, func(r chi.Router) {
			r.Get(handler.RouteRoot, d.api.ListTouristPoints)
			r.Post(handler.RouteRoot, d.api.CreateTouristPoint)
			r.Get(handler.RouteParamID, d.api.GetTouristPoint)
			r.Put(handler.RouteParamID, d.api.UpdateTouristPoint)
			r.Delete(handler.RouteParamID, d.api.DeleteTouristPoint)
		})
		r.Route(handler.RouteEvents, func(r chi.Router) {
			r.Get(handler.RouteRoot, d.api.ListEvents)
			r.Post(handler.RouteRoot, d.api.CreateEvent)
			r.Get(handler.RouteParamID, d.api.GetEvent)
		})
		r.Delete(handler.RouteImages, d.api.DeleteImage)
		r.Get(handler.RouteStatistics, d.api.Statistics)
	})

	r.NotFound(d.pages.NotFound)

	return r, nil
}
