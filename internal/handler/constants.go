// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe route.
	RouteHealthLive = RouteHealth + "/live"
	// RouteHealthReady is the readiness probe route.
	RouteHealthReady = RouteHealth + "/ready"

	// RouteAuth is the prefix of the authentication routes.
	RouteAuth = "/auth"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteRegister is the administrator registration route.
	RouteRegister = "/register"
	// RouteChangePassword is the password change route.
	RouteChangePassword = "/change-password"

	// RouteDashboard is the prefix of the rendered pages.
	RouteDashboard = "/dashboard"
	// RouteTouristPoints is the tourist points route.
	RouteTouristPoints = "/tourist-points"
	// RouteEvents is the events route.
	RouteEvents = "/events"
	// RouteUsers is the app users route.
	RouteUsers = "/users"
	// RouteReviews is the reviews route.
	RouteReviews = "/reviews"
	// RouteSettings is the settings route.
	RouteSettings = "/settings"
	// RouteSuffixAdd is the suffix for "add" pages.
	RouteSuffixAdd = "/add"
	// RouteSuffixEdit is the suffix for edit pages.
	RouteSuffixEdit = "/edit/{id}"
	// RouteAdminActive toggles an administrator account.
	RouteAdminActive = "/admins/{id}/active"
	// RouteJobRun triggers a scheduled job.
	RouteJobRun = "/jobs/{name}/run"

	// RouteAPI is the prefix of the JSON API.
	RouteAPI = "/api"
	// RouteImages is the image removal route.
	RouteImages = "/images"
	// RouteStatistics is the statistics route.
	RouteStatistics = "/statistics"

	// RouteStatic serves embedded assets.
	RouteStatic = "/static"
)

const (
	redirectLogin         = RouteAuth + RouteLogin
	redirectLogoutSuccess = redirectLogin + "?message=" + logoutSuccessParam
	redirectDashboard     = RouteDashboard
	redirectSettings      = RouteDashboard + RouteSettings

	pathDashboardTouristPoints = RouteDashboard + RouteTouristPoints
	pathDashboardEvents        = RouteDashboard + RouteEvents
	pathDashboardUsers         = RouteDashboard + RouteUsers
	pathDashboardReviews       = RouteDashboard + RouteReviews
	pathAPITouristPoints       = RouteAPI + RouteTouristPoints

	logoutSuccessParam = "logout_success"
)

// Values of render.TemplateData.CurrentPage, used to highlight the sidebar.
const (
	pageDashboard     = "dashboard"
	pageTouristPoints = "tourist-points"
	pageEvents        = "events"
	pageUsers         = "users"
	pageReviews       = "reviews"
	pageSettings      = "settings"
	pageRegister      = "register"
)

// Template names.
const (
	tmplLogin            = "auth/login"
	tmplError            = "errors/error"
	tmplDashboard        = "dashboard/index"
	tmplTouristPoints    = "dashboard/tourist_points"
	tmplTouristPointForm = "dashboard/tourist_point_form"
	tmplEvents           = "dashboard/events"
	tmplEventForm        = "dashboard/event_form"
	tmplUsers            = "dashboard/users"
	tmplReviews          = "dashboard/reviews"
	tmplSettings         = "dashboard/settings"
	tmplRegister         = "dashboard/register"
)

// titleSuffix is appended to every page title.
const titleSuffix = " - Turismo Curitiba Admin"

// Page headings.
const (
	titleLogin            = "Login"
	titleDashboard        = "Dashboard"
	titleTouristPoints    = "Pontos Turísticos"
	titleAddTouristPoint  = "Adicionar Ponto Turístico"
	titleEditTouristPoint = "Editar Ponto Turístico"
	titleEvents           = "Eventos"
	titleAddEvent         = "Adicionar Evento"
	titleUsers            = "Usuários"
	titleReviews          = "Avaliações"
	titleSettings         = "Configurações"
	titleRegister         = "Criar Administrador"
)

// Utility constants used by main.go.
const (
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
	// ServiceName identifies the service in health responses.
	ServiceName = "Turismo Curitiba Admin Panel"
)
