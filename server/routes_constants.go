package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - sign-in flow against the external provider
	RouteSignIn   = "/signin"
	RouteSignOut  = "/auth/signout"
	RouteCallback = "/callback"

	// Session API Routes
	RouteAPIMe      = "/api/me"
	RouteAPISession = "/api/session"

	// Operational Routes
	RouteHealthz = "/healthz"
	RouteError   = "/error"

	// Protected application shell (everything the guard fronts)
	RouteDashboard = "/"
)
