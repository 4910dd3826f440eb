package server

func (s *Server) initRoutes() {
	authLimiter := s.authRateLimiter()

	// Public auth flow routes. Rate limited: each sign-in start mints state
	// in the flow store and each callback costs a provider round trip.
	s.RegisterRouteFunc("GET "+RouteSignIn, ChainMiddleware(s.SignInHandler(), s.BaseMiddleware(authLimiter)...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.BaseMiddleware(authLimiter)...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.BaseMiddleware(authLimiter)...)) // form_post response mode
	s.RegisterRouteFunc("GET "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.BaseMiddleware()...))

	// Operational routes
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteFunc("GET "+RouteError, ChainMiddleware(s.ErrorPageHandler(), s.BaseMiddleware()...))

	// Session API (guarded)
	s.RegisterRouteFunc("GET "+RouteAPIMe, ChainMiddleware(s.MeHandler(), s.BaseMiddleware(s.RouteGuard())...))
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionInfoHandler(), s.BaseMiddleware(s.RouteGuard())...))

	// Everything else is the protected application shell. The guard's public
	// allow-list is evaluated inside the middleware, before any session
	// lookup, so allow-listed paths that fall through to here still bypass
	// authentication.
	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.BaseMiddleware(s.RouteGuard())...))
}
