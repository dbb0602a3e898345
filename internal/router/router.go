package router // package router registers the HTTP routes of the API

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/publicvoice/internal/handler"
	"github.com/iliyamo/publicvoice/internal/middleware"
)

// Guards holds the middleware shared by route groups.
type Guards struct {
	// Auth resolves the bearer token to a user (middleware.JWTAuth).
	Auth echo.MiddlewareFunc
	// RateLimit throttles the unauthenticated auth endpoints.  Nil disables it.
	RateLimit echo.MiddlewareFunc
}

func (g Guards) limited() []echo.MiddlewareFunc {
	if g.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{g.RateLimit}
}

// RegisterRoutes registers the health checks.
func RegisterRoutes(e *echo.Echo, appName, version string) {
	h := handler.Health(appName, version)
	e.GET("/healthz", h)
	e.GET("/api", h)
}

// RegisterAuth registers /api/auth.  Register, login and the password reset
// pair are public and rate limited; /me requires a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	pub := e.Group("/api/auth", g.limited()...)
	pub.POST("/register", a.Register)
	pub.POST("/login", a.Login)
	pub.POST("/forgot-password", a.ForgotPassword)
	pub.POST("/reset-password", a.ResetPassword)

	me := e.Group("/api/auth", g.Auth)
	me.GET("/me", a.Me)
	me.PATCH("/me", a.UpdateMe)
}

// RegisterReports registers /api/reports.  Static paths (mine, stats) win
// over /:id in echo's router.
func RegisterReports(e *echo.Echo, r *handler.ReportHandler, g Guards) {
	grp := e.Group("/api/reports", g.Auth)
	grp.POST("", r.Create)
	grp.GET("/mine", r.Mine)
	grp.GET("/:id", r.Get)

	admin := middleware.RequireAdmin()
	grp.GET("", r.List, admin)
	grp.GET("/stats", r.Stats, admin)
	grp.PATCH("/:id", r.Update, admin)
}

// RegisterUsers registers the admin-only /api/users list.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, g Guards) {
	e.GET("/api/users", u.List, g.Auth, middleware.RequireAdmin())
}

// RegisterUploads serves stored avatars read-only.
func RegisterUploads(e *echo.Echo, dir string) {
	e.Static(strings.TrimSuffix(handler.UploadsPrefix, "/"), dir)
}
