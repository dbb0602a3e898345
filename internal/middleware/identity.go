package middleware

// identity.go holds the helpers that move the authenticated user between
// middleware and handlers through the echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/publicvoice/internal/model"
)

// userKey is the echo context key under which JWTAuth stores the user.
const userKey = "current_user"

// CurrentUser returns the user loaded by JWTAuth, or nil on public routes.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// SetCurrentUser stores u in the context.  Tests use it to bypass JWTAuth.
func SetCurrentUser(c echo.Context, u *model.User) {
	c.Set(userKey, u)
}
