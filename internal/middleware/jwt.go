package middleware // reusable HTTP middleware for the API

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
)

// TokenValidator checks an access token and returns its subject id.
// *credential.Service satisfies it.
type TokenValidator interface {
	ValidateAccessToken(raw string) (uint64, error)
}

// UserLookup loads an identity by id.  repository.UserStore satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// loads its subject from the store on every request and stores the user in
// the context (see CurrentUser).  A subject that no longer exists is
// treated as unauthenticated.
func JWTAuth(tokens TokenValidator, users UserLookup, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// The header must be "Bearer <token>"; the scheme is case-insensitive.
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return unauthorized(c, "not authenticated")
			}

			id, err := tokens.ValidateAccessToken(strings.TrimSpace(raw))
			if err != nil {
				return unauthorized(c, "invalid or expired token")
			}

			u, err := users.GetByID(c.Request().Context(), id)
			if errors.Is(err, repository.ErrNotFound) {
				return unauthorized(c, "user not found")
			}
			if err != nil {
				log.Error("auth: load user", zap.Uint64("user_id", id), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			SetCurrentUser(c, u)
			return next(c)
		}
	}
}
