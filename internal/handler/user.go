package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/middleware"
	"github.com/iliyamo/publicvoice/internal/service"
)

// UserHandler serves the admin user list.
type UserHandler struct {
	Users   *service.UserService
	Log     *zap.Logger
	Timeout time.Duration
}

func NewUserHandler(users *service.UserService, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{Users: users, Log: log, Timeout: defaultTimeout}
}

// List returns users; admins only appear with include_admin=true.
func (h *UserHandler) List(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	includeAdmin := false
	if raw := c.QueryParam("include_admin"); raw != "" {
		includeAdmin, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "include_admin must be true or false")
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	out, err := h.Users.List(ctx, middleware.CurrentUser(c), page, includeAdmin)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toUsers(out))
}
