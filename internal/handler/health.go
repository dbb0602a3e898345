package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load balancer and uptime checks with the running app name
// and version.
func Health(appName, version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "app": appName, "version": version})
	}
}
