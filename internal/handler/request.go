package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/publicvoice/internal/service"
)

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

// pageFromQuery reads skip and limit.  An explicit limit of 0 is rejected so
// that it is not mistaken for "use the default".
func pageFromQuery(c echo.Context) (service.Page, error) {
	skip, err := queryInt(c, "skip")
	if err != nil {
		return service.Page{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return service.Page{}, err
	}
	if c.QueryParam("limit") != "" && limit < 1 {
		return service.Page{}, errors.New("limit must be >= 1")
	}
	return service.Page{Skip: skip, Limit: limit}, nil
}

// idParam parses the :id path parameter.
func idParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
