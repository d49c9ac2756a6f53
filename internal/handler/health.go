package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe used by load balancers. It returns a plain
// text "ok" with 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Hello answers the root path.
func Hello(c echo.Context) error {
	return c.String(http.StatusOK, "Hello there!")
}
