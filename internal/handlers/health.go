package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func Root(c echo.Context) error {
	return c.String(http.StatusOK, "Property Listing Backend is Running")
}
