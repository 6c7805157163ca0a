// Package http provides the HTTP server for the remote control interface.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/autopilot/internal/policy"
	"github.com/xiaot623/autopilot/internal/tools"
)

// NewServer creates and configures the remote control HTTP server.
func NewServer(registry *tools.Registry, engine *policy.Engine) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	handler := NewHandler(registry, engine)
	handler.RegisterRoutes(e)

	return e
}
