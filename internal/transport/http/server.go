// Package http provides the HTTP server implementation for the orchestrator.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/omnichat/orchestrator/internal/hub"
	"github.com/omnichat/orchestrator/internal/service"
	v1 "github.com/omnichat/orchestrator/internal/transport/http/v1"
	"github.com/omnichat/orchestrator/internal/transport/ws"
)

// NewServer creates and configures the public HTTP server. It carries the
// REST API and the WebSocket chat surface.
func NewServer(svc *service.Service, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	wsServer := ws.NewServer(h, svc)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	e.GET("/ws", wsServer.HandleWebSocket)

	return e
}
