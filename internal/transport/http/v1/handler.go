// Package v1 provides the public HTTP API for the orchestrator.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnichat/orchestrator/internal/conversation"
	"github.com/omnichat/orchestrator/internal/service"
	"github.com/omnichat/orchestrator/internal/session"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chat API
	e.POST("/v1/chat", h.PostChat)
	e.GET("/v1/chat/sessions/:session_id", h.GetConversation)
	e.GET("/v1/chat/sessions/:session_id/messages", h.GetSessionMessages)
	e.POST("/v1/chat/sessions/:session_id/channel", h.SwitchChannel)
	e.DELETE("/v1/chat/sessions/:session_id", h.DeleteSession)

	// Catalog and order API
	e.GET("/v1/products", h.ListProducts)
	e.POST("/v1/orders", h.CreateOrder)
	e.GET("/v1/orders/:order_id", h.GetOrder)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// writeError maps service errors to HTTP status codes.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrUserNotFound),
		errors.Is(err, conversation.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidChannel),
		errors.Is(err, service.ErrUserRequired),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrUnknownSKU):
		status = http.StatusBadRequest
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
