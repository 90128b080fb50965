package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnichat/orchestrator/internal/service"
)

type createOrderRequest struct {
	UserID string              `json:"user_id"`
	Items  []service.OrderLine `json:"items"`
}

// CreateOrder creates an order from catalog items.
// POST /v1/orders
func (h *Handler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	order, err := h.service.CreateOrder(c.Request().Context(), req.UserID, req.Items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder fetches one order.
// GET /v1/orders/:order_id
func (h *Handler) GetOrder(c echo.Context) error {
	orderID := c.Param("order_id")

	order, err := h.service.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	if order == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}
