package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/omnichat/orchestrator/internal/store"
)

// ListProducts lists catalog entries.
// GET /v1/products?category=&max_price=&limit=
func (h *Handler) ListProducts(c echo.Context) error {
	filter := store.ProductFilter{
		Category: c.QueryParam("category"),
		Limit:    20,
	}
	if p := c.QueryParam("max_price"); p != "" {
		if val, err := strconv.ParseFloat(p, 64); err == nil {
			filter.MaxPrice = val
		}
	}
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			filter.Limit = val
		}
	}

	products, err := h.service.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}
