package handler

import (
	"net/http"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/middleware"
	"order-payment-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService   service.OrderService
	catalogService service.CatalogService
}

func NewOrderHandler(orderService service.OrderService, catalogService service.CatalogService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		catalogService: catalogService,
	}
}

func (h *OrderHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.ListProducts(c.Request().Context())
	if err != nil {
		return httpError(err, false)
	}

	return c.JSON(http.StatusOK, products)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orderService.CreateOrder(ctx, middleware.UserID(c), &req)
	if err != nil {
		return httpError(err, false)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var query dto.OrderListQuery
	if err := c.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&query); err != nil {
		return err
	}

	orders, err := h.orderService.ListUserOrders(ctx, middleware.UserID(c), query.Limit, query.Offset)
	if err != nil {
		return httpError(err, false)
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder serves guest orders to anyone holding the id. Orders placed by a
// signed-in user are only visible to that user and to admins.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return httpError(err, false)
	}
	if order.UserID != nil && !order.BelongsTo(middleware.UserID(c)) && !middleware.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, order)
}
