package handler

import (
	"net/http"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/middleware"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	orderService service.OrderService
}

func NewAdminHandler(orderService service.OrderService) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var query dto.OrderListQuery
	if err := c.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&query); err != nil {
		return err
	}

	orders, err := h.orderService.ListOrders(ctx, repository.OrderFilter{
		Status:        model.OrderStatus(query.Status),
		PaymentStatus: model.PaymentStatus(query.PaymentStatus),
		Limit:         query.Limit,
		Offset:        query.Offset,
	})
	if err != nil {
		return httpError(err, true)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return httpError(err, true)
	}
	history, err := h.orderService.History(ctx, orderID)
	if err != nil {
		return httpError(err, true)
	}

	return c.JSON(http.StatusOK, &dto.OrderDetail{Order: order, History: history})
}

func (h *AdminHandler) History(c echo.Context) error {
	history, err := h.orderService.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err, true)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateStatus(ctx, "admin:"+middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		return httpError(err, true)
	}

	return c.JSON(http.StatusOK, order)
}
