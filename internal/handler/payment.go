package handler

import (
	"errors"
	"io"
	"net/http"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService  service.PaymentService
	signatureHeader string
	eventIDHeader   string
}

func NewPaymentHandler(paymentService service.PaymentService, signatureHeader, eventIDHeader string) *PaymentHandler {
	return &PaymentHandler{
		paymentService:  paymentService,
		signatureHeader: signatureHeader,
		eventIDHeader:   eventIDHeader,
	}
}

func (h *PaymentHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.paymentService.CreateSession(ctx, req.OrderID)
	if err != nil {
		return httpError(err, false)
	}

	return c.JSON(http.StatusOK, session)
}

func (h *PaymentHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.paymentService.ConfirmPayment(ctx, &req)
	if err != nil {
		return httpError(err, false)
	}

	return c.JSON(http.StatusOK, result)
}

// Webhook answers 200 for every delivery it accepted, including duplicates
// and events it does not act on. Anything else makes the provider retry.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	result, err := h.paymentService.HandleWebhook(
		ctx,
		c.Request().Header.Get(h.signatureHeader),
		c.Request().Header.Get(h.eventIDHeader),
		body,
	)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSignature) || errors.Is(err, model.ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, "webhook rejected")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook not processed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, result)
}
