package handler

import (
	"errors"
	"net/http"
	"order-payment-engine/internal/model"

	"github.com/labstack/echo/v4"
)

// httpError maps domain errors to responses. Storefront callers get a
// generic retry message for pricing and state machine failures; operators
// see the error text.
func httpError(err error, operator bool) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidSignature):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrNoItems),
		errors.Is(err, model.ErrUnknownStatus),
		errors.Is(err, model.ErrCurrencyMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, model.ErrProductNotFound):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, "some items are out of stock")
	case errors.Is(err, model.ErrAlreadyPaid):
		return echo.NewHTTPError(http.StatusConflict, "order already paid")
	case errors.Is(err, model.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "payment gateway unavailable, please retry")
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrPaymentRequired),
		errors.Is(err, model.ErrStatusConflict),
		errors.Is(err, model.ErrNonPositiveTotal):
		if operator {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusConflict, "order cannot be checked out right now, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
