package model

import "errors"

// validation
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// integrity
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNoItems           = errors.New("order has no items")
	ErrNonPositiveTotal  = errors.New("order total must be positive")
	ErrCurrencyMismatch  = errors.New("items must share one currency")
	ErrAlreadyPaid       = errors.New("order already paid")
	ErrPaymentRequired   = errors.New("order must be paid before processing")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)

// trust
var ErrInvalidSignature = errors.New("invalid signature")

// integration
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")
