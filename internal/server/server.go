package server

import (
	"context"
	"net/http"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/handler"
	appmw "order-payment-engine/internal/middleware"
	"order-payment-engine/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Server struct {
	echo           *echo.Echo
	auth           *appmw.Auth
	orderRateLimit rate.Limit
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	adminHandler   *handler.AdminHandler
}

func NewServer(
	cfg *config.Config,
	log *logrus.Logger,
	orderService service.OrderService,
	catalogService service.CatalogService,
	paymentService service.PaymentService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = appmw.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("1M"))

	s := &Server{
		echo:           e,
		auth:           appmw.NewAuth(cfg.Auth.JWTSecret),
		orderRateLimit: rate.Limit(cfg.HTTP.OrderRateLimit),
		orderHandler:   handler.NewOrderHandler(orderService, catalogService),
		paymentHandler: handler.NewPaymentHandler(paymentService, cfg.Gateway.SignatureHeader, cfg.Gateway.EventIDHeader),
		adminHandler:   handler.NewAdminHandler(orderService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.orderHandler.ListProducts)

	// -------- storefront orders --------
	orders := api.Group("/orders")
	orders.POST("", s.orderHandler.CreateOrder,
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(s.orderRateLimit)),
		s.auth.Optional())
	orders.GET("", s.orderHandler.ListMyOrders, s.auth.Required())
	orders.GET("/:id", s.orderHandler.GetOrder, s.auth.Optional())

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/session", s.paymentHandler.CreateSession)
	payments.POST("/verify", s.paymentHandler.Verify)
	payments.POST("/webhook", s.paymentHandler.Webhook)

	// -------- admin --------
	admin := api.Group("/admin", s.auth.Required(), appmw.RequireAdmin())
	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.GET("/orders/:id", s.adminHandler.GetOrder)
	admin.GET("/orders/:id/history", s.adminHandler.History)
	admin.PATCH("/orders/:id/status", s.adminHandler.UpdateStatus)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
