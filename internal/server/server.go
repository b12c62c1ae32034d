package server

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"moment-ticketing/internal/handler"
	"moment-ticketing/internal/middleware"
	"moment-ticketing/internal/service"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	jwtSecret      string
}

func NewServer(ticketingService service.TicketingService, jwtSecret string) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	s := &Server{
		echo:           e,
		paymentHandler: handler.NewPaymentHandler(ticketingService),
		jwtSecret:      jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	auth := middleware.Auth(s.jwtSecret)
	api.POST("/moments/:momentID/checkout", s.paymentHandler.InitiateCheckout, auth)
	api.POST("/payments/verify", s.paymentHandler.VerifyPayment, auth)

	// -------- gateway webhooks --------
	// Authenticated by signature, not by bearer token.
	api.POST("/payments/webhook", s.paymentHandler.GatewayWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
