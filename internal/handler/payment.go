package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"moment-ticketing/internal/client"
	"moment-ticketing/internal/dto"
	"moment-ticketing/internal/middleware"
	"moment-ticketing/internal/service"
)

const signatureHeader = "Gateway-Signature"

type PaymentHandler struct {
	ticketingService service.TicketingService
}

func NewPaymentHandler(ticketingService service.TicketingService) *PaymentHandler {
	return &PaymentHandler{
		ticketingService: ticketingService,
	}
}

func userIDFromContext(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user")
	}
	return userID, nil
}

func (h *PaymentHandler) InitiateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	momentID := c.Param("momentID")
	if momentID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "InvalidRequest",
			Message: "missing moment id",
		})
	}

	result, err := h.ticketingService.InitiateCheckout(ctx, userID, momentID)
	if err != nil {
		return rejectionResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil || req.GatewaySessionID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "InvalidRequest",
			Message: "missing gateway session id",
		})
	}

	result, err := h.ticketingService.VerifyPayment(ctx, userID, req.GatewaySessionID)
	if err != nil {
		return rejectionResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// GatewayWebhook answers 2xx once an event is durably processed or determined
// a no-op, 4xx for integrity failures the gateway should not retry, and 5xx
// for internal errors so the gateway redelivers later.
func (h *PaymentHandler) GatewayWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.ticketingService.HandleWebhookEvent(ctx, c.Request().Header.Get(signatureHeader), body)
	if err != nil {
		if errors.Is(err, client.ErrInvalidSignature) || errors.Is(err, service.ErrInvalidEvent) {
			return c.NoContent(http.StatusBadRequest)
		}
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}

func rejectionResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "InvalidRequest", Message: err.Error()})
	case errors.Is(err, service.ErrAlreadyRegistered):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Code: "AlreadyRegistered", Message: err.Error()})
	case errors.Is(err, service.ErrMomentFull):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Code: "MomentFull", Message: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, dto.ErrorResponse{Code: "Unauthorized", Message: err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: "SessionNotFound", Message: err.Error()})
	case errors.Is(err, service.ErrGatewayUnavailable):
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Code: "GatewayUnavailable", Message: err.Error()})
	default:
		return err
	}
}
