package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-orders/app/factory"
	"github.com/vibast-solutions/ms-go-orders/app/mapper"
	"github.com/vibast-solutions/ms-go-orders/app/service"
	"github.com/vibast-solutions/ms-go-orders/app/types"
)

const webhookSignatureHeader = "X-Razorpay-Signature"

type OrderController struct {
	orderService *service.OrderService
	keyID        string
	logger       logrus.FieldLogger
}

func NewOrderController(orderService *service.OrderService, keyID string) *OrderController {
	return &OrderController{
		orderService: orderService,
		keyID:        keyID,
		logger:       factory.NewModuleLogger("orders-controller"),
	}
}

func (c *OrderController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, selected, err := c.orderService.CreateOrder(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidPlan):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create order failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.OrderEnvelopeResponse{
		Order: mapper.OrderToDescriptor(order, selected, c.keyID),
	})
}

func (c *OrderController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payment, err := c.orderService.VerifyPayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidSignature):
			return c.writeError(ctx, http.StatusBadRequest, "invalid signature")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Verify payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(payment)})
}

func (c *OrderController) PaymentFailed(ctx echo.Context) error {
	req, err := types.NewPaymentFailedRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.MarkPaymentFailed(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Payment failed callback errored")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.OrderStatusResponse{Order: mapper.OrderToView(order)})
}

func (c *OrderController) GetOrderStatus(ctx echo.Context) error {
	req, err := types.NewGetOrderStatusRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	snapshot, err := c.orderService.GetOrderStatus(ctx.Request().Context(), req.OrderId)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get order status failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.SnapshotToStatusResponse(snapshot))
}

func (c *OrderController) GetPaymentHistory(ctx echo.Context) error {
	req, err := types.NewPaymentHistoryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.orderService.GetPaymentHistory(ctx.Request().Context(), req.UserId)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get payment history failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentHistoryResponse{Payments: mapper.PaymentsToResponse(items)})
}

// HandleWebhook passes the body through verbatim; parsing before signature
// verification would invalidate the digest. Signature failures return 400 so
// the gateway stops retrying; processing failures return 5xx to allow retry.
func (c *OrderController) HandleWebhook(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "unable to read request body")
	}

	result, err := c.orderService.HandleWebhook(ctx.Request().Context(), body, ctx.Request().Header.Get(webhookSignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWebhookSignature):
			return c.writeError(ctx, http.StatusBadRequest, "invalid webhook signature")
		case errors.Is(err, service.ErrMalformedWebhookPayload):
			return c.writeError(ctx, http.StatusBadRequest, "malformed webhook payload")
		default:
			c.logger.WithError(err).Error("Webhook processing failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if !result.Handled {
		return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Event ignored"})
	}
	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Webhook processed"})
}

func (c *OrderController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
