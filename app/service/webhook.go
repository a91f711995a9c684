package service

import (
	"context"
	"encoding/json"

	"github.com/vibast-solutions/ms-go-orders/app/entity"
	"github.com/vibast-solutions/ms-go-orders/app/signature"
)

const (
	webhookEventPaymentCaptured = "payment.captured"
	webhookEventPaymentFailed   = "payment.failed"
	webhookEventOrderPaid       = "order.paid"
)

// webhookEnvelope mirrors the gateway's event shape. The body must be
// verified byte-for-byte before parsing; re-serialization would break the
// digest.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Method           string `json:"method"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// WebhookResult reports what an authenticated webhook did. Handled is false
// for authentic events of an unrecognized type, which are acknowledged
// without any state change.
type WebhookResult struct {
	EventType string
	Handled   bool
	Order     *entity.Order
	Payment   *entity.Payment
}

// HandleWebhook authenticates and dispatches a gateway webhook. A signature
// mismatch surfaces as ErrInvalidWebhookSignature with no state touched;
// failures past authentication are ordinary processing errors so the HTTP
// layer can let the sender retry.
func (s *OrderService) HandleWebhook(ctx context.Context, body []byte, signatureHeader string) (*WebhookResult, error) {
	if !signature.Verify(s.razorpayCfg.WebhookSecret, body, signatureHeader) {
		return nil, ErrInvalidWebhookSignature
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ErrMalformedWebhookPayload
	}

	result := &WebhookResult{EventType: envelope.Event}

	switch envelope.Event {
	case webhookEventPaymentCaptured, webhookEventOrderPaid:
		orderID := envelope.Payload.Payment.Entity.OrderID
		if orderID == "" {
			orderID = envelope.Payload.Order.Entity.ID
		}
		paymentID := envelope.Payload.Payment.Entity.ID
		if orderID == "" || paymentID == "" {
			return nil, ErrMalformedWebhookPayload
		}

		order, err := s.lookupOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}

		payment, err := s.capturePayment(ctx, order.ID, paymentID, envelope.Payload.Payment.Entity.Method)
		if err != nil {
			return nil, err
		}
		result.Handled = true
		result.Payment = payment

	case webhookEventPaymentFailed:
		orderID := envelope.Payload.Payment.Entity.OrderID
		if orderID == "" {
			return nil, ErrMalformedWebhookPayload
		}

		order, err := s.markFailed(ctx, orderID, envelope.Payload.Payment.Entity.ErrorDescription)
		if err != nil {
			return nil, err
		}
		result.Handled = true
		result.Order = order

	default:
		// Authentic but unrecognized events are acknowledged so the sender
		// does not retry them.
		s.logger.WithField("event", envelope.Event).Info("Ignoring unrecognized webhook event")
	}

	return result, nil
}
