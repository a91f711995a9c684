package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-orders/app/entity"
	"github.com/vibast-solutions/ms-go-orders/app/repository"
	"github.com/vibast-solutions/ms-go-orders/app/signature"
)

type verifyPaymentRequest interface {
	GetOrderId() string
	GetPaymentId() string
	GetSignature() string
}

type paymentFailedRequest interface {
	GetOrderId() string
	GetReason() string
}

// VerifyPayment authenticates a client-submitted payment confirmation and
// transitions the order to paid. Re-submitting the same confirmation is a
// no-op returning the already stored Payment.
func (s *OrderService) VerifyPayment(ctx context.Context, req verifyPaymentRequest) (*entity.Payment, error) {
	orderID := strings.TrimSpace(req.GetOrderId())
	paymentID := strings.TrimSpace(req.GetPaymentId())
	if orderID == "" || paymentID == "" {
		return nil, ErrInvalidRequest
	}

	order, err := s.lookupOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	message := signature.ConfirmationMessage(orderID, paymentID)
	if !signature.Verify(s.razorpayCfg.KeySecret, message, req.GetSignature()) {
		return nil, ErrInvalidSignature
	}

	// Method stays empty here: the confirmation carries no authenticated
	// payment-method data.
	return s.capturePayment(ctx, order.ID, paymentID, "")
}

// MarkPaymentFailed records a client-reported failure. A paid order is never
// downgraded; such events are logged and discarded.
func (s *OrderService) MarkPaymentFailed(ctx context.Context, req paymentFailedRequest) (*entity.Order, error) {
	orderID := strings.TrimSpace(req.GetOrderId())
	if orderID == "" {
		return nil, ErrInvalidRequest
	}
	return s.markFailed(ctx, orderID, strings.TrimSpace(req.GetReason()))
}

// capturePayment applies the paid transition under the order's lock. Callers
// must already have authenticated the event.
func (s *OrderService) capturePayment(ctx context.Context, orderID, paymentID, method string) (*entity.Payment, error) {
	unlock := s.orderLocks.lock(orderID)
	defer unlock()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.PaymentID != "" {
		if order.PaymentID != paymentID {
			s.logger.WithFields(logrus.Fields{
				"order_id":   order.ID,
				"payment_id": paymentID,
			}).Warn("Order already captured under a different payment id")
		}
		return s.existingPayment(ctx, order.PaymentID)
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		ID:          paymentID,
		OrderID:     order.ID,
		UserID:      order.UserID,
		PlanType:    order.PlanType,
		AmountPaise: order.AmountPaise,
		Currency:    order.Currency,
		Status:      entity.PaymentStatusCaptured,
		Method:      method,
		VerifiedAt:  now,
		CreatedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrPaymentAlreadyExists) {
			return s.existingPayment(ctx, paymentID)
		}
		return nil, err
	}

	order.Status = entity.OrderStatusPaid
	order.PaymentID = paymentID
	order.UpdatedAt = now
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": paymentID,
	}).Info("Payment captured")

	return payment, nil
}

func (s *OrderService) markFailed(ctx context.Context, orderID, reason string) (*entity.Order, error) {
	order, err := s.lookupOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	unlock := s.orderLocks.lock(order.ID)
	defer unlock()

	order, err = s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.Status == entity.OrderStatusPaid {
		s.logger.WithField("order_id", order.ID).Warn("Discarding failure event for paid order")
		return order, nil
	}

	order.Status = entity.OrderStatusFailed
	order.Attempts++
	if reason != "" {
		order.FailureReason = &reason
	}
	order.UpdatedAt = time.Now().UTC()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"attempts": order.Attempts,
	}).Info("Order marked failed")

	return order, nil
}

func (s *OrderService) existingPayment(ctx context.Context, paymentID string) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, repository.ErrPaymentNotFound
	}
	return payment, nil
}
