package service

import "errors"

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrInvalidPlan             = errors.New("invalid plan")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrMalformedWebhookPayload = errors.New("malformed webhook payload")
)
