package entity

import "time"

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

type Order struct {
	ID             string
	GatewayOrderID string

	UserID   string
	PlanType string

	UserName    string
	UserContact string
	UserEmail   string

	AmountPaise int64
	Currency    string

	Status   OrderStatus
	Attempts int32

	PaymentID     string
	FailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
