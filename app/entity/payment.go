package entity

import "time"

type PaymentStatus string

const PaymentStatusCaptured PaymentStatus = "captured"

type Payment struct {
	ID      string
	OrderID string

	UserID   string
	PlanType string

	AmountPaise int64
	Currency    string

	Status PaymentStatus

	// Method is populated only from authenticated webhook data. The client
	// confirmation flow carries no trusted method field, so it stays empty
	// there.
	Method string

	VerifiedAt time.Time
	CreatedAt  time.Time
}
