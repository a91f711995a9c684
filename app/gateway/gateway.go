// Package gateway abstracts the remote payment provider. The service only
// needs the ability to create a remote order; verification happens locally
// against shared secrets.
package gateway

import "context"

type CreateOrderInput struct {
	AmountPaise int64
	Currency    string

	// Receipt is our local order id, echoed back by the provider.
	Receipt string

	Notes map[string]interface{}
}

type Gateway interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (string, error)
}
