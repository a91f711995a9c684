package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
)

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(cfg RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret)}
}

// CreateOrder registers the order with Razorpay and returns the gateway
// order id. The razorpay-go client manages its own HTTP timeout; failures
// propagate to the caller unretried.
func (g *RazorpayGateway) CreateOrder(_ context.Context, input *CreateOrderInput) (string, error) {
	data := map[string]interface{}{
		"amount":          input.AmountPaise,
		"currency":        input.Currency,
		"receipt":         input.Receipt,
		"payment_capture": 1,
	}
	if len(input.Notes) > 0 {
		data["notes"] = input.Notes
	}

	result, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := result["id"].(string)
	if strings.TrimSpace(id) == "" {
		return "", errors.New("razorpay order id missing in response")
	}
	return id, nil
}
