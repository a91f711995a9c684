package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Simulated fabricates gateway order ids without touching the network.
// Selected by configuration for local development and by tests.
type Simulated struct{}

func (Simulated) CreateOrder(_ context.Context, _ *CreateOrderInput) (string, error) {
	return "order_sim" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}
