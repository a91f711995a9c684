package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-orders/app/entity"
	"github.com/vibast-solutions/ms-go-orders/app/factory"
	"github.com/vibast-solutions/ms-go-orders/app/gateway"
	"github.com/vibast-solutions/ms-go-orders/app/plan"
	"github.com/vibast-solutions/ms-go-orders/config"
)

const defaultCurrency = "INR"

type createOrderRequest interface {
	GetUserId() string
	GetPlanType() string
	GetUserName() string
	GetUserContact() string
	GetUserEmail() string
}

type orderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error)
}

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error)
}

type OrderService struct {
	orderRepo   orderRepository
	paymentRepo paymentRepository
	gateway     gateway.Gateway
	catalog     *plan.Catalog
	razorpayCfg config.RazorpayConfig
	orderLocks  keyedMutex
	logger      logrus.FieldLogger
}

func NewOrderService(
	orderRepo orderRepository,
	paymentRepo paymentRepository,
	gw gateway.Gateway,
	catalog *plan.Catalog,
	razorpayCfg config.RazorpayConfig,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gw,
		catalog:     catalog,
		razorpayCfg: razorpayCfg,
		logger:      factory.NewModuleLogger("orders-service"),
	}
}

// CreateOrder registers a remote gateway order for the requested plan and
// stores the local Order in status created. The amount comes from the
// catalog, never from the request.
func (s *OrderService) CreateOrder(ctx context.Context, req createOrderRequest) (*entity.Order, plan.Plan, error) {
	userID := strings.TrimSpace(req.GetUserId())
	if userID == "" {
		return nil, plan.Plan{}, ErrInvalidRequest
	}

	selected, ok := s.catalog.Lookup(req.GetPlanType())
	if !ok {
		return nil, plan.Plan{}, ErrInvalidPlan
	}

	orderID := newOrderID()
	gatewayOrderID, err := s.gateway.CreateOrder(ctx, &gateway.CreateOrderInput{
		AmountPaise: selected.AmountPaise(),
		Currency:    defaultCurrency,
		Receipt:     orderID,
		Notes: map[string]interface{}{
			"user_id":   userID,
			"plan_type": selected.Type,
		},
	})
	if err != nil {
		return nil, plan.Plan{}, err
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:             orderID,
		GatewayOrderID: gatewayOrderID,
		UserID:         userID,
		PlanType:       selected.Type,
		UserName:       defaultString(req.GetUserName(), "User"),
		UserContact:    strings.TrimSpace(req.GetUserContact()),
		UserEmail:      strings.TrimSpace(req.GetUserEmail()),
		AmountPaise:    selected.AmountPaise(),
		Currency:       defaultCurrency,
		Status:         entity.OrderStatusCreated,
		Attempts:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, plan.Plan{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"plan_type": order.PlanType,
	}).Info("Order created")

	return order, selected, nil
}

// OrderSnapshot combines an Order with its Payment, if one exists.
type OrderSnapshot struct {
	Order   *entity.Order
	Payment *entity.Payment
}

func (s *OrderService) GetOrderStatus(ctx context.Context, orderID string) (*OrderSnapshot, error) {
	order, err := s.lookupOrder(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	snapshot := &OrderSnapshot{Order: order}
	if order.PaymentID != "" {
		payment, err := s.paymentRepo.FindByID(ctx, order.PaymentID)
		if err != nil {
			return nil, err
		}
		snapshot.Payment = payment
	}
	return snapshot, nil
}

func (s *OrderService) GetPaymentHistory(ctx context.Context, userID string) ([]*entity.Payment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	return s.paymentRepo.ListByUser(ctx, userID)
}

// lookupOrder resolves an order by local id first, then by the gateway's
// order id. Webhook payloads carry the gateway id; the client flow carries
// ours.
func (s *OrderService) lookupOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil || order != nil {
		return order, err
	}
	return s.orderRepo.FindByGatewayOrderID(ctx, orderID)
}

func newOrderID() string {
	return "ord_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func defaultString(v, fallback string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
